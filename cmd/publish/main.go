package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"scenedb-tools/pkg/store"
	"scenedb-tools/pkg/store/minio"
)

func main() {
	dataDir := flag.String("data", "data", "converted asset tree to publish")
	endpoint := flag.String("minio-endpoint", "localhost:9000", "S3-compatible endpoint")
	bucket := flag.String("bucket", "scenedb", "destination bucket, created if missing")
	prefix := flag.String("prefix", "", "key prefix inside the bucket")
	only := flag.String("only", "", "publish only objects under this prefix (e.g. model/)")
	secure := flag.Bool("secure", false, "use TLS")
	force := flag.Bool("force", false, "upload even when the remote content is unchanged")
	jobs := flag.Int("j", 8, "parallel uploads")
	verbose := flag.Bool("v", false, "log every upload")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).Level(level)

	client, err := minio.NewClient(minio.Options{
		Endpoint:  *endpoint,
		AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("MINIO_SECRET_KEY"),
		Secure:    *secure,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("minio client")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dst := minio.NewStore(client, *bucket, *prefix)
	if err := dst.EnsureBucket(ctx); err != nil {
		log.Fatal().Err(err).Str("bucket", *bucket).Msg("ensure bucket")
	}

	start := time.Now()
	st, err := store.Mirror(ctx, store.NewLocal(*dataDir), dst, store.MirrorOptions{
		Prefix:      *only,
		Force:       *force,
		Concurrency: *jobs,
		Logger:      log.Logger,
	})
	if err != nil {
		log.Fatal().Err(err).Int64("uploaded", st.Uploaded).Msg("publish failed")
	}

	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Printf("%s %d uploaded, %d unchanged in %s\n",
		green("Published"), st.Uploaded, st.Unchanged, time.Since(start).Round(time.Millisecond))
}
