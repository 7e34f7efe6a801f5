package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"scenedb-tools/pkg/server"
	"scenedb-tools/pkg/store"
	"scenedb-tools/pkg/store/minio"
)

func main() {
	addr := flag.String("addr", ":8080", "listen addr")
	dataDir := flag.String("data", "data", "converted asset tree")
	endpoint := flag.String("minio-endpoint", "", "serve from this S3-compatible endpoint instead of -data")
	bucket := flag.String("bucket", "scenedb", "bucket holding the asset tree")
	prefix := flag.String("prefix", "", "key prefix of the asset tree inside the bucket")
	secure := flag.Bool("secure", false, "use TLS for the S3 endpoint")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	var st store.Store = store.NewLocal(*dataDir)
	if *endpoint != "" {
		client, err := minio.NewClient(minio.Options{
			Endpoint:  *endpoint,
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Secure:    *secure,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("minio client")
		}
		st = minio.NewStore(client, *bucket, *prefix)
		log.Info().Str("endpoint", *endpoint).Str("bucket", *bucket).Msg("serving from object storage")
	} else {
		log.Info().Str("dir", *dataDir).Msg("serving from local tree")
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           server.New(st, log.Logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	log.Info().Str("addr", *addr).Msg("asset server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("listen")
	}
}
