package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"scenedb-tools/pkg/config"
	"scenedb-tools/pkg/logging"
	"scenedb-tools/pkg/pipeline"
)

func usage() {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Printf("%s convert [options] <scenedb root>\n", bold("Usage:"))
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "", "YAML file overriding the default configuration")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		// Nothing to convert is not an error.
		flag.Usage()
		return
	}

	if err := run(*configPath, args[0]); err != nil {
		red := color.New(color.FgRed, color.Bold).SprintFunc()
		fmt.Printf("%s %v\n", red("Error:"), err)
		os.Exit(1)
	}
}

func run(configPath, sourceRoot string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	cfg.SourceRoot = sourceRoot

	sess, err := logging.Open(cfg.LogFile, os.Stdout)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.New(cfg, sess)
	if err != nil {
		return err
	}
	sum, err := p.Run(ctx)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Printf("%s %d converted, %d already converted, %d oversized\n",
		green("Done:"), sum.Converted, sum.AlreadyConverted, sum.Oversized)
	if len(sum.Failed) > 0 {
		fmt.Printf("%s %d failed: %v\n", yellow("Warning:"), len(sum.Failed), sum.Failed)
	}
	if sum.ImagesMissing > 0 {
		fmt.Printf("%s %d preview images unavailable\n", yellow("Warning:"), sum.ImagesMissing)
	}
	return nil
}
