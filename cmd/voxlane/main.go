package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/voxlane/voxlane/pkg/runner"
	"github.com/voxlane/voxlane/pkg/voxlane"
)

func main() {
	configPath := flag.String("config", "examples/receptionist/config.yaml", "path to config file")
	flag.Parse()

	runner.PrintBanner()

	cfg, err := voxlane.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	engine, err := voxlane.NewEngine(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init error:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := engine.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "run error:", err)
		os.Exit(1)
	}
}
