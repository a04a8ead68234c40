// Package main starts the GM workspace service process lifecycle.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	workspacecmd "github.com/louisbranch/gmworkspace/internal/cmd/workspace"
	entrypoint "github.com/louisbranch/gmworkspace/internal/platform/cmd"
	"github.com/louisbranch/gmworkspace/internal/platform/config"
)

func main() {
	cfg, err := workspacecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix(entrypoint.LogPrefix(entrypoint.ServiceWorkspace))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.HealthCheck {
		if err := workspacecmd.Run(ctx, cfg); err != nil {
			config.Exitf("workspace unhealthy: %v", err)
		}
		return
	}
	if err := workspacecmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
