// Package main runs the scenectl command-line client.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/courtroom.space/internal/cmd/scenectl"
	"github.com/louisbranch/courtroom.space/internal/platform/config"
)

func main() {
	cfg, err := scenectl.LoadConfig()
	if err != nil {
		config.Exitf("load config: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := scenectl.Run(ctx, cfg, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		stop()
		config.Exitf("scenectl: %v", err)
	}
}
