package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/pantry/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override pantry config path (optional)")
	pollSeconds := flag.Int("poll", 0, "background refresh interval in seconds (optional, defaults to config)")
	backend := flag.String("backend", "", "document store backend: memory, redis, postgres, mysql or http (optional)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{ConfigPath: *configPath, Backend: *backend}
	if poll := *pollSeconds; poll > 0 {
		opts.PollEvery = poll
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "pantry: %v\n", err)
		return 1
	}
	return 0
}
