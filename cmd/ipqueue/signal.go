package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// waitInterrupted blocks until SIGINT or SIGTERM arrives, or ctx is
// canceled for some other reason.
func waitInterrupted(ctx context.Context) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(ch)

	select {
	case <-ch:
	case <-ctx.Done():
	}
}

func queuePath(cfg Config) string {
	if cfg.Path != "" {
		return cfg.Path
	}
	return os.TempDir()
}
