// cmd/mixctl is a command line client for the paint mixer API.
//
// Usage:
//
//	mixctl submit --red 50 --blue 50
//	mixctl status 0
//	mixctl swatch 0 -o swatch.png
//	mixctl watch --nats nats://127.0.0.1:4222
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := RootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
