// cmd/mixer/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/tendant/simple-paintmixer/internal/api"
	"github.com/tendant/simple-paintmixer/internal/bus"
	"github.com/tendant/simple-paintmixer/internal/mixer"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := LoadConfig()
	if err != nil {
		fatal(logger, "load config", err)
	}
	logger = newLogger(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("paint mixer starting", "http_addr", cfg.HTTPAddr, "processing_time", cfg.ProcessingTime, "nats_enabled", cfg.NATSURL != "", "rate_limit", cfg.RatePerSecond)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := []mixer.Option{
		mixer.WithLogger(logger),
		mixer.WithObserver(mixer.NewMetrics(reg)),
	}
	if cfg.NATSURL != "" {
		nc, err := bus.Connect(cfg.NATSURL, logger)
		if err != nil {
			fatal(logger, "connect to NATS", err, "nats_url", cfg.NATSURL)
		}
		defer nc.Close()
		logger.Info("connected to NATS", "nats_url", cfg.NATSURL, "subject", cfg.EventSubject)
		opts = append(opts, mixer.WithObserver(bus.NewLifecyclePublisher(nc, cfg.EventSubject, logger)))
	}

	device := mixer.New(mixer.Config{ProcessingTime: cfg.ProcessingTime}, opts...)
	device.Start()

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: api.NewRouter(device, logger, api.Options{
			RatePerSecond:  cfg.RatePerSecond,
			RateBurst:      cfg.RateBurst,
			AllowedOrigins: cfg.AllowedOrigins,
			SwatchSize:     cfg.SwatchSize,
			Registerer:     reg,
			Gatherer:       reg,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, srv, device, cfg.ShutdownTimeout, logger); err != nil {
		fatal(logger, "paint mixer stopped", err)
	}
	logger.Info("paint mixer stopped")
}

// run serves HTTP until ctx is done or the server fails, then shuts down the
// server and the device within timeout.
func run(ctx context.Context, srv *http.Server, device *mixer.Device, timeout time.Duration, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return errors.Join(srv.Shutdown(shutdownCtx), device.Shutdown(shutdownCtx))
	})
	return g.Wait()
}

func fatal(logger *slog.Logger, msg string, err error, attrs ...any) {
	attrs = append(attrs, "err", err)
	logger.Error(msg, attrs...)
	os.Exit(1)
}
