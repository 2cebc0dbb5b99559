package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/tendant/simple-paintmixer/internal/mixer"
)

type config struct {
	HTTPAddr        string
	ProcessingTime  time.Duration
	NATSURL         string
	EventSubject    string
	RatePerSecond   float64
	RateBurst       int
	AllowedOrigins  []string
	SwatchSize      int
	ShutdownTimeout time.Duration
	LogLevel        slog.Level
	LogFormat       string
}

func LoadConfig() (config, error) {
	cfg := config{
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		NATSURL:      os.Getenv("NATS_URL"),
		EventSubject: getenv("EVENT_SUBJECT", "paintmixer.jobs.lifecycle"),
		LogFormat:    strings.ToLower(getenv("LOG_FORMAT", "text")),
	}

	var err error
	if cfg.ProcessingTime, err = parsePositiveDuration(getenv("PROCESSING_TIME", mixer.DefaultProcessingTime.String()), "PROCESSING_TIME"); err != nil {
		return config{}, err
	}
	if cfg.ShutdownTimeout, err = parsePositiveDuration(getenv("SHUTDOWN_TIMEOUT", "30s"), "SHUTDOWN_TIMEOUT"); err != nil {
		return config{}, err
	}

	rps, err := parseNonNegativeInt(getenv("RATE_LIMIT_PER_SECOND", "5"), "RATE_LIMIT_PER_SECOND")
	if err != nil {
		return config{}, err
	}
	cfg.RatePerSecond = float64(rps)

	if cfg.RateBurst, err = parsePositiveInt(getenv("RATE_LIMIT_BURST", "5"), "RATE_LIMIT_BURST"); err != nil {
		return config{}, err
	}
	if cfg.SwatchSize, err = parsePositiveInt(getenv("SWATCH_SIZE", "256"), "SWATCH_SIZE"); err != nil {
		return config{}, err
	}

	for _, origin := range strings.Split(getenv("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}
	if len(cfg.AllowedOrigins) == 0 {
		return config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS must list at least one origin")
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getenv("LOG_LEVEL", "info"))); err != nil {
		return config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	switch cfg.LogFormat {
	case "text", "json", "tint":
	default:
		return config{}, fmt.Errorf("invalid LOG_FORMAT %q (want text, json or tint)", cfg.LogFormat)
	}

	return cfg, nil
}

func newLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	case "tint":
		return slog.New(tint.NewHandler(w, &tint.Options{Level: level, TimeFormat: time.Kitchen}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	}
}

func parsePositiveInt(value string, name string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be greater than zero (got %d)", name, v)
	}
	return v, nil
}

func parseNonNegativeInt(value string, name string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative (got %d)", name, v)
	}
	return v, nil
}

func parsePositiveDuration(value string, name string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be greater than zero (got %s)", name, d)
	}
	return d, nil
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
