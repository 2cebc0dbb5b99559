package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	metrics "github.com/slok/go-http-metrics/metrics/prometheus"
	httpmetrics "github.com/slok/go-http-metrics/middleware"
	"github.com/slok/go-http-metrics/middleware/std"
	"golang.org/x/time/rate"

	"github.com/tendant/simple-paintmixer/internal/mixer"
)

// Device is the part of the mixer the HTTP layer drives.
type Device interface {
	Submit(mixer.Amounts) (mixer.Code, error)
	Cancel(code int) error
	QueryState(code int) mixer.Status
	Inspect(code int) (mixer.Job, mixer.State, bool)
}

// Options configures the router.
type Options struct {
	// RatePerSecond limits requests to the job endpoints. Zero disables limiting.
	RatePerSecond float64
	RateBurst     int

	AllowedOrigins []string
	SwatchSize     int

	// Registerer and Gatherer back the HTTP metrics and /metrics. Both may be nil.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// DefaultOptions mirrors the limits of the physical mixer's API.
func DefaultOptions() Options {
	return Options{
		RatePerSecond:  5,
		RateBurst:      5,
		AllowedOrigins: []string{"*"},
		SwatchSize:     256,
	}
}

// NewRouter builds the HTTP handler for the mixer API.
func NewRouter(dev Device, logger *slog.Logger, opts Options) http.Handler {
	if opts.SwatchSize <= 0 {
		opts.SwatchSize = DefaultOptions().SwatchSize
	}
	h := &handler{dev: dev, logger: logger, swatchSize: opts.SwatchSize}

	httpLogger := &httplog.Logger{
		Logger: logger,
		Options: httplog.Options{
			LogLevel:        slog.LevelInfo,
			Concise:         true,
			QuietDownRoutes: []string{"/healthz", "/metrics"},
			QuietDownPeriod: 10 * time.Second,
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(httplog.RequestLogger(httpLogger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	measure := func(string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.Registerer != nil {
		mdlw := httpmetrics.New(httpmetrics.Config{
			Recorder: metrics.NewRecorder(metrics.Config{Registry: opts.Registerer}),
		})
		measure = func(id string) func(http.Handler) http.Handler {
			return std.HandlerProvider(id, mdlw)
		}
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/PaintMix", func(r chi.Router) {
		if opts.RatePerSecond > 0 {
			r.Use(rateLimit(rate.NewLimiter(rate.Limit(opts.RatePerSecond), max(opts.RateBurst, 1))))
		}
		r.With(measure("from_values")).Post("/FromValues", h.fromValues)
		r.With(measure("from_model")).Post("/FromModel", h.fromModel)
		r.With(measure("job_inspect")).Get("/Job/{id:-?[0-9]+}", h.inspect)
		r.With(measure("job_status")).Get("/Job/{id:-?[0-9]+}/status", h.status)
		r.With(measure("job_cancel")).Delete("/Job/{id:-?[0-9]+}/cancel", h.cancel)
		r.With(measure("job_swatch")).Get("/Job/{id:-?[0-9]+}/swatch.png", h.swatch)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "Resource not found.")
	})
	return r
}
