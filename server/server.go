// Package server wires the delegator's HTTP front end: the mux, its
// Prometheus/otelhttp instrumentation, and the three route families —
// POST /evaluate, GET /health, and Host-header-routed preconfigured edge
// routes.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	stdouttrace "go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"delegator/config"
	"delegator/constants"
	"delegator/logger"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delegator_http_requests_total",
		Help: "Total HTTP requests served, by handler/method/code.",
	}, []string{"handler", "method", "code"})
	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "delegator_http_request_duration_seconds",
		Help: "HTTP request latency in seconds, by handler/method.",
	}, []string{"handler", "method"})
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration)
}

// metricsMiddleware instruments a handler for Prometheus, mirroring the
// teacher's counter/histogram pair per named handler.
func metricsMiddleware(handlerName string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		duration := time.Since(start).Seconds()
		httpRequestsTotal.WithLabelValues(handlerName, r.Method, fmt.Sprintf("%d", rw.status)).Inc()
		httpRequestDuration.WithLabelValues(handlerName, r.Method).Observe(duration)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestIDMiddleware assigns (or forwards) an X-Request-Id and stashes it
// in the request context for structured logging.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(constants.HeaderRequestID)
		if reqID == "" {
			reqID = uuid.New().String()
		}
		w.Header().Set(constants.HeaderRequestID, reqID)
		ctx := logger.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// corsMiddleware applies the configured CORS policy (http.cors in the HCL
// document, spec.md §6.3), falling back to the teacher's permissive
// allow-any policy for any field left unset.
func corsMiddleware(cors config.CORSConfig, next http.Handler) http.Handler {
	origins := "*"
	if len(cors.AllowedOrigins) > 0 {
		origins = strings.Join(cors.AllowedOrigins, ", ")
	}
	methods := "GET, POST, OPTIONS"
	if len(cors.AllowedMethods) > 0 {
		methods = strings.Join(cors.AllowedMethods, ", ")
	}
	headers := "Content-Type, Authorization"
	if len(cors.AllowedHeaders) > 0 {
		headers = strings.Join(cors.AllowedHeaders, ", ")
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origins)
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.Header().Set("Access-Control-Allow-Headers", headers)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// initTracer sets up the OpenTelemetry tracer provider, supporting the
// exporters actually vendored: stdout (default) and otlp.
func initTracer(cfg *config.Config) {
	serviceName := "delegator"
	var exporter, endpoint string
	if cfg.Tracing != nil {
		if cfg.Tracing.ServiceName != "" {
			serviceName = cfg.Tracing.ServiceName
		}
		exporter = cfg.Tracing.Exporter
		endpoint = cfg.Tracing.Endpoint
	}

	res, _ := resource.New(context.Background(), resource.WithAttributes(semconv.ServiceName(serviceName)))

	var tp *sdktrace.TracerProvider
	switch exporter {
	case "otlp":
		if endpoint == "" {
			endpoint = "http://localhost:4318"
		}
		exp, err := otlptracehttp.New(context.Background(), otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
		if err == nil {
			tp = sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp), sdktrace.WithResource(res))
		}
	default:
		exp, _ := stdouttrace.New(stdouttrace.WithPrettyPrint())
		tp = sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp), sdktrace.WithResource(res))
	}
	if tp != nil {
		otel.SetTracerProvider(tp)
	}
}

// NewMux builds the delegator's full route table: /evaluate, /health,
// /metrics, and the configured virtualhost routes.
func NewMux(cfg *config.Config, deps RouteDeps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/evaluate", instrument("evaluate", NewEvaluateHandler(deps)))
	mux.Handle("/health", instrument("health", NewHealthHandler()))
	mux.Handle("/metrics", promhttp.Handler())

	vh := NewVirtualhostRouter(cfg, deps)
	mux.Handle("/", instrument("virtualhost", vh))

	return mux
}

func instrument(name string, h http.Handler) http.Handler {
	return otelhttp.NewHandler(metricsMiddleware(name, h), "http."+name)
}

// Serve builds the mux from cfg and runs the HTTP server until an
// interrupt/terminate signal arrives, then shuts down gracefully.
func Serve(cfg *config.Config, deps RouteDeps) error {
	initTracer(cfg)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	if cfg.HTTP.Host == "" {
		addr = fmt.Sprintf("0.0.0.0:%d", cfg.HTTP.Port)
	}

	handler := requestIDMiddleware(corsMiddleware(cfg.HTTP.CORS, NewMux(cfg, deps)))
	srv := &http.Server{Addr: addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal %v, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown error: %v", err)
			return err
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error: %v", err)
			return err
		}
		return nil
	}
}
