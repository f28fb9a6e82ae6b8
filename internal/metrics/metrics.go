// Package metrics exposes Prometheus instrumentation for the scoring engines.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "protectwatch"

var (
	evaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "evaluations_total",
			Help:      "Evaluations by engine and outcome",
		},
		[]string{"engine", "outcome"},
	)

	evaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "evaluation_duration_seconds",
			Help:      "Duration of engine evaluations",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"engine"},
	)

	registryLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "lookups_total",
			Help:      "Licence register lookups by result",
		},
		[]string{"result"},
	)

	catalogReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "reloads_total",
			Help:      "Catalog hot reloads by result",
		},
		[]string{"result"},
	)
)

// Registry lookup results.
const (
	LookupFound       = "found"
	LookupNotFound    = "not_found"
	LookupUnavailable = "unavailable"
)

// ObserveEvaluation counts one evaluation and records its duration since start.
func ObserveEvaluation(engine, outcome string, start time.Time) {
	evaluations.WithLabelValues(engine, outcome).Inc()
	evaluationDuration.WithLabelValues(engine).Observe(time.Since(start).Seconds())
}

// ObserveLookup counts one licence register lookup.
func ObserveLookup(result string) {
	registryLookups.WithLabelValues(result).Inc()
}

// ObserveReload counts one catalog reload attempt.
func ObserveReload(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	catalogReloads.WithLabelValues(result).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics listener started", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
