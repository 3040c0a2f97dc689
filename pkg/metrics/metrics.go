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

var (
	// SyncRuns counts per-account sync passes.
	SyncRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailsweep_sync_runs_total",
			Help: "Total number of per-account sync passes",
		},
		[]string{"status"}, // status: ok, list_failed, cancelled, error
	)

	MessagesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailsweep_messages_ingested_total",
			Help: "Total number of remote messages processed by the sync loop",
		},
		[]string{"status"}, // status: stored, failed, archive_failed
	)

	EnrichmentResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailsweep_enrichment_results_total",
			Help: "Outcome of summary and classification calls",
		},
		[]string{"kind", "status"},
	)

	UnsubscribeOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailsweep_unsubscribe_outcomes_total",
			Help: "Final status of automated unsubscribe attempts",
		},
		[]string{"status"},
	)

	AICallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mailsweep_ai_call_latency_ms",
			Help:    "AI completion call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(50, 2, 10), // 50ms to ~25s
		},
		[]string{"provider", "status"},
	)
)

func RecordAICall(provider string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	AICallLatency.WithLabelValues(provider, status).Observe(float64(duration.Milliseconds()))
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("metrics listener starting", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics listener stopped", zap.Error(err))
	}
}
