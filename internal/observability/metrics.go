// Package observability provides Prometheus metrics and structured logging
// for the pmagent service.
package observability

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MessagesReceived counts inbound chat events by ingest outcome.
	// Labels: outcome (accepted|duplicate|filtered|dropped)
	MessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pmagent_messages_received_total",
			Help: "Total number of inbound chat events by ingest outcome",
		},
		[]string{"outcome"},
	)

	// LLMAttempts counts model completion attempts.
	// Labels: model, status (ok|transient|overloaded|other)
	LLMAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pmagent_llm_attempts_total",
			Help: "Total number of model completion attempts by model and status",
		},
		[]string{"model", "status"},
	)

	// ToolExecutions counts tool invocations.
	// Labels: tool_name, status (ok|error)
	ToolExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pmagent_tool_executions_total",
			Help: "Total number of tool executions by tool name and status",
		},
		[]string{"tool_name", "status"},
	)

	// WorkItems counts processed work items by final outcome.
	// Labels: outcome (answered|failed)
	WorkItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pmagent_work_items_total",
			Help: "Total number of work items processed by outcome",
		},
		[]string{"outcome"},
	)

	// WorkItemDuration measures end-to-end work item processing time.
	WorkItemDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pmagent_work_item_duration_seconds",
			Help:    "Duration of work item processing in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
	)

	// QueueDepth tracks the number of work items waiting for the worker.
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pmagent_queue_depth",
			Help: "Current number of queued work items",
		},
	)
)

// ServeMetrics runs the Prometheus scrape endpoint until the context is
// cancelled.
func ServeMetrics(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("metrics endpoint listening", "addr", addr)

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
