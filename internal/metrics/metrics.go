// Package metrics tracks publish outcomes. The process is single-shot, so
// nothing is scraped; collected samples are pushed to a Pushgateway on exit
// when one is configured.
package metrics

import (
	"context"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	publishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hookpub_publish_total",
		Help: "Hook envelopes published grouped by event kind and outcome",
	}, []string{"kind", "status"})

	lockFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hookpub_sequence_lock_fallback_total",
		Help: "Sequence allocations that fell back to a timestamp value",
	})

	allocationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hookpub_sequence_allocation_seconds",
		Help:    "Duration of sequence allocation including lock wait",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
	})
)

// ObservePublish records a publish attempt for the event kind.
func ObservePublish(kind, status string) {
	if kind == "" {
		kind = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	publishTotal.WithLabelValues(kind, status).Inc()
}

// ObserveLockFallback counts a timestamp-fallback allocation.
func ObserveLockFallback() {
	lockFallbackTotal.Inc()
}

// ObserveAllocation records how long one allocation took.
func ObserveAllocation(d time.Duration) {
	allocationDuration.Observe(d.Seconds())
}

// Push sends collected samples to the Pushgateway. Best-effort: callers log
// the error and move on, a metrics outage must never fail a hook.
func Push(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	host, _ := os.Hostname()
	if host == "" {
		host = "unknown"
	}
	return push.New(url, "hookpub").
		Gatherer(prometheus.DefaultGatherer).
		Grouping("instance", host).
		AddContext(ctx)
}
