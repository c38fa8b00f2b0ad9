package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zircuit-multisig/safe-eth-go/internal/explorer"
	"github.com/zircuit-multisig/safe-eth-go/internal/models"
)

// Lookup outcomes.
const (
	OutcomeFound       = "found"
	OutcomeNotFound    = "not_found"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

// LookupMetrics holds the explorer lookup counters and latencies, labelled
// by client. It is a prometheus.Collector; register it once and wrap every
// client with Instrument.
type LookupMetrics struct {
	lookups  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewLookupMetrics() *LookupMetrics {
	return &LookupMetrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "safe_eth",
			Subsystem: "explorer",
			Name:      "lookups_total",
			Help:      "Contract metadata lookups by client and outcome",
		}, []string{"client", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "safe_eth",
			Subsystem: "explorer",
			Name:      "lookup_duration_seconds",
			Help:      "Contract metadata lookup latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"client"}),
	}
}

// Instrument returns next with its calls counted and timed under its own
// client name.
func (m *LookupMetrics) Instrument(next explorer.MetadataLookup) *InstrumentedLookup {
	return &InstrumentedLookup{next: next, metrics: m}
}

func (m *LookupMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.lookups.Describe(ch)
	m.duration.Describe(ch)
}

func (m *LookupMetrics) Collect(ch chan<- prometheus.Metric) {
	m.lookups.Collect(ch)
	m.duration.Collect(ch)
}

// InstrumentedLookup records every call made to a single explorer client.
type InstrumentedLookup struct {
	next    explorer.MetadataLookup
	metrics *LookupMetrics
}

func (l *InstrumentedLookup) Name() string {
	return l.next.Name()
}

func (l *InstrumentedLookup) ContractMetadata(ctx context.Context, address string) (*models.ContractMetadata, error) {
	start := time.Now()
	metadata, err := l.next.ContractMetadata(ctx, address)
	l.metrics.duration.WithLabelValues(l.next.Name()).Observe(time.Since(start).Seconds())
	l.metrics.lookups.WithLabelValues(l.next.Name(), outcome(err)).Inc()
	return metadata, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeFound
	case errors.Is(err, explorer.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, explorer.ErrRateLimited):
		return OutcomeRateLimited
	default:
		return OutcomeError
	}
}
