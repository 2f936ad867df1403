package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Cycle outcomes recorded on the sync cycle counter.
const (
	OutcomeSuccess      = "success"
	OutcomeFetchError   = "fetch_error"
	OutcomeStoreError   = "store_error"
	OutcomePublishError = "publish_error"
	OutcomeSkipped      = "skipped"
)

// SyncMetrics holds instruments for the remote merge loop and the quote
// collection. All methods are safe to call on a nil receiver so callers can
// run without telemetry wired.
type SyncMetrics struct {
	cycleTotal     metric.Int64Counter
	quotesFetched  metric.Int64Counter
	quotesAdded    metric.Int64Counter
	publishTotal   metric.Int64Counter
	cycleDuration  metric.Float64Histogram
	collectionSize metric.Int64Gauge
}

// NewSyncMetrics creates the sync and collection instruments.
func NewSyncMetrics() (*SyncMetrics, error) {
	meter := otel.Meter(instrumentationName)

	cycleTotal, err := meter.Int64Counter(
		"sync.cycle.total",
		metric.WithDescription("Total number of sync cycles by outcome"),
	)
	if err != nil {
		return nil, err
	}

	quotesFetched, err := meter.Int64Counter(
		"sync.quotes.fetched",
		metric.WithDescription("Total number of quotes fetched from the remote source"),
	)
	if err != nil {
		return nil, err
	}

	quotesAdded, err := meter.Int64Counter(
		"sync.quotes.added",
		metric.WithDescription("Total number of remote quotes merged into the collection"),
	)
	if err != nil {
		return nil, err
	}

	publishTotal, err := meter.Int64Counter(
		"sync.publish.total",
		metric.WithDescription("Total number of upstream publish attempts by outcome"),
	)
	if err != nil {
		return nil, err
	}

	cycleDuration, err := meter.Float64Histogram(
		"sync.cycle.duration",
		metric.WithDescription("Sync cycle duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	collectionSize, err := meter.Int64Gauge(
		"quotes.collection.size",
		metric.WithDescription("Current number of quotes in the collection"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		cycleTotal:     cycleTotal,
		quotesFetched:  quotesFetched,
		quotesAdded:    quotesAdded,
		publishTotal:   publishTotal,
		cycleDuration:  cycleDuration,
		collectionSize: collectionSize,
	}, nil
}

// RecordCycle records the result of one completed sync cycle.
func (m *SyncMetrics) RecordCycle(ctx context.Context, outcome string, fetched, added int, duration time.Duration) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.cycleTotal.Add(ctx, 1, attrs)
	m.cycleDuration.Record(ctx, duration.Seconds(), attrs)

	if fetched > 0 {
		m.quotesFetched.Add(ctx, int64(fetched))
	}
	if added > 0 {
		m.quotesAdded.Add(ctx, int64(added))
	}
}

// RecordSkipped records a cycle that was skipped because a previous cycle
// was still running or syncing is paused.
func (m *SyncMetrics) RecordSkipped(ctx context.Context) {
	if m == nil {
		return
	}
	m.cycleTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", OutcomeSkipped)))
}

// RecordPublish records one upstream publish attempt.
func (m *SyncMetrics) RecordPublish(ctx context.Context, err error) {
	if m == nil {
		return
	}

	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomePublishError
	}
	m.publishTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordCollectionSize records the current quote collection size.
func (m *SyncMetrics) RecordCollectionSize(ctx context.Context, size int) {
	if m == nil {
		return
	}
	m.collectionSize.Record(ctx, int64(size))
}
