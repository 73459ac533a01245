// Package telemetry provides OpenTelemetry instrumentation for the product hub.
// It exports Prometheus metrics and provides tracing capabilities.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "producthub"

// Status bucket label values for the computed-status counter. A product can
// land in several buckets at once; "none" mirrors the list filter and ignores
// the draft flag.
const (
	BucketShopifyContent = "shopify_content"
	BucketNewLayout      = "new_layout"
	BucketDraftMode      = "draft_mode"
	BucketNone           = "none"
)

// Metrics holds all product hub Prometheus metrics
type Metrics struct {
	// Status pipeline metrics
	StatusesComputed    *prometheus.CounterVec
	StatusBatchSize     prometheus.Histogram
	StatusBatchDuration prometheus.Histogram
	CacheHits           prometheus.Counter
	CacheMisses         prometheus.Counter

	// Catalog sync metrics
	SyncRuns         *prometheus.CounterVec
	SyncDuration     prometheus.Histogram
	ProductsSynced   prometheus.Counter
	SnapshotsWritten prometheus.Counter

	// Publish metrics
	Publishes *prometheus.CounterVec
}

// Provider wraps telemetry providers
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry with Prometheus metrics
func NewProvider() *Provider {
	metrics := initMetrics()
	tracer := otel.Tracer(serviceName)

	return &Provider{
		Tracer:  tracer,
		Metrics: metrics,
	}
}

// Handler returns the Prometheus HTTP handler for /metrics endpoint
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}
	initStatusMetrics(m)
	initSyncMetrics(m)
	initPublishMetrics(m)
	return m
}

func initStatusMetrics(m *Metrics) {
	m.StatusesComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "producthub_statuses_computed_total",
		Help: "Content statuses computed, by bucket (a status can hit several buckets)",
	}, []string{"bucket"})

	m.StatusBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "producthub_status_batch_size",
		Help:    "Number of product ids per status batch lookup",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
	})

	m.StatusBatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "producthub_status_batch_duration_seconds",
		Help:    "Time to resolve one status batch lookup",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
	})

	m.CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "producthub_status_cache_hits_total",
		Help: "Status lookups served from the Redis cache",
	})

	m.CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "producthub_status_cache_misses_total",
		Help: "Status lookups that fell through to snapshots or recomputation",
	})
}

func initSyncMetrics(m *Metrics) {
	m.SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "producthub_sync_runs_total",
		Help: "Catalog sync runs by result (success, failure)",
	}, []string{"result"})

	m.SyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "producthub_sync_duration_seconds",
		Help:    "Wall time of one catalog sync run",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
	})

	m.ProductsSynced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "producthub_products_synced_total",
		Help: "Products mirrored from the catalog",
	})

	m.SnapshotsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "producthub_snapshots_written_total",
		Help: "Status snapshots persisted",
	})
}

func initPublishMetrics(m *Metrics) {
	m.Publishes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "producthub_publishes_total",
		Help: "Draft publishes to Shopify by result (success, failure)",
	}, []string{"result"})
}

// RecordStatusComputed increments every bucket the computed status falls in.
func (p *Provider) RecordStatusComputed(hasShopifyContent, hasNewLayout, hasDraftContent bool) {
	if hasShopifyContent {
		p.Metrics.StatusesComputed.WithLabelValues(BucketShopifyContent).Inc()
	}
	if hasNewLayout {
		p.Metrics.StatusesComputed.WithLabelValues(BucketNewLayout).Inc()
	}
	if hasDraftContent {
		p.Metrics.StatusesComputed.WithLabelValues(BucketDraftMode).Inc()
	}
	if !hasShopifyContent && !hasNewLayout {
		p.Metrics.StatusesComputed.WithLabelValues(BucketNone).Inc()
	}
}

// RecordStatusBatch records the size and duration of one batch lookup.
func (p *Provider) RecordStatusBatch(size int, duration time.Duration) {
	p.Metrics.StatusBatchSize.Observe(float64(size))
	p.Metrics.StatusBatchDuration.Observe(duration.Seconds())
}

// RecordCacheLookup records the hit/miss split of one cache read.
func (p *Provider) RecordCacheLookup(hits, misses int) {
	p.Metrics.CacheHits.Add(float64(hits))
	p.Metrics.CacheMisses.Add(float64(misses))
}

// RecordSyncRun records the outcome and duration of one catalog sync.
func (p *Provider) RecordSyncRun(success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	p.Metrics.SyncRuns.WithLabelValues(result).Inc()
	p.Metrics.SyncDuration.Observe(duration.Seconds())
}

// RecordProductsSynced adds to the mirrored-products counter.
func (p *Provider) RecordProductsSynced(count int) {
	p.Metrics.ProductsSynced.Add(float64(count))
}

// RecordSnapshotsWritten adds to the persisted-snapshots counter.
func (p *Provider) RecordSnapshotsWritten(count int) {
	p.Metrics.SnapshotsWritten.Add(float64(count))
}

// RecordPublish records the outcome of one publish to Shopify.
func (p *Provider) RecordPublish(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	p.Metrics.Publishes.WithLabelValues(result).Inc()
}

// StartSpan starts a new trace span.
// The caller is responsible for ending the span with span.End().
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, span
}
