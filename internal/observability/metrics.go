// Package observability holds process-wide metrics and tracing setup.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// DatabaseQueryLatency records query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recipebox_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CacheLookups counts cache-aside lookups by key prefix and result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipebox_cache_lookups_total",
		Help: "Cache lookups by key prefix and result",
	}, []string{"prefix", "result"})

	// WebSocketEventsTotal counts realtime events delivered by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipebox_websocket_events_total",
		Help: "Total realtime events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped because a client send buffer was full.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipebox_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// ImageUploads counts processed uploads by kind (post, avatar) and outcome.
	ImageUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipebox_image_uploads_total",
		Help: "Image uploads by kind and outcome",
	}, []string{"kind", "outcome"})
)

const queryStartKey = "observability:query_start"

// QueryMetricsPlugin is a gorm plugin feeding DatabaseQueryLatency.
type QueryMetricsPlugin struct{}

// Name implements gorm.Plugin.
func (QueryMetricsPlugin) Name() string { return "recipebox:query_metrics" }

// Initialize implements gorm.Plugin.
func (QueryMetricsPlugin) Initialize(db *gorm.DB) error {
	type hook struct {
		op     string
		before func(string, func(*gorm.DB)) error
		after  func(string, func(*gorm.DB)) error
	}

	cb := db.Callback()
	hooks := []hook{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}

	for _, h := range hooks {
		op := h.op
		if err := h.before("metrics:before_"+op, func(tx *gorm.DB) {
			tx.InstanceSet(queryStartKey, time.Now())
		}); err != nil {
			return err
		}
		if err := h.after("metrics:after_"+op, func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(queryStartKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "unknown"
			}
			DatabaseQueryLatency.WithLabelValues(op, table).Observe(time.Since(start).Seconds())
		}); err != nil {
			return err
		}
	}
	return nil
}
