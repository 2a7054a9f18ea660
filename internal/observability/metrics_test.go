package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func latencySamples(t *testing.T, op, table string) uint64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "recipebox_database_query_latency_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["operation"] == op && labels["table"] == table {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func TestQueryMetricsPluginObservesQueries(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Use(QueryMetricsPlugin{}); err != nil {
		t.Fatalf("register plugin: %v", err)
	}

	type widget struct {
		ID   uint
		Name string
	}
	if err := db.AutoMigrate(&widget{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	before := latencySamples(t, "create", "widgets")
	if err := db.Create(&widget{Name: "a"}).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	var got []widget
	if err := db.Find(&got).Error; err != nil {
		t.Fatalf("find: %v", err)
	}

	if after := latencySamples(t, "create", "widgets"); after != before+1 {
		t.Fatalf("expected one create sample, before=%d after=%d", before, after)
	}
	if latencySamples(t, "query", "widgets") == 0 {
		t.Fatal("expected query samples for widgets")
	}
}
