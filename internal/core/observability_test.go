package core

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"archgraph/pkg/domain"
)

func TestExpvarMetricsRecorder(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	ctx := context.Background()

	rec.Observe(ctx, "add_element", true, 40*time.Millisecond)
	rec.Observe(ctx, "add_element", true, 10*time.Millisecond)
	rec.Observe(ctx, "add_element", false, 5*time.Millisecond)

	snap := rec.Snapshot()
	if snap.DurationsMS["add_element"] != 55 {
		t.Fatalf("expected 55ms total, got %v", snap.DurationsMS["add_element"])
	}
	if snap.Results["add_element"]["success"] != 2 || snap.Results["add_element"]["error"] != 1 {
		t.Fatalf("unexpected result counts %+v", snap.Results)
	}
	if rec.Name() == "" {
		t.Fatalf("expected generated export name")
	}
}

func TestExpvarRecorderGeneratesUniqueNames(t *testing.T) {
	a := NewExpvarMetricsRecorder("")
	b := NewExpvarMetricsRecorder("")
	if a.Name() == b.Name() {
		t.Fatalf("expected distinct names, both %q", a.Name())
	}
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	ctx := context.Background()

	rec.Observe(ctx, "add_element", true, 12*time.Millisecond)
	rec.Observe(ctx, "add_element", false, 3*time.Millisecond)

	success := testutil.ToFloat64(rec.operations.WithLabelValues("add_element", "success"))
	failure := testutil.ToFloat64(rec.operations.WithLabelValues("add_element", "error"))
	if success != 1 || failure != 1 {
		t.Fatalf("unexpected counters success=%v error=%v", success, failure)
	}

	// Double registration of the same metric names must surface, not panic.
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestServiceObservesOperations(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	svc := NewService(WithMetrics(rec))
	ctx := context.Background()

	if _, _, err := svc.AddElement(ctx, domain.ElementCapability, capability("cap-1", "Billing")); err != nil {
		t.Fatalf("add element: %v", err)
	}
	if _, _, err := svc.AddElement(ctx, domain.ElementCapability, capability("cap-1", "Billing")); err == nil {
		t.Fatalf("expected duplicate rejection")
	}

	snap := rec.Snapshot()
	if snap.Results["add_element"]["success"] != 1 || snap.Results["add_element"]["error"] != 1 {
		t.Fatalf("expected one success and one error observed, got %+v", snap.Results)
	}
}

func TestCacheStatsCollector(t *testing.T) {
	svc := NewService()
	ctx := context.Background()
	if _, _, err := svc.AddElement(ctx, domain.ElementCapability, capability("cap-1", "Billing")); err != nil {
		t.Fatalf("add element: %v", err)
	}
	svc.GetElementByID("cap-1")
	svc.GetElementByID("cap-1")

	reg := prometheus.NewRegistry()
	for _, c := range svc.CacheCollectors() {
		if err := reg.Register(c); err != nil {
			t.Fatalf("register %s collector: %v", c.tier, err)
		}
	}

	// Two tiers, six metrics each.
	if got := testutil.CollectAndCount(svc.CacheCollectors()[0]); got != 6 {
		t.Fatalf("expected 6 metrics per tier, got %d", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	byName := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "tier" && l.GetValue() == "query" {
					if m.GetCounter() != nil {
						byName[mf.GetName()] = m.GetCounter().GetValue()
					}
				}
			}
		}
	}
	if byName["archgraph_cache_hits_total"] != 1 {
		t.Fatalf("expected 1 query-tier hit, got %v", byName["archgraph_cache_hits_total"])
	}
	if byName["archgraph_cache_misses_total"] != 1 {
		t.Fatalf("expected 1 query-tier miss, got %v", byName["archgraph_cache_misses_total"])
	}
}
