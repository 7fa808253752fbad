package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorCounts(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector() error = %v", err)
	}

	c.ObserveRun("ok")
	c.ObserveRun("ok")
	c.ObservePlan("fallback")
	c.ObserveStep("spacex_agent", "ok", 10*time.Millisecond)
	c.ObserveValidation("validated")

	if got := testutil.ToFloat64(c.runs.WithLabelValues("ok")); got != 2 {
		t.Fatalf("runs_total{ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.plans.WithLabelValues("fallback")); got != 1 {
		t.Fatalf("plans_total{fallback} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.steps.WithLabelValues("spacex_agent", "ok")); got != 1 {
		t.Fatalf("agent_steps_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.validations.WithLabelValues("validated")); got != 1 {
		t.Fatalf("validations_total = %v, want 1", got)
	}
}

func TestCollectorDoubleRegister(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	MustNewCollector(reg)
	if _, err := NewCollector(reg); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestNilCollectorIsNoop(t *testing.T) {
	t.Parallel()

	var c *Collector
	c.ObserveRun("ok")
	c.ObservePlan("planned")
	c.ObserveStep("a", "ok", time.Second)
	c.ObserveValidation("fallback")
}
