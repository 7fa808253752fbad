package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "goal_pipeline"

// Collector records orchestrator activity. A nil *Collector is a no-op.
type Collector struct {
	runs        *prometheus.CounterVec
	plans       *prometheus.CounterVec
	steps       *prometheus.CounterVec
	stepSeconds *prometheus.HistogramVec
	validations *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by final status.",
		}, []string{"status"}),
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_total",
			Help:      "Plans produced, by planner source.",
		}, []string{"source"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_steps_total",
			Help:      "Agent steps attempted, by agent and status.",
		}, []string{"agent", "status"}),
		stepSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "agent_step_seconds",
			Help:      "Agent step latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"agent"}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Goal validations, by verdict source.",
		}, []string{"source"}),
	}

	if reg != nil {
		for _, col := range []prometheus.Collector{c.runs, c.plans, c.steps, c.stepSeconds, c.validations} {
			if err := reg.Register(col); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func MustNewCollector(reg prometheus.Registerer) *Collector {
	c, err := NewCollector(reg)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Collector) ObserveRun(status string) {
	if c == nil {
		return
	}
	c.runs.WithLabelValues(status).Inc()
}

func (c *Collector) ObservePlan(source string) {
	if c == nil {
		return
	}
	c.plans.WithLabelValues(source).Inc()
}

func (c *Collector) ObserveStep(agent string, status string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.steps.WithLabelValues(agent, status).Inc()
	if elapsed > 0 {
		c.stepSeconds.WithLabelValues(agent).Observe(elapsed.Seconds())
	}
}

func (c *Collector) ObserveValidation(source string) {
	if c == nil {
		return
	}
	c.validations.WithLabelValues(source).Inc()
}
