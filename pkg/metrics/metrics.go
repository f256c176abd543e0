// Package metrics records wait, element action and test case counters.
//
// A run owns one Prometheus registry; the CLI writes it out in the text
// exposition format when --metrics-file is given.
package metrics

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Recorder is what the actions and suite layers report to.
type Recorder interface {
	// Waits
	ObserveWait(condition string, satisfied bool, duration time.Duration)

	// Element actions (click, type, read_text)
	IncrementAction(action, outcome string)

	// Test cases by final status
	IncrementCase(status string)
}

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Nop discards everything.
type Nop struct{}

func (Nop) ObserveWait(string, bool, time.Duration) {}
func (Nop) IncrementAction(string, string)          {}
func (Nop) IncrementCase(string)                    {}

// Prometheus implements Recorder with collectors on a private registry.
type Prometheus struct {
	registry *prometheus.Registry

	waitDuration *prometheus.HistogramVec
	waitTotal    *prometheus.CounterVec
	actionTotal  *prometheus.CounterVec
	caseTotal    *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),

		// time spent in explicit waits, per condition
		waitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mobilepom_wait_duration_seconds",
				Help:    "Histogram of explicit wait durations",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"condition"},
		),

		// waits labelled by whether the condition held before the deadline
		waitTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mobilepom_waits_total",
				Help: "Total explicit waits",
			},
			[]string{"condition", "result"},
		),

		// element actions labelled by outcome
		actionTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mobilepom_actions_total",
				Help: "Total element actions",
			},
			[]string{"action", "outcome"},
		),

		// finished test cases by status
		caseTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mobilepom_cases_total",
				Help: "Total test cases by final status",
			},
			[]string{"status"},
		),
	}
	p.registry.MustRegister(p.waitDuration, p.waitTotal, p.actionTotal, p.caseTotal)
	return p
}

// Registry returns the registry the collectors live on.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

func (p *Prometheus) ObserveWait(condition string, satisfied bool, duration time.Duration) {
	result := "satisfied"
	if !satisfied {
		result = "timeout"
	}
	p.waitTotal.WithLabelValues(condition, result).Inc()
	p.waitDuration.WithLabelValues(condition).Observe(duration.Seconds())
}

func (p *Prometheus) IncrementAction(action, outcome string) {
	p.actionTotal.WithLabelValues(action, outcome).Inc()
}

func (p *Prometheus) IncrementCase(status string) {
	p.caseTotal.WithLabelValues(status).Inc()
}

// WriteText writes every metric family in the Prometheus text format.
func (p *Prometheus) WriteText(w io.Writer) error {
	families, err := p.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteFile writes the text format to path, replacing the file.
func (p *Prometheus) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	if err := p.WriteText(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
