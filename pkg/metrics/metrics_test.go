package metrics

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_Counters(t *testing.T) {
	p := NewPrometheus()

	p.ObserveWait("visible", true, 150*time.Millisecond)
	p.ObserveWait("visible", false, 2*time.Second)
	p.ObserveWait("clickable", true, 10*time.Millisecond)
	p.IncrementAction("click", OutcomeOK)
	p.IncrementAction("click", OutcomeOK)
	p.IncrementAction("type", OutcomeError)
	p.IncrementCase("passed")

	assert.Equal(t, 1.0, testutil.ToFloat64(p.waitTotal.WithLabelValues("visible", "satisfied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.waitTotal.WithLabelValues("visible", "timeout")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.actionTotal.WithLabelValues("click", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.actionTotal.WithLabelValues("type", OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.caseTotal.WithLabelValues("passed")))
	assert.Equal(t, 2, testutil.CollectAndCount(p.waitDuration))
}

func TestPrometheus_SeparateRegistries(t *testing.T) {
	a, b := NewPrometheus(), NewPrometheus()
	a.IncrementCase("failed")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.caseTotal.WithLabelValues("failed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.caseTotal.WithLabelValues("failed")))
}

func TestPrometheus_WriteText(t *testing.T) {
	p := NewPrometheus()
	p.IncrementCase("passed")
	p.IncrementAction("click", OutcomeOK)

	var buf bytes.Buffer
	require.NoError(t, p.WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, "# TYPE mobilepom_cases_total counter")
	assert.Contains(t, out, `mobilepom_cases_total{status="passed"} 1`)
	assert.Contains(t, out, `mobilepom_actions_total{action="click",outcome="ok"} 1`)

	err := testutil.GatherAndCompare(p.Registry(), strings.NewReader(`
# HELP mobilepom_cases_total Total test cases by final status
# TYPE mobilepom_cases_total counter
mobilepom_cases_total{status="passed"} 1
`), "mobilepom_cases_total")
	assert.NoError(t, err)
}

func TestPrometheus_WriteFile(t *testing.T) {
	p := NewPrometheus()
	p.IncrementCase("skipped")

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, p.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `mobilepom_cases_total{status="skipped"} 1`)

	assert.Error(t, p.WriteFile(filepath.Join(t.TempDir(), "missing", "metrics.prom")))
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	r.ObserveWait("visible", true, time.Second)
	r.IncrementAction("click", OutcomeOK)
	r.IncrementCase("passed")
}
