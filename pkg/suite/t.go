package suite

import (
	"fmt"

	"github.com/devicelab-dev/mobile-pom/pkg/logger"
)

// stopCase unwinds a case body after FailNow or Skip.
type stopCase struct{}

// T is passed to each case body. It satisfies the TestingT interfaces of
// testify's assert and require packages.
type T struct {
	name       string
	failures   []string
	failed     bool
	skipped    bool
	skipReason string
}

func newT(name string) *T {
	return &T{name: name}
}

// Name returns the case name.
func (t *T) Name() string {
	return t.name
}

// Errorf records a failure and continues.
func (t *T) Errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	t.failed = true
	t.failures = append(t.failures, msg)
	logger.Error("%s: %s", t.name, msg)
}

// FailNow marks the case failed and stops it.
func (t *T) FailNow() {
	t.failed = true
	panic(stopCase{})
}

// Fatalf records a failure and stops the case.
func (t *T) Fatalf(format string, args ...interface{}) {
	t.Errorf(format, args...)
	t.FailNow()
}

// Skip marks the case skipped and stops it.
func (t *T) Skip(reason string) {
	t.skipped = true
	t.skipReason = reason
	panic(stopCase{})
}

// Logf logs at INFO level under the case name.
func (t *T) Logf(format string, args ...interface{}) {
	logger.Info("%s: %s", t.name, fmt.Sprintf(format, args...))
}

// Helper is a no-op kept for testify.
func (t *T) Helper() {}

// Failed reports whether the case has failed.
func (t *T) Failed() bool {
	return t.failed
}

// Failures returns a copy of the recorded failure messages.
func (t *T) Failures() []string {
	return append([]string(nil), t.failures...)
}
