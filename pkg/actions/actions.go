// Package actions implements explicit waits and the element actions built on
// them. Waits poll a Condition at a fixed interval until it holds or the
// timeout elapses. Against an Appium client every check is also bounded by
// the wait's deadline, so a stalled server cannot hold a wait open.
package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/devicelab-dev/mobile-pom/pkg/core"
	"github.com/devicelab-dev/mobile-pom/pkg/driver/appium"
	"github.com/devicelab-dev/mobile-pom/pkg/element"
	"github.com/devicelab-dev/mobile-pom/pkg/locator"
	"github.com/devicelab-dev/mobile-pom/pkg/logger"
	"github.com/devicelab-dev/mobile-pom/pkg/metrics"
)

// Wait durations.
const (
	DefaultTimeout  = 10 * time.Second
	ExtendedTimeout = 30 * time.Second
	ShortTimeout    = 5 * time.Second
	DefaultInterval = 200 * time.Millisecond
)

// Condition is a named predicate over an element. An error from Check counts
// as "not yet" while waiting. Unmet, when set, is the cause reported on
// timeout if the element was found but the predicate never held.
type Condition struct {
	Name  string
	Check func(el *element.Element) (bool, error)
	Unmet *core.ExecutionError
}

// Visible holds when the element exists and is displayed.
var Visible = Condition{
	Name:  "visible",
	Unmet: core.ErrElementNotVisible,
	Check: func(el *element.Element) (bool, error) {
		return el.Displayed()
	},
}

// Clickable holds when the element is displayed and enabled.
var Clickable = Condition{
	Name:  "clickable",
	Unmet: core.ErrElementNotClickable,
	Check: func(el *element.Element) (bool, error) {
		displayed, err := el.Displayed()
		if err != nil || !displayed {
			return false, err
		}
		return el.Enabled()
	},
}

// Actions performs waits and element actions against one driver session.
type Actions struct {
	driver   element.Driver
	bind     func(ctx context.Context) element.Driver
	platform core.Platform
	recorder metrics.Recorder

	Timeout  time.Duration
	Interval time.Duration
}

// Option configures Actions.
type Option func(*Actions)

// WithTimeout sets the default wait timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(a *Actions) {
		if d > 0 {
			a.Timeout = d
		}
	}
}

// WithInterval sets the polling interval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(a *Actions) {
		if d > 0 {
			a.Interval = d
		}
	}
}

// WithRecorder reports waits and actions to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(a *Actions) {
		if r != nil {
			a.recorder = r
		}
	}
}

// New returns Actions bound to driver on platform.
func New(driver element.Driver, platform core.Platform, opts ...Option) *Actions {
	a := &Actions{
		driver:   driver,
		platform: platform,
		recorder: metrics.Nop{},
		Timeout:  DefaultTimeout,
		Interval: DefaultInterval,
	}
	if c, ok := driver.(*appium.Client); ok {
		a.bind = func(ctx context.Context) element.Driver { return c.WithContext(ctx) }
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Platform returns the platform locators are resolved for.
func (a *Actions) Platform() core.Platform {
	return a.platform
}

// Element returns a lazily-resolved handle for loc.
func (a *Actions) Element(loc locator.Locator) *element.Element {
	return element.New(a.driver, a.platform, loc)
}

// WaitUntil polls cond until it holds or timeout elapses, and returns el.
// The last check happens at or after the deadline, so a timeout error is
// never returned early.
func (a *Actions) WaitUntil(cond Condition, el *element.Element, timeout time.Duration) (*element.Element, error) {
	if el == nil {
		return nil, core.ErrElementNotFound.WithMessage("cannot wait for " + cond.Name + ": no element")
	}

	start := time.Now()
	deadline := start.Add(timeout)
	var lastErr error
	for {
		ok, err := a.check(cond, el, deadline)
		if err == nil && ok {
			a.recorder.ObserveWait(cond.Name, true, time.Since(start))
			return el, nil
		}
		lastErr = err

		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		if remaining > a.Interval {
			remaining = a.Interval
		}
		time.Sleep(remaining)
	}

	elapsed := time.Since(start)
	a.recorder.ObserveWait(cond.Name, false, elapsed)
	logger.Debug("wait for %s %s timed out after %s", el.Name(), cond.Name, elapsed)

	timeoutErr := core.ErrWaitTimeout.
		WithMessage(fmt.Sprintf("%s not %s after %s", el.Name(), cond.Name, timeout)).
		WithDetails(map[string]interface{}{
			"element":   el.Name(),
			"condition": cond.Name,
			"timeout":   timeout.String(),
		})
	switch {
	case lastErr != nil:
		return nil, timeoutErr.WithCause(lastErr)
	case cond.Unmet != nil:
		return nil, timeoutErr.WithCause(cond.Unmet)
	}
	return nil, timeoutErr
}

// check runs cond once. A bound check gets until the wait deadline, and at
// least one polling interval, for its requests.
func (a *Actions) check(cond Condition, el *element.Element, deadline time.Time) (ok bool, err error) {
	if a.bind == nil {
		return cond.Check(el)
	}
	if floor := time.Now().Add(a.Interval); deadline.Before(floor) {
		deadline = floor
	}
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()
	el.With(a.bind(ctx), func(bound *element.Element) {
		ok, err = cond.Check(bound)
	})
	return ok, err
}

// WaitForVisibility waits with the default timeout until el is displayed.
func (a *Actions) WaitForVisibility(el *element.Element) (*element.Element, error) {
	return a.WaitUntil(Visible, el, a.Timeout)
}

// WaitForClickability waits with the default timeout until el is displayed and enabled.
func (a *Actions) WaitForClickability(el *element.Element) (*element.Element, error) {
	return a.WaitUntil(Clickable, el, a.Timeout)
}

// Click waits for el to be clickable and clicks it.
func (a *Actions) Click(el *element.Element) error {
	el, err := a.WaitForClickability(el)
	if err == nil {
		err = el.Click()
	}
	a.record("click", err)
	return err
}

// Type waits for el to be visible, clears it and types text.
func (a *Actions) Type(el *element.Element, text string) error {
	el, err := a.WaitForVisibility(el)
	if err == nil {
		err = el.Clear()
	}
	if err == nil {
		err = el.SendKeys(text)
	}
	a.record("type", err)
	return err
}

// ReadText waits for el to be visible and returns its text.
func (a *Actions) ReadText(el *element.Element) (string, error) {
	el, err := a.WaitForVisibility(el)
	var text string
	if err == nil {
		text, err = el.Text()
	}
	a.record("read_text", err)
	return text, err
}

// IsDisplayed checks visibility once without waiting. Any failure, including
// a nil or missing element, reads as false.
func (a *Actions) IsDisplayed(el *element.Element) (displayed bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debug("visibility check for %s panicked: %v", el.Name(), r)
			displayed = false
		}
	}()
	if el == nil {
		return false
	}
	displayed, err := el.Displayed()
	if err != nil {
		logger.Debug("visibility check for %s: %v", el.Name(), err)
		return false
	}
	return displayed
}

func (a *Actions) record(action string, err error) {
	if err != nil {
		a.recorder.IncrementAction(action, metrics.OutcomeError)
		return
	}
	a.recorder.IncrementAction(action, metrics.OutcomeOK)
}
