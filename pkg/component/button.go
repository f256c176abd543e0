// Package component holds reusable UI components shared by page objects.
package component

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/devicelab-dev/mobile-pom/pkg/actions"
	"github.com/devicelab-dev/mobile-pom/pkg/element"
	"github.com/devicelab-dev/mobile-pom/pkg/logger"
)

// Result is the outcome of a component call that never fails outright.
// Value holds the zero value when Err is set.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Present returns the value and whether it is meaningful.
func (r Result[T]) Present() (T, bool) {
	return r.Value, r.Err == nil
}

func failed[T any](err error) Result[T] {
	var zero T
	return Result[T]{Value: zero, Err: err}
}

// Button wraps button interactions. Each call logs exactly one record:
// INFO on success, ERROR on failure.
type Button struct {
	actions *actions.Actions
}

// NewButton returns a Button using a for waits.
func NewButton(a *actions.Actions) *Button {
	return &Button{actions: a}
}

// Click waits for the button to be clickable and clicks it.
func (b *Button) Click(el *element.Element, name string) Result[bool] {
	err := guard(func() error { return b.actions.Click(el) })
	if err != nil {
		logFailure("Failed to click on button", name, err)
		return failed[bool](err)
	}
	logger.Info("Clicked button: %s", name)
	return Result[bool]{Value: true}
}

// IsEnabled waits for the button to be visible and reports whether it is enabled.
func (b *Button) IsEnabled(el *element.Element, name string) Result[bool] {
	var enabled bool
	err := guard(func() error {
		el, err := b.actions.WaitForVisibility(el)
		if err != nil {
			return err
		}
		enabled, err = el.Enabled()
		return err
	})
	if err != nil {
		logFailure("Failed to check if button is enabled", name, err)
		return failed[bool](err)
	}
	logger.Info("Button %s is %s", name, pick(enabled, "enabled", "disabled"))
	return Result[bool]{Value: enabled}
}

// IsDisplayed reports whether the button is currently visible, without waiting.
func (b *Button) IsDisplayed(el *element.Element, name string) Result[bool] {
	var displayed bool
	err := guard(func() error {
		displayed = b.actions.IsDisplayed(el)
		return nil
	})
	if err != nil {
		logFailure("Failed to check if button is displayed", name, err)
		return failed[bool](err)
	}
	logger.Info("Button %s is %s", name, pick(displayed, "displayed", "not displayed"))
	return Result[bool]{Value: displayed}
}

// Text waits for the button to be visible and returns its label.
func (b *Button) Text(el *element.Element, name string) Result[string] {
	var text string
	err := guard(func() (err error) {
		text, err = b.actions.ReadText(el)
		return err
	})
	if err != nil {
		logFailure("Failed to get button text", name, err)
		return failed[string](err)
	}
	logger.Info("Button %s text: %s", name, text)
	return Result[string]{Value: text}
}

// guard turns a panic in fn into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func logFailure(msg, name string, err error) {
	logger.L().Error(msg+": "+name, zap.String("button", name), zap.Error(err))
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
