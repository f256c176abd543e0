// Package element provides lazily-resolved element handles.
//
// An Element is bound to a driver, a platform and a locator. It looks the
// element up on first use, caches the server's element ID, and looks it up
// again once if the server reports the cached ID as stale.
package element

import (
	"errors"

	"github.com/devicelab-dev/mobile-pom/pkg/core"
	"github.com/devicelab-dev/mobile-pom/pkg/locator"
)

// Driver is the subset of the Appium client an Element needs.
// *appium.Client implements it.
type Driver interface {
	FindElement(strategy, value string) (string, error)
	ClickElement(elementID string) error
	ClearElement(elementID string) error
	SendKeysToElement(elementID, text string) error
	GetElementText(elementID string) (string, error)
	IsElementDisplayed(elementID string) (bool, error)
	IsElementEnabled(elementID string) (bool, error)
}

// Element is a handle to one UI element. A nil *Element is valid and fails
// every operation with core.ErrElementNotFound.
type Element struct {
	driver   Driver
	platform core.Platform
	locator  locator.Locator
	id       string
}

// New returns a handle for loc. No lookup happens until the first operation.
func New(driver Driver, platform core.Platform, loc locator.Locator) *Element {
	return &Element{driver: driver, platform: platform, locator: loc}
}

// With runs fn against a copy of e whose requests go through d, then keeps
// the element ID the copy resolved.
func (e *Element) With(d Driver, fn func(el *Element)) {
	if e == nil || d == nil {
		fn(e)
		return
	}
	bound := *e
	bound.driver = d
	fn(&bound)
	e.id = bound.id
}

// Name returns the locator name.
func (e *Element) Name() string {
	if e == nil {
		return "<nil>"
	}
	return e.locator.Name
}

// Locator returns the locator the handle was created with.
func (e *Element) Locator() locator.Locator {
	if e == nil {
		return locator.Locator{}
	}
	return e.locator
}

// Find looks the element up, replacing any cached ID.
func (e *Element) Find() error {
	if e == nil || e.driver == nil {
		return core.ErrElementNotFound
	}
	by, err := e.locator.Resolve(e.platform)
	if err != nil {
		return err
	}
	id, err := e.driver.FindElement(string(by.Strategy), by.Value)
	if err != nil {
		e.id = ""
		if errors.Is(err, core.ErrElementNotFound) {
			return core.ErrElementNotFound.
				WithMessage("element not found: " + e.locator.Name).
				WithCause(core.TrimSentinel(err, core.ErrElementNotFound))
		}
		return err
	}
	e.id = id
	return nil
}

// do runs fn with the element ID, looking the element up first if needed and
// once more if fn reports the ID as stale.
func (e *Element) do(fn func(id string) error) error {
	if e == nil || e.driver == nil {
		return core.ErrElementNotFound
	}
	if e.id == "" {
		if err := e.Find(); err != nil {
			return err
		}
	}
	err := fn(e.id)
	if !errors.Is(err, core.ErrStaleElement) {
		return err
	}
	if err := e.Find(); err != nil {
		return err
	}
	return fn(e.id)
}

// Displayed reports whether the element is visible.
func (e *Element) Displayed() (bool, error) {
	var displayed bool
	err := e.do(func(id string) (err error) {
		displayed, err = e.driver.IsElementDisplayed(id)
		return err
	})
	return displayed, err
}

// Enabled reports whether the element accepts interaction.
func (e *Element) Enabled() (bool, error) {
	var enabled bool
	err := e.do(func(id string) (err error) {
		enabled, err = e.driver.IsElementEnabled(id)
		return err
	})
	return enabled, err
}

// Text returns the element's visible text.
func (e *Element) Text() (string, error) {
	var text string
	err := e.do(func(id string) (err error) {
		text, err = e.driver.GetElementText(id)
		return err
	})
	return text, err
}

// Click taps the element.
func (e *Element) Click() error {
	return e.do(func(id string) error {
		return e.driver.ClickElement(id)
	})
}

// Clear empties a text field.
func (e *Element) Clear() error {
	return e.do(func(id string) error {
		return e.driver.ClearElement(id)
	})
}

// SendKeys types text into the element.
func (e *Element) SendKeys(text string) error {
	return e.do(func(id string) error {
		return e.driver.SendKeysToElement(id, text)
	})
}
