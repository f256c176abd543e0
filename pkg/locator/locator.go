// Package locator declares element selectors for both platforms.
//
// A page lists its locators in a Table. Each Locator carries one selector per
// platform and is resolved once, when the element is first looked up.
package locator

import (
	"fmt"
	"sort"

	"github.com/devicelab-dev/mobile-pom/pkg/core"
)

// Strategy is a W3C/Appium locator strategy name.
type Strategy string

const (
	ByID                 Strategy = "id"
	ByAccessibilityID    Strategy = "accessibility id"
	ByXPath              Strategy = "xpath"
	ByClassName          Strategy = "class name"
	ByAndroidUIAutomator Strategy = "-android uiautomator"
	ByIOSPredicate       Strategy = "-ios predicate string"
	ByIOSClassChain      Strategy = "-ios class chain"
)

// By is a single strategy/value pair sent to the driver.
type By struct {
	Strategy Strategy
	Value    string
}

// IsZero reports whether no selector was declared.
func (b By) IsZero() bool {
	return b.Strategy == "" || b.Value == ""
}

func (b By) String() string {
	return fmt.Sprintf("%s=%s", b.Strategy, b.Value)
}

// Locator names an element and how to find it on each platform.
type Locator struct {
	Name    string
	Android By
	IOS     By
}

// ID declares the common case: an Android resource id and an iOS accessibility
// id that share the same value.
func ID(name string) Locator {
	return Locator{
		Name:    name,
		Android: By{Strategy: ByID, Value: name},
		IOS:     By{Strategy: ByAccessibilityID, Value: name},
	}
}

// Resolve returns the selector for platform.
func (l Locator) Resolve(platform core.Platform) (By, error) {
	var by By
	switch platform {
	case core.PlatformAndroid:
		by = l.Android
	case core.PlatformIOS:
		by = l.IOS
	default:
		return By{}, core.ErrInvalidPlatform.WithMessage(fmt.Sprintf("invalid platform %q for locator %s", platform, l.Name))
	}
	if by.IsZero() {
		return By{}, core.ErrInvalidConfig.WithMessage(fmt.Sprintf("locator %s has no %s selector", l.Name, platform))
	}
	return by, nil
}

// Table holds a page's locators by name.
type Table map[string]Locator

// NewTable builds a table from locators. A later locator with the same name
// replaces an earlier one.
func NewTable(locators ...Locator) Table {
	t := make(Table, len(locators))
	for _, l := range locators {
		t[l.Name] = l
	}
	return t
}

// Get returns the named locator.
func (t Table) Get(name string) (Locator, error) {
	l, ok := t[name]
	if !ok {
		return Locator{}, core.ErrInvalidConfig.WithMessage("unknown locator: " + name)
	}
	return l, nil
}

// Names returns the locator names in sorted order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
