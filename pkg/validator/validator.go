// Package validator checks a loaded configuration before a session is opened.
// It reports every problem at once instead of failing on the first missing key.
package validator

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/devicelab-dev/mobile-pom/pkg/config"
	"github.com/devicelab-dev/mobile-pom/pkg/core"
	"github.com/devicelab-dev/mobile-pom/pkg/session"
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Key, e.Message)
}

// Result contains the validation result.
type Result struct {
	// Platform is the validated platform.
	Platform core.Platform
	// Errors contains the problems that prevent a session from being created.
	Errors []error
	// Warnings contains problems the session can work around.
	Warnings []string
}

// IsValid returns true if there are no validation errors.
func (r *Result) IsValid() bool {
	return len(r.Errors) == 0
}

func (r *Result) fail(key, format string, args ...interface{}) {
	r.Errors = append(r.Errors, &ValidationError{Key: key, Message: fmt.Sprintf(format, args...)})
}

// Validate checks cfg for the named platform.
func Validate(platformName string, cfg *config.Config) *Result {
	result := &Result{}

	platform, err := core.ParsePlatform(platformName)
	if err != nil {
		result.Errors = append(result.Errors, err)
		return result
	}
	result.Platform = platform
	if cfg == nil {
		result.fail("config", "no configuration loaded")
		return result
	}

	validateServerURL(cfg.AppiumURL(), result)
	if cfg.WaitTimeout < 0 {
		result.fail("timeouts.wait", "must not be negative, got %s", cfg.WaitTimeout)
	}

	switch platform {
	case core.PlatformAndroid:
		pc := cfg.Android()
		validateRequired(result, map[string]string{
			config.KeyAndroidPlatformName:   pc.PlatformName,
			config.KeyAndroidDeviceName:     pc.DeviceName,
			config.KeyAndroidAutomationName: pc.AutomationName,
		})
		validateApp(result, config.KeyAndroidAppPath, pc.AppPath, map[string]string{
			config.KeyAppPackage:  pc.AppPackage,
			config.KeyAppActivity: pc.AppActivity,
		})
	case core.PlatformIOS:
		pc := cfg.IOS()
		validateRequired(result, map[string]string{
			config.KeyIOSPlatformName:   pc.PlatformName,
			config.KeyIOSDeviceName:     pc.DeviceName,
			config.KeyIOSAutomationName: pc.AutomationName,
		})
		validateApp(result, config.KeyIOSAppPath, pc.AppPath, map[string]string{
			config.KeyIOSBundleID: pc.BundleID,
		})
	}
	return result
}

func validateServerURL(raw string, result *Result) {
	if raw == "" {
		result.fail(config.KeyAppiumServerURL, "is required")
		return
	}
	u, err := url.Parse(raw)
	if err != nil {
		result.fail(config.KeyAppiumServerURL, "invalid URL: %v", err)
		return
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		result.fail(config.KeyAppiumServerURL, "unsupported scheme %q (expected http or https)", u.Scheme)
		return
	}
	if u.Host == "" {
		result.fail(config.KeyAppiumServerURL, "missing host in %q", raw)
	}
}

func validateRequired(result *Result, values map[string]string) {
	for _, key := range sortedKeys(values) {
		if strings.TrimSpace(values[key]) == "" {
			result.fail(key, "is required")
		}
	}
}

// validateApp accepts either an existing app path or a complete set of
// launch keys for an already-installed app.
func validateApp(result *Result, pathKey, path string, launch map[string]string) {
	if _, ok := session.ResolveApp(path); ok {
		return
	}

	var missing []string
	for _, key := range sortedKeys(launch) {
		if strings.TrimSpace(launch[key]) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		result.fail(pathKey, "app not found at %q and %s not set", path, strings.Join(missing, ", "))
		return
	}
	if path != "" {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s: app not found at %q, launching installed app", pathKey, path))
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
