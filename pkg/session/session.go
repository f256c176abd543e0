// Package session bootstraps and tears down the remote driver session.
//
// Open validates the platform, assembles a capability set from configuration
// and creates exactly one Appium session. Close ends it exactly once.
package session

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/devicelab-dev/mobile-pom/pkg/config"
	"github.com/devicelab-dev/mobile-pom/pkg/core"
	"github.com/devicelab-dev/mobile-pom/pkg/driver/appium"
	"github.com/devicelab-dev/mobile-pom/pkg/logger"
)

// Capabilities is the W3C capability set sent on session creation.
type Capabilities map[string]interface{}

// BuildCapabilities assembles the capability set for platform. Empty
// configuration values are left out so the server can report what is missing.
// When pc.AppPath names an existing file the app is installed from it;
// otherwise the already-installed app is launched by package/activity
// (Android) or bundle id (iOS).
func BuildCapabilities(platform core.Platform, pc config.PlatformConfig) Capabilities {
	caps := Capabilities{}
	caps.set("platformName", pc.PlatformName)
	caps.set("appium:deviceName", pc.DeviceName)
	caps.set("appium:automationName", pc.AutomationName)

	if app, ok := ResolveApp(pc.AppPath); ok {
		caps["appium:app"] = app
	} else {
		logger.Warn("App file not found at: %s", pc.AppPath)
		switch platform {
		case core.PlatformAndroid:
			caps.set("appium:appPackage", pc.AppPackage)
			caps.set("appium:appActivity", pc.AppActivity)
		case core.PlatformIOS:
			caps.set("appium:bundleId", pc.BundleID)
		}
	}

	caps["appium:noReset"] = false
	caps["appium:fullReset"] = false
	return caps
}

func (c Capabilities) set(key, value string) {
	if value != "" {
		c[key] = value
	}
}

// ResolveApp returns the absolute path of an installable app at path: a file,
// or an iOS .app bundle directory.
func ResolveApp(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	info, err := os.Stat(path)
	if err != nil || (info.IsDir() && filepath.Ext(path) != ".app") {
		return "", false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	return abs, true
}

// Session owns one remote driver session.
type Session struct {
	client   *appium.Client
	platform core.Platform
	caps     Capabilities

	closeOnce sync.Once
	closeErr  error
}

// Open creates a session for platformName ("android" or "ios", any case).
// An unknown platform fails before any network call.
func Open(platformName string, cfg *config.Config) (*Session, error) {
	logger.Info("Setting up test environment for platform: %s", platformName)

	platform, err := core.ParsePlatform(platformName)
	if err != nil {
		logger.Error("%v", err)
		return nil, err
	}
	if cfg == nil {
		return nil, core.ErrInvalidConfig.WithMessage("no configuration loaded")
	}
	url := cfg.AppiumURL()
	if url == "" {
		return nil, core.ErrInvalidConfig.WithMessage(config.KeyAppiumServerURL + " is not set")
	}

	var pc config.PlatformConfig
	switch platform {
	case core.PlatformAndroid:
		logger.Info("Initializing Android driver")
		pc = cfg.Android()
	case core.PlatformIOS:
		logger.Info("Initializing iOS driver")
		pc = cfg.IOS()
	}
	caps := BuildCapabilities(platform, pc)

	client := appium.NewClient(url)
	if err := client.Connect(caps); err != nil {
		logger.Error("Failed to create %s session at %s: %v", platform, url, err)
		return nil, core.ErrSessionCreate.
			WithMessage("create " + platform.String() + " session at " + url).
			WithCause(core.TrimSentinel(err, core.ErrSessionCreate))
	}
	logger.Info("%s driver initialized successfully (session %s)", platform, client.SessionID())

	// Element lookups must fail fast so explicit waits own all timing.
	if err := client.SetImplicitWait(0); err != nil {
		logger.Warn("Failed to disable implicit wait: %v", err)
	}

	return &Session{client: client, platform: platform, caps: caps}, nil
}

// Client returns the underlying Appium client.
func (s *Session) Client() *appium.Client {
	return s.client
}

// Platform returns the session's platform.
func (s *Session) Platform() core.Platform {
	return s.platform
}

// Capabilities returns the capability set the session was created with.
func (s *Session) Capabilities() Capabilities {
	return s.caps
}

// Close ends the session. Only the first call reaches the server; later
// calls return the first call's result.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		logger.Info("Tearing down test environment")
		s.closeErr = s.client.Disconnect()
		if s.closeErr != nil {
			logger.Warn("Failed to quit driver: %v", s.closeErr)
			return
		}
		logger.Info("Driver quit successfully")
	})
	return s.closeErr
}

// CaptureScreenshot returns a PNG of the current screen.
func (s *Session) CaptureScreenshot() ([]byte, error) {
	return s.client.Screenshot()
}

// CapturePageSource returns the current UI hierarchy XML.
func (s *Session) CapturePageSource() ([]byte, error) {
	source, err := s.client.Source()
	if err != nil {
		return nil, err
	}
	return []byte(source), nil
}

var _ core.ArtifactCollector = (*Session)(nil)
