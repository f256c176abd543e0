// Package config handles configuration for mobile-pom.
//
// The primary source is a Java-style properties file (properties/app.properties).
// An optional config.yaml next to it may override any key and set framework
// settings such as the default wait timeout.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/magiconair/properties"
	"gopkg.in/yaml.v3"
)

// PropertiesFile is the properties path relative to the project directory.
const PropertiesFile = "properties/app.properties"

// Property keys read at setup.
const (
	KeyAndroidPlatformName   = "android.platformName"
	KeyAndroidDeviceName     = "android.deviceName"
	KeyAndroidAutomationName = "android.automationName"
	KeyAndroidAppPath        = "android.appPath"
	KeyAppPackage            = "app.package"
	KeyAppActivity           = "app.activity"
	KeyIOSPlatformName       = "ios.platformName"
	KeyIOSDeviceName         = "ios.deviceName"
	KeyIOSAutomationName     = "ios.automationName"
	KeyIOSAppPath            = "ios.appPath"
	KeyIOSBundleID           = "ios.bundleId"
	KeyAppiumServerURL       = "appium.server.url"
)

// Config is the loaded key/value configuration plus framework settings.
// Missing keys read as empty strings.
type Config struct {
	values map[string]string

	// WaitTimeout overrides the default explicit-wait timeout when non-zero.
	WaitTimeout time.Duration
	// ArtifactsDir overrides the report/screenshot output directory when set.
	ArtifactsDir string
}

// PlatformConfig is the per-platform slice of the configuration used to build
// a capability set.
type PlatformConfig struct {
	PlatformName   string
	DeviceName     string
	AutomationName string
	AppPath        string
	AppPackage     string // android only
	AppActivity    string // android only
	BundleID       string // ios only
}

// fileConfig is the config.yaml layout.
type fileConfig struct {
	App      map[string]string `yaml:"app"`
	Timeouts struct {
		Wait string `yaml:"wait"`
	} `yaml:"timeouts"`
	Artifacts struct {
		Dir string `yaml:"dir"`
	} `yaml:"artifacts"`
}

// New returns a Config holding the given key/values.
func New(values map[string]string) *Config {
	cfg := &Config{values: make(map[string]string, len(values))}
	for k, v := range values {
		cfg.values[k] = v
	}
	return cfg
}

// Load loads configuration from a .properties or .yaml/.yml file.
func Load(path string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg := New(nil)
		if err := cfg.overlayYAML(path); err != nil {
			return nil, err
		}
		return cfg, nil
	default:
		return loadProperties(path)
	}
}

// LoadFromDir loads <dir>/properties/app.properties and then applies
// <dir>/config.yaml (or config.yml) on top of it if present.
func LoadFromDir(dir string) (*Config, error) {
	cfg, err := loadProperties(filepath.Join(dir, PropertiesFile))
	if err != nil {
		return nil, err
	}

	for _, name := range []string{"config.yaml", "config.yml"} {
		overlay := filepath.Join(dir, name)
		if _, err := os.Stat(overlay); err == nil {
			if err := cfg.overlayYAML(overlay); err != nil {
				return nil, err
			}
			break
		}
	}
	return cfg, nil
}

func loadProperties(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return New(p.Map()), nil
}

func (c *Config) overlayYAML(path string) error {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	for k, v := range fc.App {
		c.values[k] = v
	}
	if fc.Timeouts.Wait != "" {
		d, err := time.ParseDuration(fc.Timeouts.Wait)
		if err != nil {
			return fmt.Errorf("parse %s: timeouts.wait: %w", path, err)
		}
		c.WaitTimeout = d
	}
	if fc.Artifacts.Dir != "" {
		c.ArtifactsDir = fc.Artifacts.Dir
	}
	return nil
}

// Get returns the value for key and whether it was present.
func (c *Config) Get(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Value returns the value for key, or "" when absent.
func (c *Config) Value(key string) string {
	return c.values[key]
}

// Set stores value under key, replacing any loaded value.
func (c *Config) Set(key, value string) {
	c.values[key] = value
}

// AppiumURL returns the configured automation server URL.
func (c *Config) AppiumURL() string {
	return c.values[KeyAppiumServerURL]
}

// Android returns the Android capability inputs.
func (c *Config) Android() PlatformConfig {
	return PlatformConfig{
		PlatformName:   c.values[KeyAndroidPlatformName],
		DeviceName:     c.values[KeyAndroidDeviceName],
		AutomationName: c.values[KeyAndroidAutomationName],
		AppPath:        c.values[KeyAndroidAppPath],
		AppPackage:     c.values[KeyAppPackage],
		AppActivity:    c.values[KeyAppActivity],
	}
}

// IOS returns the iOS capability inputs.
func (c *Config) IOS() PlatformConfig {
	return PlatformConfig{
		PlatformName:   c.values[KeyIOSPlatformName],
		DeviceName:     c.values[KeyIOSDeviceName],
		AutomationName: c.values[KeyIOSAutomationName],
		AppPath:        c.values[KeyIOSAppPath],
		BundleID:       c.values[KeyIOSBundleID],
	}
}
