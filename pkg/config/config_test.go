package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleProperties = `
# Android
android.platformName=Android
android.deviceName=Pixel_7_API_34
android.automationName=UiAutomator2
android.appPath=apps/app-debug.apk
app.package=com.example.app
app.activity=com.example.app.MainActivity

# iOS
ios.platformName=iOS
ios.deviceName=iPhone 15
ios.automationName=XCUITest
ios.appPath=apps/App.app
ios.bundleId=com.example.app

appium.server.url=http://127.0.0.1:4723
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Properties(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.properties")
	writeFile(t, path, sampleProperties)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	android := cfg.Android()
	if android.PlatformName != "Android" {
		t.Errorf("expected Android platform name, got %q", android.PlatformName)
	}
	if android.DeviceName != "Pixel_7_API_34" {
		t.Errorf("expected device Pixel_7_API_34, got %q", android.DeviceName)
	}
	if android.AppPackage != "com.example.app" || android.AppActivity != "com.example.app.MainActivity" {
		t.Errorf("unexpected package/activity: %q / %q", android.AppPackage, android.AppActivity)
	}

	ios := cfg.IOS()
	if ios.DeviceName != "iPhone 15" {
		t.Errorf("expected device 'iPhone 15', got %q", ios.DeviceName)
	}
	if ios.BundleID != "com.example.app" {
		t.Errorf("expected bundle id com.example.app, got %q", ios.BundleID)
	}

	if cfg.AppiumURL() != "http://127.0.0.1:4723" {
		t.Errorf("expected appium url, got %q", cfg.AppiumURL())
	}
}

func TestLoad_MissingKeysAreAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.properties")
	writeFile(t, path, "android.platformName=Android\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := cfg.Get(KeyAndroidDeviceName); ok {
		t.Error("expected android.deviceName to be absent")
	}
	if cfg.Value(KeyAppiumServerURL) != "" {
		t.Errorf("expected empty server url, got %q", cfg.Value(KeyAppiumServerURL))
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/app.properties")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, `
app:
  appium.server.url: http://grid:4723
timeouts:
  wait: 15s
artifacts:
  dir: out
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AppiumURL() != "http://grid:4723" {
		t.Errorf("expected yaml server url, got %q", cfg.AppiumURL())
	}
	if cfg.WaitTimeout != 15*time.Second {
		t.Errorf("expected 15s wait, got %s", cfg.WaitTimeout)
	}
	if cfg.ArtifactsDir != "out" {
		t.Errorf("expected artifacts dir 'out', got %q", cfg.ArtifactsDir)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, `app: [invalid yaml`)

	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoad_InvalidWaitDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "timeouts:\n  wait: soon\n")

	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestLoadFromDir_PropertiesOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, PropertiesFile), sampleProperties)

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.IOS().AutomationName != "XCUITest" {
		t.Errorf("expected XCUITest, got %q", cfg.IOS().AutomationName)
	}
	if cfg.WaitTimeout != 0 {
		t.Errorf("expected no wait override, got %s", cfg.WaitTimeout)
	}
}

func TestLoadFromDir_YAMLOverridesProperties(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, PropertiesFile), sampleProperties)
	writeFile(t, filepath.Join(dir, "config.yaml"), `
app:
  android.deviceName: emulator-5554
timeouts:
  wait: 2s
`)

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Android().DeviceName != "emulator-5554" {
		t.Errorf("expected overridden device name, got %q", cfg.Android().DeviceName)
	}
	if cfg.Android().PlatformName != "Android" {
		t.Errorf("expected untouched platform name, got %q", cfg.Android().PlatformName)
	}
	if cfg.WaitTimeout != 2*time.Second {
		t.Errorf("expected 2s wait, got %s", cfg.WaitTimeout)
	}
}

func TestLoadFromDir_PrefersYamlOverYml(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, PropertiesFile), sampleProperties)
	writeFile(t, filepath.Join(dir, "config.yaml"), "artifacts:\n  dir: from-yaml\n")
	writeFile(t, filepath.Join(dir, "config.yml"), "artifacts:\n  dir: from-yml\n")

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ArtifactsDir != "from-yaml" {
		t.Errorf("expected config.yaml to win, got %q", cfg.ArtifactsDir)
	}
}

func TestLoadFromDir_MissingProperties(t *testing.T) {
	if _, err := LoadFromDir(t.TempDir()); err == nil {
		t.Error("expected error when properties file is missing")
	}
}

func TestNew_CopiesValues(t *testing.T) {
	values := map[string]string{KeyAppiumServerURL: "http://a"}
	cfg := New(values)
	values[KeyAppiumServerURL] = "http://b"

	if cfg.AppiumURL() != "http://a" {
		t.Errorf("New() should copy values, got %q", cfg.AppiumURL())
	}
}

func TestSet_OverridesLoadedValue(t *testing.T) {
	cfg := New(map[string]string{KeyAppiumServerURL: "http://a"})
	cfg.Set(KeyAppiumServerURL, "http://b")

	if cfg.AppiumURL() != "http://b" {
		t.Errorf("Set() should replace value, got %q", cfg.AppiumURL())
	}
}
