// Package core provides the shared error, status and artifact types for mobile-pom.
package core

// ArtifactConfig controls when and what artifacts are captured
type ArtifactConfig struct {
	CaptureOnFailure bool `yaml:"captureOnFailure" json:"captureOnFailure"` // Default: true
	CaptureOnSuccess bool `yaml:"captureOnSuccess" json:"captureOnSuccess"` // Default: false

	Screenshot bool `yaml:"screenshot" json:"screenshot"` // Default: true
	PageSource bool `yaml:"pageSource" json:"pageSource"` // Default: false
}

// DefaultArtifactConfig returns sensible defaults for artifact capture
func DefaultArtifactConfig() ArtifactConfig {
	return ArtifactConfig{
		CaptureOnFailure: true,
		CaptureOnSuccess: false,
		Screenshot:       true,
		PageSource:       false,
	}
}

// ShouldCapture returns true if artifacts should be captured for the given status
func (c ArtifactConfig) ShouldCapture(status CaseStatus) bool {
	switch status {
	case StatusFailed:
		return c.CaptureOnFailure
	case StatusPassed:
		return c.CaptureOnSuccess
	default:
		return false
	}
}

// ArtifactCollector captures debug artifacts from a live session.
type ArtifactCollector interface {
	// CaptureScreenshot takes a screenshot and returns PNG data
	CaptureScreenshot() ([]byte, error)

	// CapturePageSource returns the current UI hierarchy XML
	CapturePageSource() ([]byte, error)
}
