// Package report provides the JSON run report and the console summary.
//
// Layout under the output directory:
//   - report.json: run index with one entry per test case
//   - report.html: the index rendered for a browser (GenerateHTML)
//   - screenshots/: failure screenshots referenced from the index
//   - pagesource/: page source dumps, when enabled
//
// report.json is rewritten atomically whenever a case reaches a final state,
// so a reader polling it never sees a partial file.
package report

import "time"

// Version is the report schema version.
const Version = "1.0.0"

// Status represents the execution status.
type Status string

// Status values.
const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// IsTerminal returns true if the status is a final state.
func (s Status) IsTerminal() bool {
	return s == StatusPassed || s == StatusFailed || s == StatusSkipped
}

// Index is the report.json document.
type Index struct {
	Version     string      `json:"version"`
	RunID       string      `json:"runId"`
	UpdateSeq   uint64      `json:"updateSeq"`
	Suite       string      `json:"suite"`
	Platform    string      `json:"platform"`
	Status      Status      `json:"status"`
	Error       *Error      `json:"error,omitempty"` // set when the run could not start
	StartTime   time.Time   `json:"startTime"`
	EndTime     *time.Time  `json:"endTime,omitempty"`
	LastUpdated time.Time   `json:"lastUpdated"`
	Session     SessionInfo `json:"session"`
	Summary     Summary     `json:"summary"`
	Cases       []CaseEntry `json:"cases"`
}

// SessionInfo describes the driver session the run used.
type SessionInfo struct {
	ID           string                 `json:"id,omitempty"`
	ServerURL    string                 `json:"serverUrl,omitempty"`
	Capabilities map[string]interface{} `json:"capabilities,omitempty"`
	ScreenWidth  int                    `json:"screenWidth,omitempty"`
	ScreenHeight int                    `json:"screenHeight,omitempty"`
}

// Summary contains aggregated counts.
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Running int `json:"running"`
	Pending int `json:"pending"`
}

// CaseEntry is one test case in the index.
type CaseEntry struct {
	Index       int           `json:"index"`
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Groups      []string      `json:"groups,omitempty"`
	Status      Status        `json:"status"`
	StartTime   *time.Time    `json:"startTime,omitempty"`
	EndTime     *time.Time    `json:"endTime,omitempty"`
	Duration    *int64        `json:"duration,omitempty"` // milliseconds
	Failures    []string      `json:"failures,omitempty"`
	Error       *Error        `json:"error,omitempty"`
	Artifacts   CaseArtifacts `json:"artifacts"`
}

// Error contains error details.
type Error struct {
	Type    string `json:"type"` // assertion, timeout, element, connection, config, panic, skipped
	Message string `json:"message"`
}

// CaseArtifacts contains artifact paths relative to the output directory.
type CaseArtifacts struct {
	Screenshot string `json:"screenshot,omitempty"`
	PageSource string `json:"pageSource,omitempty"`
}

// CaseUpdate contains the fields to update in the index for a case.
type CaseUpdate struct {
	Status    Status
	StartTime *time.Time
	EndTime   *time.Time
	Duration  *int64
	Failures  []string
	Error     *Error
	Artifacts *CaseArtifacts
}
