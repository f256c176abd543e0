package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCases() []CaseInfo {
	return []CaseInfo{
		{Name: "FailedLogin", Groups: []string{"regression"}},
		{Name: "SuccessfulLogin", Description: "valid credentials", Groups: []string{"smoke", "regression"}},
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		terminal bool
	}{
		{StatusPending, false},
		{StatusRunning, false},
		{StatusPassed, true},
		{StatusFailed, true},
		{StatusSkipped, true},
	}
	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.terminal {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestNewIndex(t *testing.T) {
	index := NewIndex("run-1", "LoginTest", "android", sampleCases())

	assert.Equal(t, Version, index.Version)
	assert.Equal(t, StatusPending, index.Status)
	require.Len(t, index.Cases, 2)
	assert.Equal(t, "case-000", index.Cases[0].ID)
	assert.Equal(t, "case-001", index.Cases[1].ID)
	assert.Equal(t, StatusPending, index.Cases[1].Status)
	assert.Equal(t, Summary{Total: 2, Pending: 2}, index.Summary)
}

func TestIndexWriter_Lifecycle(t *testing.T) {
	dir := t.TempDir()
	w := NewIndexWriter(dir, NewIndex("run-1", "LoginTest", "android", sampleCases()))

	w.Start(SessionInfo{ID: "abc", ServerURL: "http://127.0.0.1:4723"})
	onDisk, err := ReadIndex(dir)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, onDisk.Status)
	assert.Equal(t, "abc", onDisk.Session.ID)

	start := time.Now()
	w.UpdateCase("case-000", CaseUpdate{Status: StatusRunning, StartTime: &start})
	assert.Equal(t, 1, w.Index().Summary.Running)

	duration := int64(42)
	w.UpdateCase("case-000", CaseUpdate{
		Status:   StatusFailed,
		Duration: &duration,
		Failures: []string{"expected true"},
		Error:    &Error{Type: "assertion", Message: "expected true"},
	})
	w.UpdateCase("case-001", CaseUpdate{Status: StatusPassed})

	onDisk, err = ReadIndex(dir)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, onDisk.Cases[0].Status)
	assert.Equal(t, int64(42), *onDisk.Cases[0].Duration)
	assert.NotNil(t, onDisk.Cases[0].StartTime, "start time survives later updates")

	require.NoError(t, w.End())
	onDisk, err = ReadIndex(dir)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, onDisk.Status)
	assert.NotNil(t, onDisk.EndTime)
	assert.Equal(t, Summary{Total: 2, Passed: 1, Failed: 1}, onDisk.Summary)
}

func TestIndexWriter_InMemory(t *testing.T) {
	w := NewIndexWriter("", NewIndex("run-1", "LoginTest", "ios", sampleCases()))
	w.Start(SessionInfo{})
	w.UpdateCase("case-000", CaseUpdate{Status: StatusPassed})
	w.UpdateCase("case-001", CaseUpdate{Status: StatusSkipped})
	require.NoError(t, w.End())

	assert.Equal(t, StatusPassed, w.Index().Status)
	_, err := w.SaveScreenshot("x", []byte("png"))
	assert.Error(t, err)
}

func TestIndexWriter_FailMarksRunFailed(t *testing.T) {
	dir := t.TempDir()
	w := NewIndexWriter(dir, NewIndex("run-1", "LoginTest", "android", sampleCases()))
	w.Start(SessionInfo{})
	w.UpdateCase("case-000", CaseUpdate{Status: StatusSkipped})
	w.UpdateCase("case-001", CaseUpdate{Status: StatusSkipped})
	w.Fail(&Error{Type: "connection", Message: "session not created"})
	require.NoError(t, w.End())

	onDisk, err := ReadIndex(dir)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, onDisk.Status)
	require.NotNil(t, onDisk.Error)
	assert.Equal(t, "connection", onDisk.Error.Type)
	assert.Equal(t, "session not created", onDisk.Error.Message)
	assert.Equal(t, Summary{Total: 2, Skipped: 2}, onDisk.Summary)

	out := RenderSummary(w.Index())
	assert.Contains(t, out, "connection error: session not created")
}

func TestRunStatus(t *testing.T) {
	assert.Equal(t, StatusRunning, runStatus([]CaseEntry{{Status: StatusPassed}, {Status: StatusPending}}))
	assert.Equal(t, StatusPassed, runStatus([]CaseEntry{{Status: StatusPassed}, {Status: StatusSkipped}}))
	assert.Equal(t, StatusFailed, runStatus([]CaseEntry{{Status: StatusFailed}, {Status: StatusPassed}}))
	assert.Equal(t, StatusPassed, runStatus(nil))
}

func TestSaveScreenshot(t *testing.T) {
	dir := t.TempDir()
	w := NewIndexWriter(dir, NewIndex("run-1", "LoginTest", "android", nil))

	rel, err := w.SaveScreenshot("FailedLogin-1234", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("screenshots", "FailedLogin-1234.png"), rel)

	data, err := os.ReadFile(filepath.Join(dir, rel))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}

func TestAtomicWriteJSON_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, atomicWriteJSON(filepath.Join(dir, "report.json"), map[string]int{"a": 1}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "report.json", entries[0].Name())
}

func TestReadIndex_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadIndex(dir)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.json"), []byte("{"), 0o644))
	_, err = ReadIndex(dir)
	assert.Error(t, err)
}

func TestRenderSummary(t *testing.T) {
	w := NewIndexWriter("", NewIndex("run-42", "LoginTest", "android", sampleCases()))
	d := int64(1500)
	w.UpdateCase("case-000", CaseUpdate{
		Status:    StatusFailed,
		Duration:  &d,
		Error:     &Error{Type: "assertion", Message: "Login should fail with invalid credentials"},
		Artifacts: &CaseArtifacts{Screenshot: "screenshots/FailedLogin.png"},
	})
	w.UpdateCase("case-001", CaseUpdate{Status: StatusPassed})
	require.NoError(t, w.End())

	out := RenderSummary(w.Index())
	for _, want := range []string{
		"LoginTest on android",
		"run-42",
		"FailedLogin",
		"(1500ms)",
		"Login should fail with invalid credentials",
		"screenshots/FailedLogin.png",
		"SuccessfulLogin",
		"2 cases",
		"1 passed",
		"1 failed",
		"0 skipped",
	} {
		assert.Contains(t, out, want)
	}

	var b strings.Builder
	PrintSummary(&b, w.Index())
	assert.True(t, strings.HasSuffix(b.String(), "\n"))
}

func TestSavePageSource(t *testing.T) {
	dir := t.TempDir()
	w := NewIndexWriter(dir, NewIndex("run-1", "LoginTest", "android", nil))

	rel, err := w.SavePageSource("FailedLogin-1234", []byte("<hierarchy/>"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("pagesource", "FailedLogin-1234.xml"), rel)
	_, err = os.Stat(filepath.Join(dir, rel))
	assert.NoError(t, err)
}
