package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// CaseInfo is the static description of a case used to build the index.
type CaseInfo struct {
	Name        string
	Description string
	Groups      []string
}

// NewIndex creates an index with every case pending.
func NewIndex(runID, suite, platform string, cases []CaseInfo) *Index {
	now := time.Now()
	index := &Index{
		Version:     Version,
		RunID:       runID,
		Suite:       suite,
		Platform:    platform,
		Status:      StatusPending,
		StartTime:   now,
		LastUpdated: now,
		Cases:       make([]CaseEntry, len(cases)),
	}
	for i, c := range cases {
		index.Cases[i] = CaseEntry{
			Index:       i,
			ID:          fmt.Sprintf("case-%03d", i),
			Name:        c.Name,
			Description: c.Description,
			Groups:      c.Groups,
			Status:      StatusPending,
		}
	}
	index.Summary = summarize(index.Cases)
	return index
}

// IndexWriter keeps the index current and mirrors it to report.json.
// With an empty output directory it only keeps the index in memory.
type IndexWriter struct {
	mu        sync.Mutex
	outputDir string
	path      string
	index     *Index
	writeErr  error
}

// NewIndexWriter creates a new IndexWriter.
func NewIndexWriter(outputDir string, index *Index) *IndexWriter {
	w := &IndexWriter{
		outputDir: outputDir,
		index:     index,
	}
	if outputDir != "" {
		w.path = filepath.Join(outputDir, "report.json")
	}
	return w
}

// Start marks the run as started.
func (w *IndexWriter) Start(session SessionInfo) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	w.index.Status = StatusRunning
	w.index.StartTime = now
	w.index.Session = session

	w.flushLocked()
}

// UpdateCase applies update to the case with the given ID.
// Terminal states are written to disk immediately.
func (w *IndexWriter) UpdateCase(caseID string, update CaseUpdate) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := range w.index.Cases {
		if w.index.Cases[i].ID != caseID {
			continue
		}
		c := &w.index.Cases[i]
		c.Status = update.Status
		if update.StartTime != nil {
			c.StartTime = update.StartTime
		}
		if update.EndTime != nil {
			c.EndTime = update.EndTime
		}
		if update.Duration != nil {
			c.Duration = update.Duration
		}
		if len(update.Failures) > 0 {
			c.Failures = update.Failures
		}
		if update.Error != nil {
			c.Error = update.Error
		}
		if update.Artifacts != nil {
			c.Artifacts = *update.Artifacts
		}
		break
	}

	if update.Status.IsTerminal() {
		w.flushLocked()
		return
	}
	w.index.UpdateSeq++
	w.index.Summary = summarize(w.index.Cases)
}

// Fail records why the run could not start. The run ends as failed
// whatever the case statuses are.
func (w *IndexWriter) Fail(e *Error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.index.Error = e
	w.index.Status = StatusFailed
	w.flushLocked()
}

// End marks the run as complete and writes the final index.
func (w *IndexWriter) End() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	w.index.EndTime = &now
	if w.index.Error != nil {
		w.index.Status = StatusFailed
	} else {
		w.index.Status = runStatus(w.index.Cases)
	}

	w.flushLocked()
	return w.writeErr
}

// Index returns the current index (for reading).
func (w *IndexWriter) Index() *Index {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.index
}

// SaveScreenshot writes data under screenshots/ and returns the path relative
// to the output directory.
func (w *IndexWriter) SaveScreenshot(name string, data []byte) (string, error) {
	return w.saveArtifact("screenshots", name+".png", data)
}

// SavePageSource writes a UI hierarchy dump under pagesource/ and returns the
// path relative to the output directory.
func (w *IndexWriter) SavePageSource(name string, data []byte) (string, error) {
	return w.saveArtifact("pagesource", name+".xml", data)
}

func (w *IndexWriter) saveArtifact(dir, file string, data []byte) (string, error) {
	if w.outputDir == "" {
		return "", fmt.Errorf("no output directory")
	}
	if err := ensureDir(filepath.Join(w.outputDir, dir)); err != nil {
		return "", fmt.Errorf("create %s dir: %w", dir, err)
	}
	rel := filepath.Join(dir, file)
	if err := os.WriteFile(filepath.Join(w.outputDir, rel), data, 0o644); err != nil {
		return "", err
	}
	return rel, nil
}

// flushLocked flushes while holding the lock.
func (w *IndexWriter) flushLocked() {
	w.index.UpdateSeq++
	w.index.LastUpdated = time.Now()
	w.index.Summary = summarize(w.index.Cases)

	if w.path == "" {
		return
	}
	if err := ensureDir(w.outputDir); err != nil {
		w.writeErr = err
		return
	}
	if err := atomicWriteJSON(w.path, w.index); err != nil {
		w.writeErr = err
	}
}

// summarize calculates summary from case statuses.
func summarize(cases []CaseEntry) Summary {
	var s Summary
	for _, c := range cases {
		s.Total++
		switch c.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		case StatusRunning:
			s.Running++
		case StatusPending:
			s.Pending++
		}
	}
	return s
}

// runStatus determines overall run status from cases.
func runStatus(cases []CaseEntry) Status {
	hasFailure := false
	allComplete := true

	for _, c := range cases {
		if c.Status == StatusFailed {
			hasFailure = true
		}
		if !c.Status.IsTerminal() {
			allComplete = false
		}
	}

	if !allComplete {
		return StatusRunning
	}
	if hasFailure {
		return StatusFailed
	}
	return StatusPassed
}

// ReadIndex loads report.json from dir.
func ReadIndex(dir string) (*Index, error) {
	data, err := os.ReadFile(filepath.Join(dir, "report.json"))
	if err != nil {
		return nil, err
	}
	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parse report.json: %w", err)
	}
	return &index, nil
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// atomicWriteJSON writes v to a temp file in the same directory and renames it over path.
func atomicWriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
