// Package suite runs page-object test cases against one driver session.
//
// A run opens the session once, builds a fresh fixture before every case,
// logs and reports each outcome, captures a screenshot when a case fails and
// closes the session exactly once, whatever happened in between.
package suite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/devicelab-dev/mobile-pom/pkg/actions"
	"github.com/devicelab-dev/mobile-pom/pkg/config"
	"github.com/devicelab-dev/mobile-pom/pkg/core"
	"github.com/devicelab-dev/mobile-pom/pkg/logger"
	"github.com/devicelab-dev/mobile-pom/pkg/metrics"
	"github.com/devicelab-dev/mobile-pom/pkg/report"
	"github.com/devicelab-dev/mobile-pom/pkg/session"
)

// Case is one test case. Run receives the fixture built for this case.
type Case[F any] struct {
	Name        string
	Description string
	Groups      []string
	Run         func(t *T, f F)
}

// Suite is an ordered list of cases sharing a fixture constructor.
type Suite[F any] struct {
	Name string
	// BeforeEach builds the fixture for one case.
	BeforeEach func(a *actions.Actions) F
	Cases      []Case[F]
}

// Options control a run.
type Options struct {
	Platform  string
	Config    *config.Config
	Groups    []string // empty runs every case
	OutputDir string   // empty keeps the report in memory only
	RunID     string   // generated when empty

	Recorder  metrics.Recorder
	Artifacts core.ArtifactConfig
	Actions   []actions.Option

	// Open creates the session; session.Open when nil.
	Open func(platform string, cfg *config.Config) (*session.Session, error)
}

// Run executes the cases of s selected by opts.Groups and returns the final
// report index. The error is non-nil only when the run could not start; case
// failures are reported through the index.
func Run[F any](ctx context.Context, opts Options, s Suite[F]) (*report.Index, error) {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.Nop{}
	}
	if opts.Open == nil {
		opts.Open = session.Open
	}
	if opts.Config == nil {
		opts.Config = config.New(nil)
	}

	cases := Select(s.Cases, opts.Groups)
	infos := make([]report.CaseInfo, len(cases))
	for i, c := range cases {
		infos[i] = report.CaseInfo{Name: c.Name, Description: c.Description, Groups: c.Groups}
	}
	index := report.NewIndex(opts.RunID, s.Name, strings.ToLower(opts.Platform), infos)
	w := report.NewIndexWriter(opts.OutputDir, index)

	sess, err := opts.Open(opts.Platform, opts.Config)
	if err != nil {
		logger.Error("Suite %s setup failed (%s): %v", s.Name, core.CategoryOf(err), err)
		w.Start(report.SessionInfo{})
		for i, c := range cases {
			logger.Warn("Test skipped: %s", c.Name)
			opts.Recorder.IncrementCase(core.StatusSkipped.String())
			w.UpdateCase(index.Cases[i].ID, report.CaseUpdate{
				Status: report.StatusSkipped,
				Error:  &report.Error{Type: "skipped", Message: "setup failed: " + err.Error()},
			})
		}
		w.Fail(&report.Error{Type: core.CategoryOf(err).String(), Message: err.Error()})
		if endErr := w.End(); endErr != nil {
			logger.Warn("Failed to write report: %v", endErr)
		}
		return w.Index(), err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Warn("Teardown: %v", err)
		}
	}()

	width, height := sess.Client().ScreenSize()
	w.Start(report.SessionInfo{
		ID:           sess.Client().SessionID(),
		ServerURL:    opts.Config.AppiumURL(),
		Capabilities: sess.Capabilities(),
		ScreenWidth:  width,
		ScreenHeight: height,
	})

	actionOpts := append([]actions.Option{actions.WithRecorder(opts.Recorder)}, opts.Actions...)
	if opts.Config.WaitTimeout > 0 {
		actionOpts = append(actionOpts, actions.WithTimeout(opts.Config.WaitTimeout))
	}
	a := actions.New(sess.Client(), sess.Platform(), actionOpts...)

	r := &runner[F]{opts: opts, suite: s, actions: a, artifacts: sess, writer: w}
	for i, c := range cases {
		r.runCase(ctx, index.Cases[i].ID, c)
	}

	if err := w.End(); err != nil {
		logger.Warn("Failed to write report: %v", err)
	}
	return w.Index(), nil
}

// Select returns the cases belonging to any of groups, in order.
// With no groups every case is selected.
func Select[F any](cases []Case[F], groups []string) []Case[F] {
	if len(groups) == 0 {
		return cases
	}
	want := make(map[string]bool, len(groups))
	for _, g := range groups {
		if g = strings.TrimSpace(g); g != "" {
			want[g] = true
		}
	}
	if len(want) == 0 {
		return cases
	}

	var selected []Case[F]
	for _, c := range cases {
		for _, g := range c.Groups {
			if want[g] {
				selected = append(selected, c)
				break
			}
		}
	}
	return selected
}

type runner[F any] struct {
	opts      Options
	suite     Suite[F]
	actions   *actions.Actions
	artifacts core.ArtifactCollector
	writer    *report.IndexWriter
}

func (r *runner[F]) runCase(ctx context.Context, id string, c Case[F]) {
	start := time.Now()
	r.writer.UpdateCase(id, report.CaseUpdate{Status: report.StatusRunning, StartTime: &start})

	t := newT(c.Name)
	var caseErr *report.Error
	if err := ctx.Err(); err != nil {
		t.skipped = true
		t.skipReason = err.Error()
	} else {
		caseErr = r.execute(t, c)
	}

	status := core.StatusPassed
	switch {
	case t.skipped:
		status = core.StatusSkipped
		caseErr = &report.Error{Type: "skipped", Message: t.skipReason}
	case t.failed || caseErr != nil:
		status = core.StatusFailed
		if caseErr == nil {
			msg := "failed"
			if len(t.failures) > 0 {
				msg = t.failures[0]
			}
			caseErr = &report.Error{Type: "assertion", Message: msg}
		}
	}

	end := time.Now()
	duration := end.Sub(start).Milliseconds()
	update := report.CaseUpdate{
		Status:   report.Status(status.String()),
		EndTime:  &end,
		Duration: &duration,
		Failures: t.Failures(),
		Error:    caseErr,
	}
	if artifacts := r.afterEach(c, status); artifacts != nil {
		update.Artifacts = artifacts
	}
	r.opts.Recorder.IncrementCase(status.String())
	r.writer.UpdateCase(id, update)
}

// execute runs the fixture constructor and the case body, converting
// panics into a failure.
func (r *runner[F]) execute(t *T, c Case[F]) (caseErr *report.Error) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if _, ok := rec.(stopCase); ok {
			return
		}
		t.failed = true
		msg := fmt.Sprintf("panic: %v", rec)
		t.failures = append(t.failures, msg)
		logger.Error("%s: %s", c.Name, msg)
		caseErr = &report.Error{Type: "panic", Message: msg}
	}()

	var fixture F
	if r.suite.BeforeEach != nil {
		fixture = r.suite.BeforeEach(r.actions)
	}
	c.Run(t, fixture)
	return nil
}

// afterEach logs the outcome and captures artifacts when configured.
func (r *runner[F]) afterEach(c Case[F], status core.CaseStatus) *report.CaseArtifacts {
	switch status {
	case core.StatusFailed:
		logger.Error("Test failed: %s", c.Name)
	case core.StatusPassed:
		logger.Info("Test passed: %s", c.Name)
	case core.StatusSkipped:
		logger.Warn("Test skipped: %s", c.Name)
	}

	if !r.opts.Artifacts.ShouldCapture(status) || r.opts.OutputDir == "" {
		return nil
	}

	var artifacts report.CaseArtifacts
	name := fmt.Sprintf("%s-%s", c.Name, uuid.NewString()[:8])
	if r.opts.Artifacts.Screenshot {
		logger.Info("Capturing screenshot for %s test: %s", status, c.Name)
		if path, err := r.capture(name, r.artifacts.CaptureScreenshot); err != nil {
			logger.Warn("Screenshot for %s failed: %v", c.Name, err)
		} else {
			artifacts.Screenshot = path
		}
	}
	if r.opts.Artifacts.PageSource {
		if path, err := r.capturePageSource(name); err != nil {
			logger.Warn("Page source for %s failed: %v", c.Name, err)
		} else {
			artifacts.PageSource = path
		}
	}
	return &artifacts
}

func (r *runner[F]) capture(name string, grab func() ([]byte, error)) (string, error) {
	data, err := grab()
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("empty screenshot")
	}
	return r.writer.SaveScreenshot(name, data)
}

func (r *runner[F]) capturePageSource(name string) (string, error) {
	data, err := r.artifacts.CapturePageSource()
	if err != nil {
		return "", err
	}
	return r.writer.SavePageSource(name, data)
}
