package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// HTMLConfig contains configuration for HTML report generation.
type HTMLConfig struct {
	OutputPath  string // Path to write the HTML file
	EmbedAssets bool   // Embed screenshots as base64 (makes file larger but portable)
	Title       string // Report title (default: "Test Report")
	ReportDir   string // Directory containing report.json (needed for asset paths)
}

// GenerateHTML renders report.json in reportDir as a single HTML page.
func GenerateHTML(reportDir string, cfg HTMLConfig) error {
	index, err := ReadIndex(reportDir)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	if cfg.Title == "" {
		cfg.Title = "Test Report"
	}
	if cfg.ReportDir == "" {
		cfg.ReportDir = reportDir
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = filepath.Join(reportDir, "report.html")
	}

	html, err := renderHTML(buildHTMLData(index, cfg))
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	if err := os.WriteFile(cfg.OutputPath, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}

// HTMLData contains all data needed for the HTML template.
type HTMLData struct {
	Title         string
	GeneratedAt   string
	Index         *Index
	Cases         []CaseHTMLData
	TotalDuration string
	PassRate      float64
	Screen        string
}

// CaseHTMLData contains case data formatted for HTML.
type CaseHTMLData struct {
	CaseEntry
	StatusClass   string
	DurationStr   string
	DurationPct   float64
	Screenshot    template.URL // data URI or path relative to the report
	HasScreenshot bool
}

func buildHTMLData(index *Index, cfg HTMLConfig) HTMLData {
	var maxDuration int64
	for _, c := range index.Cases {
		if c.Duration != nil && *c.Duration > maxDuration {
			maxDuration = *c.Duration
		}
	}

	cases := make([]CaseHTMLData, len(index.Cases))
	for i, c := range index.Cases {
		data := CaseHTMLData{
			CaseEntry:   c,
			StatusClass: string(c.Status),
			DurationStr: formatDuration(c.Duration),
		}
		if c.Duration != nil && maxDuration > 0 {
			data.DurationPct = float64(*c.Duration) / float64(maxDuration) * 100
		}
		if c.Artifacts.Screenshot != "" {
			if cfg.EmbedAssets {
				data.Screenshot = template.URL(loadAsBase64(filepath.Join(cfg.ReportDir, c.Artifacts.Screenshot)))
			} else {
				data.Screenshot = template.URL(filepath.ToSlash(c.Artifacts.Screenshot))
			}
			data.HasScreenshot = data.Screenshot != ""
		}
		cases[i] = data
	}

	var passRate float64
	if index.Summary.Total > 0 {
		passRate = float64(index.Summary.Passed) / float64(index.Summary.Total) * 100
	}

	var totalDurationMs int64
	if index.EndTime != nil {
		totalDurationMs = index.EndTime.Sub(index.StartTime).Milliseconds()
	}

	var screen string
	if index.Session.ScreenWidth > 0 && index.Session.ScreenHeight > 0 {
		screen = fmt.Sprintf("%dx%d", index.Session.ScreenWidth, index.Session.ScreenHeight)
	}

	return HTMLData{
		Title:         cfg.Title,
		GeneratedAt:   time.Now().Format("2006-01-02 15:04:05"),
		Index:         index,
		Cases:         cases,
		TotalDuration: formatDuration(&totalDurationMs),
		PassRate:      passRate,
		Screen:        screen,
	}
}

func formatDuration(ms *int64) string {
	if ms == nil {
		return "-"
	}
	d := time.Duration(*ms) * time.Millisecond
	if d < time.Second {
		return fmt.Sprintf("%dms", *ms)
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}

// loadAsBase64 returns path as a data URI, or "" when it cannot be read.
func loadAsBase64(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(filepath.Ext(path))
	mimeType := "image/png"
	if ext == ".jpg" || ext == ".jpeg" {
		mimeType = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

func renderHTML(data HTMLData) (string, error) {
	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        :root {
            --bg-primary: #ffffff;
            --bg-secondary: #f9fafb;
            --text-primary: #000000;
            --text-secondary: rgb(75, 85, 99);
            --text-muted: rgb(107, 114, 128);
            --border-color: #e5e7eb;
            --passed: #22c55e;
            --failed: #ef4444;
            --failed-bg: rgba(239, 68, 68, 0.08);
            --skipped: #eab308;
            --pending: #6b7280;
            --accent: #06b6d4;
        }

        * { box-sizing: border-box; margin: 0; padding: 0; }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: var(--bg-primary);
            color: var(--text-primary);
            line-height: 1.5;
        }

        .header {
            background: var(--bg-secondary);
            border-bottom: 1px solid var(--border-color);
            padding: 16px 24px;
        }

        .header-title-main { font-size: 16px; font-weight: 500; }
        .header-title-sub { font-size: 12px; color: var(--text-secondary); }

        .run-error {
            margin-top: 12px;
            padding: 8px 12px;
            border-radius: 6px;
            background: var(--failed-bg);
            color: var(--failed);
            font-size: 13px;
        }

        .dashboard { display: flex; gap: 24px; flex-wrap: wrap; margin-top: 12px; font-size: 13px; }
        .legend-item { display: flex; align-items: center; gap: 8px; }
        .legend-dot { width: 10px; height: 10px; border-radius: 50%; }
        .legend-dot.passed { background: var(--passed); }
        .legend-dot.failed { background: var(--failed); }
        .legend-dot.skipped { background: var(--skipped); }

        .env-card {
            border: 1px solid var(--border-color);
            border-radius: 8px;
            padding: 8px 16px;
            display: grid;
            grid-template-columns: repeat(2, auto);
            gap: 4px 24px;
        }

        .env-label { color: var(--text-muted); min-width: 60px; }
        .env-value { font-weight: 500; }

        .filters { padding: 12px 24px; display: flex; gap: 8px; border-bottom: 1px solid var(--border-color); }

        .filter-btn {
            padding: 4px 12px;
            border: 1px solid var(--border-color);
            border-radius: 16px;
            background: var(--bg-primary);
            font-size: 12px;
            cursor: pointer;
        }

        .filter-btn.active { background: var(--accent); color: white; border-color: var(--accent); }

        .case-item { padding: 12px 24px; border-bottom: 1px solid var(--border-color); }
        .case-item.failed { background: var(--failed-bg); }
        .case-header { display: flex; align-items: center; gap: 8px; }
        .case-name { font-weight: 500; }
        .case-meta { display: flex; align-items: center; gap: 12px; font-size: 12px; color: var(--text-muted); }

        .status-dot { width: 8px; height: 8px; border-radius: 50%; background: var(--pending); }
        .status-dot.passed { background: var(--passed); }
        .status-dot.failed { background: var(--failed); }
        .status-dot.skipped { background: var(--skipped); }

        .duration-bar { width: 80px; height: 4px; background: var(--border-color); border-radius: 2px; }
        .duration-fill { height: 100%; background: var(--accent); border-radius: 2px; }

        .case-error { margin-top: 6px; font-size: 13px; color: var(--failed); white-space: pre-wrap; }
        .case-failures { margin: 6px 0 0 18px; font-size: 13px; color: var(--text-secondary); }
        .case-screenshot { margin-top: 8px; max-height: 320px; border: 1px solid var(--border-color); border-radius: 6px; }
    </style>
</head>
<body>
    <div class="header">
        <div class="header-title">
            <div class="header-title-main">{{.Title}}: {{.Index.Suite}} on {{.Index.Platform}}</div>
            <div class="header-title-sub">run {{.Index.RunID}} &middot; generated {{.GeneratedAt}}</div>
        </div>
        {{if .Index.Error}}
        <div class="run-error">{{.Index.Error.Type}} error: {{.Index.Error.Message}}</div>
        {{end}}
        <div class="dashboard">
            <div>
                <div class="legend-item"><span class="legend-dot passed"></span><span>{{.Index.Summary.Passed}} passed</span></div>
                <div class="legend-item"><span class="legend-dot failed"></span><span>{{.Index.Summary.Failed}} failed</span></div>
                <div class="legend-item"><span class="legend-dot skipped"></span><span>{{.Index.Summary.Skipped}} skipped</span></div>
            </div>
            <div class="env-card">
                <span class="env-label">Status</span><span class="env-value">{{.Index.Status}}</span>
                <span class="env-label">Pass rate</span><span class="env-value">{{printf "%.0f" .PassRate}}%</span>
                <span class="env-label">Duration</span><span class="env-value">{{.TotalDuration}}</span>
                <span class="env-label">Session</span><span class="env-value">{{if .Index.Session.ID}}{{.Index.Session.ID}}{{else}}-{{end}}</span>
                {{if .Screen}}<span class="env-label">Screen</span><span class="env-value">{{.Screen}}</span>{{end}}
            </div>
        </div>
    </div>

    <div class="filters">
        <button class="filter-btn active" data-filter="all">All ({{.Index.Summary.Total}})</button>
        <button class="filter-btn" data-filter="failed">Failed ({{.Index.Summary.Failed}})</button>
        <button class="filter-btn" data-filter="passed">Passed ({{.Index.Summary.Passed}})</button>
    </div>

    <div class="case-items">
        {{range .Cases}}
        <div class="case-item {{.StatusClass}}" data-status="{{.StatusClass}}" id="{{.ID}}">
            <div class="case-header">
                <span class="status-dot {{.StatusClass}}"></span>
                <span class="case-name">{{.Name}}</span>
            </div>
            <div class="case-meta">
                {{if .Description}}<span>{{.Description}}</span>{{end}}
                {{range .Groups}}<span>#{{.}}</span>{{end}}
                <div class="duration-bar"><div class="duration-fill" style="width: {{printf "%.1f" .DurationPct}}%"></div></div>
                <span>{{.DurationStr}}</span>
            </div>
            {{if .Error}}<div class="case-error">{{.Error.Type}}: {{.Error.Message}}</div>{{end}}
            {{if .Failures}}<ul class="case-failures">{{range .Failures}}<li>{{.}}</li>{{end}}</ul>{{end}}
            {{if .HasScreenshot}}<img class="case-screenshot" src="{{.Screenshot}}" alt="{{.Name}} screenshot">{{end}}
            {{if .Artifacts.PageSource}}<div class="case-meta"><a href="{{.Artifacts.PageSource}}">page source</a></div>{{end}}
        </div>
        {{end}}
    </div>

    <script>
        document.querySelectorAll('.filter-btn').forEach(function (btn) {
            btn.addEventListener('click', function () {
                document.querySelectorAll('.filter-btn').forEach(function (b) { b.classList.remove('active'); });
                btn.classList.add('active');
                var filter = btn.dataset.filter;
                document.querySelectorAll('.case-item').forEach(function (item) {
                    item.style.display = (filter === 'all' || item.dataset.status === filter) ? '' : 'none';
                });
            });
        });
    </script>
</body>
</html>
`
