package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/mobile-pom/pkg/config"
	"github.com/devicelab-dev/mobile-pom/pkg/core"
	"github.com/devicelab-dev/mobile-pom/pkg/logger"
	"github.com/devicelab-dev/mobile-pom/pkg/metrics"
	"github.com/devicelab-dev/mobile-pom/pkg/report"
	"github.com/devicelab-dev/mobile-pom/pkg/suite"
)

var testCommand = &cli.Command{
	Name:  "test",
	Usage: "Run the login test suite against an Appium server",
	Description: `Open one Appium session for the selected platform and run the login
test cases in order.

Configuration is read from properties/app.properties under the project
directory ($MOBILE_POM_HOME or the current directory), with an optional
config.yaml next to it. Use --config to point at another file or directory.

Reports (report.json, report.html, metrics.prom) are generated in the
output directory:
  - Default: <project>/reports/<timestamp>/
  - With --output: <output>/<timestamp>/
  - With --output and --flatten: <output>/ (no timestamp subfolder)

Examples:
  mobile-pom test
  mobile-pom test --groups smoke
  mobile-pom --platform ios test --config ./ios-project
  mobile-pom test --output ./my-reports --flatten --metrics-file metrics.prom`,
	Flags: []cli.Flag{
		// Configuration
		&cli.StringFlag{
			Name:  "config",
			Usage: "Properties/YAML file or project directory",
		},
		&cli.DurationFlag{
			Name:  "wait-timeout",
			Usage: "Explicit wait timeout (overrides timeouts.wait)",
		},

		// Case selection
		&cli.StringSliceFlag{
			Name:    "groups",
			Aliases: []string{"g"},
			Usage:   "Only run cases in these groups (smoke, regression)",
		},

		// Output
		&cli.StringFlag{
			Name:  "output",
			Usage: "Output directory for reports (default: <project>/reports)",
		},
		&cli.BoolFlag{
			Name:  "flatten",
			Usage: "Don't create timestamp subfolder (requires --output)",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "Log file path (default: <output>/mobile-pom.log)",
		},
		&cli.BoolFlag{
			Name:  "embed-screenshots",
			Usage: "Embed screenshots in report.html so it can be shared as one file",
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "Prometheus text metrics path (default: <output>/metrics.prom)",
		},

		// Artifacts
		&cli.BoolFlag{
			Name:  "page-source",
			Usage: "Also capture the page source of failed cases",
		},
		&cli.BoolFlag{
			Name:  "capture-on-success",
			Usage: "Capture artifacts for passed cases too",
		},
	},
	Action: runTest,
}

// RunConfig holds the resolved inputs of a test run.
type RunConfig struct {
	Platform    string
	Config      *config.Config
	Groups      []string
	OutputDir   string
	LogFile     string
	LogLevel    string
	MetricsFile string
	EmbedHTML   bool
	Verbose     bool
	Artifacts   core.ArtifactConfig

	// Stdout receives the console summary; os.Stdout when nil.
	Stdout io.Writer
}

func runTest(c *cli.Context) error {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return core.ErrConfigLoad.WithCause(err)
	}
	if url := c.String("appium-url"); url != "" {
		cfg.Set(config.KeyAppiumServerURL, url)
	}
	if d := c.Duration("wait-timeout"); d > 0 {
		cfg.WaitTimeout = d
	}

	output := c.String("output")
	if output == "" {
		output = cfg.ArtifactsDir
	}
	outputDir, err := resolveOutputDir(output, c.Bool("flatten"))
	if err != nil {
		return err
	}

	artifacts := core.DefaultArtifactConfig()
	artifacts.PageSource = c.Bool("page-source")
	artifacts.CaptureOnSuccess = c.Bool("capture-on-success")

	return executeTest(&RunConfig{
		Platform:    c.String("platform"),
		Config:      cfg,
		Groups:      c.StringSlice("groups"),
		OutputDir:   outputDir,
		LogFile:     c.String("log-file"),
		LogLevel:    c.String("log-level"),
		MetricsFile: c.String("metrics-file"),
		EmbedHTML:   c.Bool("embed-screenshots"),
		Verbose:     c.Bool("verbose"),
		Artifacts:   artifacts,
		Stdout:      c.App.Writer,
	})
}

// loadConfig reads path as a project directory or a single config file.
// An empty path loads the project directory from config.GetHome.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if _, err := os.Stat(config.GetPropertiesPath()); err != nil {
			return nil, fmt.Errorf("no %s under %s (set MOBILE_POM_HOME or pass --config): %w",
				config.PropertiesFile, config.GetHome(), err)
		}
		return config.LoadFromDir(config.GetHome())
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return config.LoadFromDir(path)
	}
	return config.Load(path)
}

func resolveOutputDir(output string, flatten bool) (string, error) {
	if flatten && output == "" {
		return "", fmt.Errorf("--flatten requires --output to be specified")
	}

	baseDir := output
	if baseDir == "" {
		baseDir = config.GetReportsDir()
	}

	if flatten {
		return filepath.Clean(baseDir), nil
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(baseDir, timestamp), nil
}

func executeTest(rc *RunConfig) error {
	if err := os.MkdirAll(rc.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	logPath := rc.LogFile
	if logPath == "" {
		logPath = filepath.Join(rc.OutputDir, "mobile-pom.log")
	}
	if err := logger.Init(logPath, logger.ParseLevel(rc.LogLevel), rc.Verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to initialize logger: %v\n", err)
	}
	defer logger.Close()

	logger.Info("=== Test execution started ===")
	logger.Info("Output directory: %s", rc.OutputDir)
	logger.Info("Platform: %s", rc.Platform)
	logger.Info("Appium server: %s", rc.Config.AppiumURL())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec := metrics.NewPrometheus()
	index, runErr := suite.Run(ctx, suite.Options{
		Platform:  rc.Platform,
		Config:    rc.Config,
		Groups:    rc.Groups,
		OutputDir: rc.OutputDir,
		Recorder:  rec,
		Artifacts: rc.Artifacts,
	}, suite.LoginSuite())

	stdout := rc.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	if index != nil {
		report.PrintSummary(stdout, index)
		if err := report.GenerateHTML(rc.OutputDir, report.HTMLConfig{EmbedAssets: rc.EmbedHTML}); err != nil {
			logger.Warn("Failed to write HTML report: %v", err)
		}
	}

	metricsPath := rc.MetricsFile
	if metricsPath == "" {
		metricsPath = filepath.Join(rc.OutputDir, "metrics.prom")
	}
	if err := rec.WriteFile(metricsPath); err != nil {
		logger.Warn("Failed to write metrics: %v", err)
	}

	logger.Info("=== Test execution finished ===")

	if runErr != nil {
		return fmt.Errorf("suite setup failed: %w", runErr)
	}
	if index.Status == report.StatusFailed {
		return fmt.Errorf("%d of %d test cases failed", index.Summary.Failed, index.Summary.Total)
	}
	return nil
}
