// Package cli provides the command-line interface for mobile-pom.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "platform",
		Aliases: []string{"p"},
		Usage:   "Platform to run on (android, ios)",
		Value:   "android",
		EnvVars: []string{"MOBILE_POM_PLATFORM"},
	},
	&cli.StringFlag{
		Name:    "appium-url",
		Usage:   "Appium server URL (overrides appium.server.url)",
		EnvVars: []string{"APPIUM_URL"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Mirror log records to stderr",
		EnvVars: []string{"MOBILE_POM_VERBOSE"},
	},
	&cli.StringFlag{
		Name:    "log-level",
		Usage:   "Log level (debug, info, warn, error)",
		Value:   "info",
		EnvVars: []string{"LOG_LEVEL"},
	},
}

// NewApp builds the CLI application.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "mobile-pom",
		Usage:   "Page-object UI tests for Android and iOS apps over Appium",
		Version: Version,
		Description: `mobile-pom drives the login and home screens of a mobile app through an
Appium server and reports each test case.

Examples:
  mobile-pom test
  mobile-pom --platform ios test --groups smoke
  mobile-pom test --config ./properties/app.properties --output ./my-reports
  mobile-pom --platform ios validate`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			testCommand,
			validateCommand,
		},
	}
}

// Execute runs the CLI.
func Execute() {
	if err := NewApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
