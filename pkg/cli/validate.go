package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/mobile-pom/pkg/config"
	"github.com/devicelab-dev/mobile-pom/pkg/core"
	"github.com/devicelab-dev/mobile-pom/pkg/validator"
)

var validateCommand = &cli.Command{
	Name:  "validate",
	Usage: "Check the configuration for the selected platform without opening a session",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Properties/YAML file or project directory",
		},
	},
	Action: runValidate,
}

func runValidate(c *cli.Context) error {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return core.ErrConfigLoad.WithCause(err)
	}
	if url := c.String("appium-url"); url != "" {
		cfg.Set(config.KeyAppiumServerURL, url)
	}

	result := validator.Validate(c.String("platform"), cfg)
	w := c.App.Writer
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
	for _, err := range result.Errors {
		fmt.Fprintf(w, "  error: %v\n", err)
	}
	if !result.IsValid() {
		return fmt.Errorf("configuration has %d error(s)", len(result.Errors))
	}
	fmt.Fprintf(w, "Configuration OK for %s\n", result.Platform)
	return nil
}
