package config

import (
	"context"

	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
	"github.com/kbukum/apikit/validation"
)

// Environments accepted in App.Environment.
var Environments = []string{"development", "staging", "production", "test"}

// App holds the settings shared by every program embedding apikit. Programs
// embed it in their own config struct next to their client and route
// sections:
//
//	type Config struct {
//	    config.App `yaml:",inline" mapstructure:",squash"`
//	    Client     httpclient.Config   `yaml:"client" mapstructure:"client"`
//	    Routes     router.RoutesConfig `yaml:",inline" mapstructure:",squash"`
//	}
type App struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`

	Telemetry observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults defaults to the development environment, which turns on
// debug logging unless a level is set.
func (c *App) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()

	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = c.Name
	}
	if c.Telemetry.Environment == "" {
		c.Telemetry.Environment = c.Environment
	}
	c.Telemetry.ApplyDefaults()
}

// Validate requires a name and a known environment.
func (c *App) Validate() error {
	v := validation.New().
		Required("name", c.Name).
		OneOf("environment", c.Environment, Environments)
	if err := c.Logging.Validate(); err != nil {
		v.AddError("logging", err.Error())
	}
	if err := c.Telemetry.Validate(); err != nil {
		v.AddError("telemetry", err.Error())
	}
	return v.Err()
}

// NewLogger builds a logger named after the program.
func (c *App) NewLogger() *logger.Logger {
	return logger.New(&c.Logging, c.Name)
}

// SetupTelemetry installs the exporters enabled in Telemetry.
func (c *App) SetupTelemetry(ctx context.Context) (observability.Shutdown, error) {
	return observability.Setup(ctx, c.Telemetry)
}
