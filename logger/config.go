package logger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"

	OutputStdout = "stdout"
	OutputStderr = "stderr"

	EnvLevel  = "APIKIT_LOG_LEVEL"
	EnvFormat = "APIKIT_LOG_FORMAT"
	EnvOutput = "APIKIT_LOG_OUTPUT"
)

// Config configures a Logger. The zero value logs at info level in console
// format to stdout.
type Config struct {
	Level   string `yaml:"level" mapstructure:"level"`
	Format  string `yaml:"format" mapstructure:"format"`
	Output  string `yaml:"output" mapstructure:"output"`
	NoColor bool   `yaml:"no_color" mapstructure:"no_color"`
	Caller  bool   `yaml:"caller" mapstructure:"caller"`
}

// ApplyDefaults fills empty fields and normalises case.
func (c *Config) ApplyDefaults() {
	c.Level = strings.ToLower(c.Level)
	c.Format = strings.ToLower(c.Format)
	c.Output = strings.ToLower(c.Output)
	if c.Level == "" {
		c.Level = zerolog.InfoLevel.String()
	}
	if c.Format == "" {
		c.Format = FormatConsole
	}
	if c.Output == "" {
		c.Output = OutputStdout
	}
}

// Validate reports unknown levels, formats and outputs.
func (c *Config) Validate() error {
	if c.Level != "" {
		if _, err := zerolog.ParseLevel(c.Level); err != nil {
			return fmt.Errorf("level: unknown level %q", c.Level)
		}
	}
	if c.Format != "" && !slices.Contains([]string{FormatJSON, FormatConsole}, c.Format) {
		return fmt.Errorf("format: must be %q or %q (got %q)", FormatJSON, FormatConsole, c.Format)
	}
	if c.Output != "" && !slices.Contains([]string{OutputStdout, OutputStderr}, c.Output) {
		return fmt.Errorf("output: must be %q or %q (got %q)", OutputStdout, OutputStderr, c.Output)
	}
	return nil
}

func resolveConfig(cfg *Config) Config {
	var c Config
	if cfg != nil {
		c = *cfg
	}
	c.ApplyDefaults()
	return c
}
