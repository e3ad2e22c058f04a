package logger

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Formats accepted in Config.Format.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config is the "logging" section.
type Config struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	// Output is stdout or stderr.
	Output  string `yaml:"output" mapstructure:"output"`
	NoColor bool   `yaml:"no_color" mapstructure:"no_color"`
	// TimeFormat is a Go layout. JSON defaults to RFC3339, console to 15:04:05.
	TimeFormat string `yaml:"time_format" mapstructure:"time_format"`
	Caller     bool   `yaml:"caller" mapstructure:"caller"`

	// Writer replaces Output; tests capture lines with it.
	Writer io.Writer `yaml:"-" mapstructure:"-"`
}

func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = FormatConsole
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
	if c.TimeFormat == "" {
		c.TimeFormat = time.RFC3339
		if c.Format == FormatConsole {
			c.TimeFormat = time.TimeOnly
		}
	}
}

func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.Level); err != nil || c.Level == "" {
		return fmt.Errorf("logging.level %q is not a zerolog level (trace, debug, info, warn, error, fatal, disabled)", c.Level)
	}
	if c.Format != FormatJSON && c.Format != FormatConsole {
		return fmt.Errorf("logging.format must be json or console (got: %s)", c.Format)
	}
	if c.Output != "stdout" && c.Output != "stderr" {
		return fmt.Errorf("logging.output must be stdout or stderr (got: %s)", c.Output)
	}
	return nil
}
