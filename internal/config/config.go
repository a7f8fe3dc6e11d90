// Package config loads still-capture settings from defaults, an optional
// YAML file, and STILL_CAPTURE_* environment variables, in ascending
// precedence.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	stillcapture "github.com/e7canasta/orion-care-sensor/modules/still-capture"
)

// Config is the file/environment shape of a capture run.
type Config struct {
	Device  DeviceConfig  `mapstructure:"device"`
	Output  OutputConfig  `mapstructure:"output"`
	Capture CaptureConfig `mapstructure:"capture"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// DeviceConfig selects the capture device.
type DeviceConfig struct {
	// Path is the V4L2 character device, e.g. /dev/video0
	Path string `mapstructure:"path"`
}

// OutputConfig selects where the frame goes.
type OutputConfig struct {
	// Path is the output file, created or truncated on each run
	Path string `mapstructure:"path"`
}

// CaptureConfig controls format negotiation and the stabilization loop.
type CaptureConfig struct {
	// StabilizeCount is the 1-based index of the frame to keep
	StabilizeCount int `mapstructure:"stabilize_count"`
	// Width and Height are the requested frame dimensions
	Width  uint32 `mapstructure:"width"`
	Height uint32 `mapstructure:"height"`
	// WaitTimeoutSeconds bounds each readiness wait
	WaitTimeoutSeconds int `mapstructure:"wait_timeout_seconds"`
	// MaxWaitIterations bounds total wait wakeups before giving up
	MaxWaitIterations int `mapstructure:"max_wait_iterations"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	// Level is one of: debug, info, warn, error
	Level string `mapstructure:"level"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	base := stillcapture.DefaultConfig()
	return &Config{
		Device: DeviceConfig{Path: base.DevicePath},
		Output: OutputConfig{Path: base.OutputPath},
		Capture: CaptureConfig{
			StabilizeCount:     base.StabilizeCount,
			Width:              base.Width,
			Height:             base.Height,
			WaitTimeoutSeconds: int(base.WaitTimeout / time.Second),
			MaxWaitIterations:  base.MaxWaitIterations,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// ValidationError represents a single validation failure.
type ValidationError struct {
	Field   string // the config field path, e.g. "capture.stabilize_count"
	Value   any    // the invalid value
	Message string // human-readable error description
}

// Error implements the error interface for ValidationError.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation
// errors found.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if c.Device.Path == "" {
		errs = append(errs, ValidationError{
			Field:   "device.path",
			Value:   c.Device.Path,
			Message: "cannot be empty",
		})
	}
	if c.Output.Path == "" {
		errs = append(errs, ValidationError{
			Field:   "output.path",
			Value:   c.Output.Path,
			Message: "cannot be empty",
		})
	}
	if c.Capture.StabilizeCount < 1 {
		errs = append(errs, ValidationError{
			Field:   "capture.stabilize_count",
			Value:   c.Capture.StabilizeCount,
			Message: "must be at least 1",
		})
	}
	if c.Capture.Width == 0 || c.Capture.Height == 0 {
		errs = append(errs, ValidationError{
			Field:   "capture.width/height",
			Value:   fmt.Sprintf("%dx%d", c.Capture.Width, c.Capture.Height),
			Message: "dimensions must be non-zero",
		})
	}
	if c.Capture.WaitTimeoutSeconds < 1 {
		errs = append(errs, ValidationError{
			Field:   "capture.wait_timeout_seconds",
			Value:   c.Capture.WaitTimeoutSeconds,
			Message: "must be at least 1",
		})
	}
	if c.Capture.MaxWaitIterations < c.Capture.StabilizeCount {
		errs = append(errs, ValidationError{
			Field:   "capture.max_wait_iterations",
			Value:   c.Capture.MaxWaitIterations,
			Message: fmt.Sprintf("cannot deliver %d frames", c.Capture.StabilizeCount),
		})
	}
	if c.Logging.Level != "" && !validLevel(c.Logging.Level) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errs
}

func validLevel(level string) bool {
	for _, l := range ValidLogLevels() {
		if level == l {
			return true
		}
	}
	return false
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("device.path", defaults.Device.Path)
	v.SetDefault("output.path", defaults.Output.Path)
	v.SetDefault("capture.stabilize_count", defaults.Capture.StabilizeCount)
	v.SetDefault("capture.width", defaults.Capture.Width)
	v.SetDefault("capture.height", defaults.Capture.Height)
	v.SetDefault("capture.wait_timeout_seconds", defaults.Capture.WaitTimeoutSeconds)
	v.SetDefault("capture.max_wait_iterations", defaults.Capture.MaxWaitIterations)
	v.SetDefault("logging.level", defaults.Logging.Level)
}

// Load builds a Config from defaults, the optional YAML file at path, and
// STILL_CAPTURE_* environment variables, then validates it. An empty path
// skips the file layer.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("STILL_CAPTURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// WaitTimeout returns the readiness-wait bound as a time.Duration.
func (c *CaptureConfig) WaitTimeout() time.Duration {
	return time.Duration(c.WaitTimeoutSeconds) * time.Second
}

// SlogLevel maps the configured level name onto a slog.Level. Unknown
// names fall back to info.
func (c *LoggingConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ToCapture converts the file/environment shape into the runtime capture
// configuration.
func (c *Config) ToCapture() stillcapture.Config {
	return stillcapture.Config{
		DevicePath:        c.Device.Path,
		OutputPath:        c.Output.Path,
		StabilizeCount:    c.Capture.StabilizeCount,
		Width:             c.Capture.Width,
		Height:            c.Capture.Height,
		WaitTimeout:       c.Capture.WaitTimeout(),
		MaxWaitIterations: c.Capture.MaxWaitIterations,
	}
}
