package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}
	if cfg.Device.Path != "/dev/video0" {
		t.Errorf("Device.Path = %q, want %q", cfg.Device.Path, "/dev/video0")
	}
	if cfg.Output.Path != "frame.jpg" {
		t.Errorf("Output.Path = %q, want %q", cfg.Output.Path, "frame.jpg")
	}
	if cfg.Capture.StabilizeCount != 5 {
		t.Errorf("Capture.StabilizeCount = %d, want 5", cfg.Capture.StabilizeCount)
	}
	if cfg.Capture.Width != 640 || cfg.Capture.Height != 480 {
		t.Errorf("Capture dimensions = %dx%d, want 640x480", cfg.Capture.Width, cfg.Capture.Height)
	}
	if cfg.Capture.WaitTimeoutSeconds != 2 {
		t.Errorf("Capture.WaitTimeoutSeconds = %d, want 2", cfg.Capture.WaitTimeoutSeconds)
	}
	if cfg.Capture.MaxWaitIterations != 70 {
		t.Errorf("Capture.MaxWaitIterations = %d, want 70", cfg.Capture.MaxWaitIterations)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		t.Errorf("Default() does not validate: %v", ValidationErrors(errs))
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.Device.Path != "/dev/video0" {
		t.Errorf("Device.Path = %q, want default", cfg.Device.Path)
	}
	if cfg.Capture.WaitTimeout() != 2*time.Second {
		t.Errorf("WaitTimeout() = %v, want 2s", cfg.Capture.WaitTimeout())
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
device:
  path: /dev/video2
capture:
  stabilize_count: 3
  width: 1280
  height: 720
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) failed: %v", path, err)
	}
	if cfg.Device.Path != "/dev/video2" {
		t.Errorf("Device.Path = %q, want /dev/video2", cfg.Device.Path)
	}
	if cfg.Capture.StabilizeCount != 3 {
		t.Errorf("Capture.StabilizeCount = %d, want 3", cfg.Capture.StabilizeCount)
	}
	if cfg.Capture.Width != 1280 || cfg.Capture.Height != 720 {
		t.Errorf("Capture dimensions = %dx%d, want 1280x720", cfg.Capture.Width, cfg.Capture.Height)
	}
	// Unset keys keep their defaults
	if cfg.Output.Path != "frame.jpg" {
		t.Errorf("Output.Path = %q, want default", cfg.Output.Path)
	}
	if cfg.Capture.MaxWaitIterations != 70 {
		t.Errorf("Capture.MaxWaitIterations = %d, want default 70", cfg.Capture.MaxWaitIterations)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load with missing file should fail")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("STILL_CAPTURE_DEVICE_PATH", "/dev/video7")
	t.Setenv("STILL_CAPTURE_CAPTURE_STABILIZE_COUNT", "2")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.Device.Path != "/dev/video7" {
		t.Errorf("Device.Path = %q, want /dev/video7", cfg.Device.Path)
	}
	if cfg.Capture.StabilizeCount != 2 {
		t.Errorf("Capture.StabilizeCount = %d, want 2", cfg.Capture.StabilizeCount)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{
			name:   "empty device path",
			mutate: func(c *Config) { c.Device.Path = "" },
			field:  "device.path",
		},
		{
			name:   "empty output path",
			mutate: func(c *Config) { c.Output.Path = "" },
			field:  "output.path",
		},
		{
			name:   "zero stabilize count",
			mutate: func(c *Config) { c.Capture.StabilizeCount = 0 },
			field:  "capture.stabilize_count",
		},
		{
			name:   "zero width",
			mutate: func(c *Config) { c.Capture.Width = 0 },
			field:  "capture.width/height",
		},
		{
			name:   "zero wait timeout",
			mutate: func(c *Config) { c.Capture.WaitTimeoutSeconds = 0 },
			field:  "capture.wait_timeout_seconds",
		},
		{
			name:   "bound below stabilize count",
			mutate: func(c *Config) { c.Capture.MaxWaitIterations = 4 },
			field:  "capture.max_wait_iterations",
		},
		{
			name:   "bogus log level",
			mutate: func(c *Config) { c.Logging.Level = "loud" },
			field:  "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			errs := cfg.Validate()
			if len(errs) == 0 {
				t.Fatal("expected a validation error")
			}
			found := false
			for _, e := range errs {
				if e.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for field %q in %v", tt.field, ValidationErrors(errs))
			}
		})
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{
		{Field: "device.path", Value: "", Message: "cannot be empty"},
		{Field: "capture.stabilize_count", Value: 0, Message: "must be at least 1"},
	}
	msg := errs.Error()
	if msg == "" {
		t.Fatal("empty message for non-empty errors")
	}
	if (ValidationErrors{}).Error() != "" {
		t.Error("empty ValidationErrors should render empty string")
	}
	single := ValidationErrors{errs[0]}
	if single.Error() != errs[0].Error() {
		t.Errorf("single error message = %q, want %q", single.Error(), errs[0].Error())
	}
}

func TestToCapture(t *testing.T) {
	cfg := Default()
	cfg.Device.Path = "/dev/video1"
	cfg.Capture.WaitTimeoutSeconds = 5

	cap := cfg.ToCapture()
	if cap.DevicePath != "/dev/video1" {
		t.Errorf("DevicePath = %q, want /dev/video1", cap.DevicePath)
	}
	if cap.WaitTimeout != 5*time.Second {
		t.Errorf("WaitTimeout = %v, want 5s", cap.WaitTimeout)
	}
	if cap.StabilizeCount != 5 || cap.MaxWaitIterations != 70 {
		t.Errorf("loop bounds = %d/%d, want 5/70", cap.StabilizeCount, cap.MaxWaitIterations)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"error", "ERROR"},
		{"", "INFO"},
	}
	for _, tt := range tests {
		lc := LoggingConfig{Level: tt.level}
		if got := lc.SlogLevel().String(); got != tt.want {
			t.Errorf("SlogLevel(%q) = %s, want %s", tt.level, got, tt.want)
		}
	}
}
