package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	stillcapture "github.com/e7canasta/orion-care-sensor/modules/still-capture"
	"github.com/e7canasta/orion-care-sensor/modules/still-capture/internal/config"
)

// Version information
const version = "v0.1.0"

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	devicePath := flag.String("device", "", "V4L2 capture device (default /dev/video0)")
	outputPath := flag.String("output", "", "Output file for the captured frame (default frame.jpg)")
	frames := flag.Int("frames", 0, "1-based index of the frame to keep (default 5)")
	timeout := flag.Int("timeout", 0, "Per-wait timeout in seconds (default 2)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	// Show version
	if *showVersion {
		fmt.Printf("still-capture %s\n", version)
		os.Exit(0)
	}

	// Load config: defaults, then file, then environment
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Flags override everything
	if *devicePath != "" {
		cfg.Device.Path = *devicePath
	}
	if *outputPath != "" {
		cfg.Output.Path = *outputPath
	}
	if *frames > 0 {
		cfg.Capture.StabilizeCount = *frames
	}
	if *timeout > 0 {
		cfg.Capture.WaitTimeoutSeconds = *timeout
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		fmt.Fprintf(os.Stderr, "Error: %v\n", config.ValidationErrors(errs))
		os.Exit(1)
	}

	// Set up logging
	logLevel := cfg.Logging.SlogLevel()
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	fmt.Printf("still-capture %s\n", version)
	fmt.Printf("  Device:  %s\n", cfg.Device.Path)
	fmt.Printf("  Output:  %s\n", cfg.Output.Path)
	fmt.Printf("  Frame:   #%d after stream-on\n", cfg.Capture.StabilizeCount)
	fmt.Printf("  Format:  %dx%d MJPG\n", cfg.Capture.Width, cfg.Capture.Height)
	fmt.Printf("\n")

	ctrl, err := stillcapture.New(cfg.ToCapture(), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := ctrl.Run(ctx)
	if err != nil {
		if kind, ok := stillcapture.KindOf(err); ok {
			fmt.Fprintf(os.Stderr, "Error (%s): %v\n", kind, err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("\n")
	fmt.Printf("Capture complete\n")
	fmt.Printf("  Output:          %s (%d bytes)\n", res.OutputPath, res.BytesWritten)
	fmt.Printf("  Effective:       %dx%d %s\n", res.Format.Width, res.Format.Height, res.Format.FourCC)
	fmt.Printf("  Frames dequeued: %d (%d would-block wakeups)\n", res.Stats.FramesDequeued, res.Stats.WouldBlocks)
	fmt.Printf("  Elapsed:         %.2fs\n", res.Elapsed.Seconds())
	if res.Stability != nil {
		fmt.Printf("  Delivery rate:   %.2f fps (stddev %.2f, steady: %v)\n",
			res.Stability.RateMean, res.Stability.RateStdDev, res.Stability.IsSteady)
	}
	os.Exit(0)
}
