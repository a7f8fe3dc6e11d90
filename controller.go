package stillcapture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/e7canasta/orion-care-sensor/modules/still-capture/internal/stabilize"
	"github.com/e7canasta/orion-care-sensor/modules/still-capture/internal/v4l2"
)

// deviceHandle is the slice of internal/v4l2.Device the controller drives.
// Tests substitute a scripted implementation.
type deviceHandle interface {
	Capability() (v4l2.Capability, error)
	SetFormat(pf v4l2.PixFormat) (v4l2.PixFormat, error)
	Enqueue(index uint32) error
	Dequeue() (v4l2.Dequeued, error)
	StreamOn() error
	StreamOff() error
	WaitFrame(timeout time.Duration) (v4l2.WaitStatus, error)
	Close() error
}

// bufferArena is the slice of internal/v4l2.Arena the controller drives.
type bufferArena interface {
	Request(count uint32) error
	Map() error
	Unmap() error
	View() []byte
	Length() uint32
}

func openV4L2(path string) (deviceHandle, bufferArena, error) {
	dev, err := v4l2.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return dev, v4l2.NewArena(dev), nil
}

// Controller runs one still capture end to end: open, configure, map,
// stream, persist, tear down. A Controller is single-use; Run may be called
// exactly once.
//
// The teardown contract holds on every path, success or failure: stream off
// before unmap, unmap before close, and the phases already entered are the
// only ones rolled back.
type Controller struct {
	cfg     Config
	traceID string
	log     *slog.Logger

	// open is the acquisition seam. Production uses openV4L2; tests inject
	// scripted handles.
	open func(path string) (deviceHandle, bufferArena, error)

	phase  Phase
	dev    deviceHandle
	arena  bufferArena
	format Format

	stats      Stats
	frameTimes []time.Time
}

// New validates cfg and returns a controller ready to Run. A nil logger
// falls back to slog.Default.
func New(cfg Config, log *slog.Logger) (*Controller, error) {
	if cfg.DevicePath == "" {
		return nil, fmt.Errorf("still-capture: device path is required")
	}
	if cfg.OutputPath == "" {
		return nil, fmt.Errorf("still-capture: output path is required")
	}
	if cfg.StabilizeCount < 1 {
		return nil, fmt.Errorf("still-capture: stabilize count must be at least 1, got %d", cfg.StabilizeCount)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("still-capture: frame dimensions must be non-zero, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.WaitTimeout <= 0 {
		return nil, fmt.Errorf("still-capture: wait timeout must be positive, got %v", cfg.WaitTimeout)
	}
	if cfg.MaxWaitIterations < cfg.StabilizeCount {
		return nil, fmt.Errorf("still-capture: max wait iterations %d cannot deliver %d frames",
			cfg.MaxWaitIterations, cfg.StabilizeCount)
	}
	if log == nil {
		log = slog.Default()
	}
	traceID := uuid.New().String()
	return &Controller{
		cfg:     cfg,
		traceID: traceID,
		log:     log.With("trace_id", traceID, "device", cfg.DevicePath),
		open:    openV4L2,
		phase:   PhaseClosed,
	}, nil
}

// TraceID returns the run identifier stamped on every log line.
func (c *Controller) TraceID() string { return c.traceID }

// Phase reports the controller's current position in the capture sequence.
func (c *Controller) Phase() Phase { return c.phase }

// Run executes the capture. On failure it rolls back the phases already
// entered, in reverse order, before returning; the device is never left
// streaming, mapped, or open.
func (c *Controller) Run(ctx context.Context) (res *Result, err error) {
	if c.phase != PhaseClosed || c.dev != nil {
		return nil, fmt.Errorf("still-capture: controller already ran")
	}

	start := time.Now()
	c.log.Info("still-capture: starting run",
		"output", c.cfg.OutputPath,
		"stabilize_count", c.cfg.StabilizeCount,
		"requested_format", fmt.Sprintf("%dx%d MJPG", c.cfg.Width, c.cfg.Height))

	dev, arena, err := c.open(c.cfg.DevicePath)
	if err != nil {
		return nil, newError(KindDeviceUnavailable,
			fmt.Sprintf("open device %s", c.cfg.DevicePath), err)
	}
	c.dev = dev
	c.arena = arena
	c.phase = PhaseOpen
	defer c.unwind()

	if err := c.configure(); err != nil {
		return nil, err
	}
	if err := c.mapBuffers(); err != nil {
		return nil, err
	}
	if err := c.startStream(); err != nil {
		return nil, err
	}

	bytesWritten, err := c.streamLoop(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.shutdown(); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	stability := fromStabilize(c.measureStability(elapsed))
	c.log.Info("still-capture: run complete",
		"output", c.cfg.OutputPath,
		"bytes_written", bytesWritten,
		"frames_dequeued", c.stats.FramesDequeued,
		"would_blocks", c.stats.WouldBlocks,
		"elapsed", elapsed)

	return &Result{
		TraceID:      c.traceID,
		OutputPath:   c.cfg.OutputPath,
		BytesWritten: bytesWritten,
		Format:       c.format,
		Stats:        c.stats,
		Stability:    stability,
		Elapsed:      elapsed,
	}, nil
}

// configure verifies the device identity and capabilities, then negotiates
// the pixel format. The driver's write-back is recorded as the effective
// format even when it coerces the request.
func (c *Controller) configure() error {
	caps, err := c.dev.Capability()
	if err != nil {
		return newError(KindDeviceUnsupported, "query capabilities", err)
	}
	c.log.Info("still-capture: device identified",
		"driver", caps.Driver,
		"card", caps.Card,
		"bus", caps.BusInfo,
		"driver_version", caps.VersionString())

	if !caps.HasVideoCapture() {
		return newError(KindDeviceUnsupported,
			fmt.Sprintf("device %s does not support video capture", c.cfg.DevicePath), nil)
	}
	if !caps.HasStreaming() {
		return newError(KindDeviceUnsupported,
			fmt.Sprintf("device %s does not support streaming I/O", c.cfg.DevicePath), nil)
	}

	want := v4l2.PixFormat{
		Width:       c.cfg.Width,
		Height:      c.cfg.Height,
		PixelFormat: v4l2.PixFmtMJPEG,
		Field:       v4l2.FieldInterlaced,
	}
	got, err := c.dev.SetFormat(want)
	if err != nil {
		return newError(KindFormatNegotiation,
			fmt.Sprintf("set format %dx%d %s", want.Width, want.Height, v4l2.FourCCString(want.PixelFormat)), err)
	}
	if got.Width != want.Width || got.Height != want.Height || got.PixelFormat != want.PixelFormat {
		c.log.Warn("still-capture: driver coerced format",
			"requested", fmt.Sprintf("%dx%d %s", want.Width, want.Height, v4l2.FourCCString(want.PixelFormat)),
			"effective", fmt.Sprintf("%dx%d %s", got.Width, got.Height, v4l2.FourCCString(got.PixelFormat)))
	}
	c.format = Format{
		Width:     got.Width,
		Height:    got.Height,
		FourCC:    v4l2.FourCCString(got.PixelFormat),
		SizeImage: got.SizeImage,
	}
	c.phase = PhaseConfigured
	return nil
}

// mapBuffers negotiates a single driver buffer and maps it into the process.
func (c *Controller) mapBuffers() error {
	if err := c.arena.Request(1); err != nil {
		return newError(KindBufferNegotiation, "request capture buffer", err)
	}
	if err := c.arena.Map(); err != nil {
		return newError(KindMapping, "map capture buffer", err)
	}
	c.log.Debug("still-capture: buffer mapped", "length", c.arena.Length())
	c.phase = PhaseMapped
	return nil
}

// startStream primes buffer 0 and turns the pipeline on.
func (c *Controller) startStream() error {
	if err := c.dev.Enqueue(0); err != nil {
		return newError(KindQueue, "prime capture buffer", err)
	}
	c.phase = PhaseQueued
	if err := c.dev.StreamOn(); err != nil {
		return newError(KindIO, "stream on", err)
	}
	c.phase = PhaseStreaming
	c.log.Debug("still-capture: streaming")
	return nil
}

// streamLoop waits for frames, discarding the first StabilizeCount-1 and
// persisting the one after. Signal wakeups repeat the wait without consuming
// the safety bound; would-block wakeups consume it without advancing the
// frame count. Returns the byte count written to the output file.
func (c *Controller) streamLoop(ctx context.Context) (int, error) {
	for c.stats.WaitIterations < c.cfg.MaxWaitIterations {
		if err := ctx.Err(); err != nil {
			return 0, newError(KindIO, "capture canceled", err)
		}

		status, err := c.dev.WaitFrame(c.cfg.WaitTimeout)
		if err != nil {
			return 0, newError(KindIO, "readiness wait", err)
		}
		switch status {
		case v4l2.WaitInterrupted:
			c.stats.SignalWakeups++
			continue
		case v4l2.WaitTimeout:
			return 0, newError(KindCaptureTimeout,
				fmt.Sprintf("no frame within %v", c.cfg.WaitTimeout), nil)
		}
		c.stats.WaitIterations++

		dq, err := c.dev.Dequeue()
		if errors.Is(err, v4l2.ErrWouldBlock) {
			c.stats.WouldBlocks++
			continue
		}
		if err != nil {
			return 0, newError(KindDequeue, "dequeue frame", err)
		}
		c.stats.FramesDequeued++
		c.frameTimes = append(c.frameTimes, time.Now())
		c.log.Debug("still-capture: frame dequeued",
			"count", c.stats.FramesDequeued,
			"sequence", dq.Sequence,
			"bytes_used", dq.BytesUsed)

		if c.stats.FramesDequeued == c.cfg.StabilizeCount {
			n := int(dq.BytesUsed)
			if err := writeFrame(c.cfg.OutputPath, c.arena.View(), n); err != nil {
				return 0, newError(KindPersistence,
					fmt.Sprintf("write frame to %s", c.cfg.OutputPath), err)
			}
			c.log.Info("still-capture: frame persisted",
				"output", c.cfg.OutputPath,
				"bytes", n,
				"sequence", dq.Sequence)
			return n, nil
		}

		// Discard: hand the buffer back so the driver can fill the next
		// frame.
		if err := c.dev.Enqueue(dq.Index); err != nil {
			return 0, newError(KindQueue, "requeue capture buffer", err)
		}
	}
	return 0, newError(KindStabilizationExhausted,
		fmt.Sprintf("no stable frame after %d wait iterations", c.cfg.MaxWaitIterations), nil)
}

// shutdown is the happy-path teardown: stream off, unmap, close, in that
// order. Each phase transition is recorded before the next step so that a
// failure mid-teardown leaves unwind with only the remaining steps.
func (c *Controller) shutdown() error {
	err := c.dev.StreamOff()
	c.phase = PhaseStopped
	if err != nil {
		return newError(KindIO, "stream off", err)
	}

	if err := c.arena.Unmap(); err != nil {
		return newError(KindUnmapping, "unmap capture buffer", err)
	}
	c.phase = PhaseOpen

	err = c.dev.Close()
	c.phase = PhaseClosed
	if err != nil {
		return newError(KindIO, fmt.Sprintf("close device %s", c.cfg.DevicePath), err)
	}
	return nil
}

// unwind rolls back whatever phases are still entered, in reverse order.
// Teardown errors are logged, not returned: a failing step never prevents
// the later ones, so the descriptor is always closed.
func (c *Controller) unwind() {
	if c.phase == PhaseClosed {
		return
	}
	if c.phase >= PhaseStreaming && c.phase != PhaseStopped {
		if err := c.dev.StreamOff(); err != nil {
			c.log.Warn("still-capture: rollback stream off failed", "error", err)
		}
		c.phase = PhaseStopped
	}
	if c.phase >= PhaseMapped {
		if err := c.arena.Unmap(); err != nil {
			c.log.Warn("still-capture: rollback unmap failed", "error", err)
		}
	}
	if err := c.dev.Close(); err != nil {
		c.log.Warn("still-capture: rollback close failed", "error", err)
	}
	c.phase = PhaseClosed
	c.log.Debug("still-capture: rollback complete")
}

// measureStability needs at least two dequeue timestamps; with fewer there
// is no interval to measure and the result is omitted.
func (c *Controller) measureStability(elapsed time.Duration) *stabilize.Stats {
	if len(c.frameTimes) < 2 {
		return nil
	}
	window := c.frameTimes[len(c.frameTimes)-1].Sub(c.frameTimes[0])
	if window <= 0 {
		window = elapsed
	}
	return stabilize.Measure(c.frameTimes, window)
}
