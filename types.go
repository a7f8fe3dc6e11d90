package stillcapture

import "time"

// Config controls a single still capture run.
type Config struct {
	// DevicePath is the capture character device to open.
	DevicePath string
	// OutputPath is the file the selected frame is written to, created or
	// truncated on each run.
	OutputPath string
	// StabilizeCount is the 1-based index of the dequeued frame that gets
	// persisted. Earlier frames are discarded to give the sensor time to
	// settle exposure and white balance after stream-on.
	StabilizeCount int
	// Width and Height are the requested frame dimensions. The driver may
	// coerce them; the effective values are reported on the Result.
	Width  uint32
	Height uint32
	// WaitTimeout bounds each readiness wait. A wait that elapses without
	// the descriptor becoming readable fails the run with KindCaptureTimeout.
	WaitTimeout time.Duration
	// MaxWaitIterations bounds the total number of readiness-wait wakeups
	// (signal interruptions excluded) before the run fails with
	// KindStabilizationExhausted.
	MaxWaitIterations int
}

// DefaultConfig returns the canonical single-shot configuration: the first
// video device, 640x480 motion-JPEG, the fifth frame, written to frame.jpg
// in the working directory.
func DefaultConfig() Config {
	return Config{
		DevicePath:        "/dev/video0",
		OutputPath:        "frame.jpg",
		StabilizeCount:    5,
		Width:             640,
		Height:            480,
		WaitTimeout:       2 * time.Second,
		MaxWaitIterations: 70,
	}
}

// Phase is the controller's position in the capture sequence. Rollback on
// failure tears down exactly the phases already entered, in reverse order.
type Phase int

const (
	// PhaseClosed: no kernel resources held.
	PhaseClosed Phase = iota
	// PhaseOpen: device descriptor held.
	PhaseOpen
	// PhaseConfigured: capabilities verified and format negotiated.
	PhaseConfigured
	// PhaseMapped: shared buffer negotiated and memory-mapped.
	PhaseMapped
	// PhaseQueued: buffer 0 owned by the driver, stream not yet on.
	PhaseQueued
	// PhaseStreaming: capture pipeline running.
	PhaseStreaming
	// PhaseStopped: stream off, mapping and descriptor still held.
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseClosed:
		return "closed"
	case PhaseOpen:
		return "open"
	case PhaseConfigured:
		return "configured"
	case PhaseMapped:
		return "mapped"
	case PhaseQueued:
		return "queued"
	case PhaseStreaming:
		return "streaming"
	case PhaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Format is the effective pixel format the driver applied.
type Format struct {
	Width  uint32
	Height uint32
	// FourCC is the four-character pixel format code, e.g. "MJPG".
	FourCC string
	// SizeImage is the driver's maximum image size in bytes, when reported.
	SizeImage uint32
}

// Stats counts readiness-loop behavior over a run.
type Stats struct {
	// FramesDequeued is the number of successful dequeues, including the
	// persisted one.
	FramesDequeued int
	// WouldBlocks counts wakeups whose dequeue found no frame ready.
	WouldBlocks int
	// SignalWakeups counts waits interrupted by signal delivery. These do
	// not consume wait iterations.
	SignalWakeups int
	// WaitIterations is the number of wait wakeups consumed against the
	// safety bound.
	WaitIterations int
}

// StabilityStats summarizes frame delivery timing over the stabilization
// window, mirroring internal/stabilize for callers of this package.
type StabilityStats struct {
	FramesSeen int
	Duration   time.Duration
	RateMean   float64
	RateStdDev float64
	RateMin    float64
	RateMax    float64
	JitterMean float64
	JitterMax  float64
	IsSteady   bool
}

// Result reports a completed capture.
type Result struct {
	// TraceID identifies the run in logs.
	TraceID string
	// OutputPath is the file the frame was written to.
	OutputPath string
	// BytesWritten is the driver-reported bytesused of the persisted frame,
	// all of which reached disk.
	BytesWritten int
	// Format is the effective format after driver coercion.
	Format Format
	// Stats counts readiness-loop behavior.
	Stats Stats
	// Stability describes delivery timing across the stabilization window.
	Stability *StabilityStats
	// Elapsed is the wall-clock duration of the whole run.
	Elapsed time.Duration
}
