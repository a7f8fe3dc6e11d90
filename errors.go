package stillcapture

import (
	"errors"
	"fmt"
)

// Kind classifies capture failures for callers and telemetry.
type Kind int

const (
	// KindDeviceUnavailable means the device path could not be opened.
	KindDeviceUnavailable Kind = iota
	// KindDeviceUnsupported means the device lacks video capture or
	// streaming capability.
	KindDeviceUnsupported
	// KindFormatNegotiation means the driver rejected the requested format.
	KindFormatNegotiation
	// KindBufferNegotiation means buffer request or query failed.
	KindBufferNegotiation
	// KindMapping means the shared buffer could not be memory-mapped.
	KindMapping
	// KindUnmapping means the mapping could not be released.
	KindUnmapping
	// KindQueue means an enqueue ioctl failed for a non-transient reason.
	KindQueue
	// KindDequeue means a dequeue ioctl failed for a non-transient reason.
	KindDequeue
	// KindCaptureTimeout means a readiness wait elapsed with no frame.
	KindCaptureTimeout
	// KindStabilizationExhausted means the wait-iteration safety bound was
	// reached before a frame was persisted.
	KindStabilizationExhausted
	// KindPersistence means the output file could not be fully written.
	KindPersistence
	// KindIO covers other operating system errors.
	KindIO
)

// String returns the snake_case name of the kind, suitable for log fields.
func (k Kind) String() string {
	switch k {
	case KindDeviceUnavailable:
		return "device_unavailable"
	case KindDeviceUnsupported:
		return "device_unsupported"
	case KindFormatNegotiation:
		return "format_negotiation_failed"
	case KindBufferNegotiation:
		return "buffer_negotiation_failed"
	case KindMapping:
		return "mapping_failed"
	case KindUnmapping:
		return "unmapping_failed"
	case KindQueue:
		return "queue_failed"
	case KindDequeue:
		return "dequeue_failed"
	case KindCaptureTimeout:
		return "capture_timeout"
	case KindStabilizationExhausted:
		return "stabilization_exhausted"
	case KindPersistence:
		return "persistence_failed"
	case KindIO:
		return "io_error"
	default:
		return "unknown"
	}
}

// Error couples a failure kind with human-readable context and, where one
// exists, the underlying operating system error.
type Error struct {
	Kind    Kind
	Context string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("still-capture: %s: %v", e.Context, e.Err)
	}
	return "still-capture: " + e.Context
}

// Unwrap exposes the underlying OS error to errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, context string, err error) *Error {
	return &Error{Kind: kind, Context: context, Err: err}
}

// KindOf extracts the failure kind from an error returned by this package.
// The second result is false when err does not carry one.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
