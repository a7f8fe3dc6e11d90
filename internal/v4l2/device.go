//go:build linux

package v4l2

import (
	"bytes"
	"errors"
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ErrWouldBlock reports that a dequeue found no filled buffer. Callers are
// expected to resume the readiness wait rather than treat this as a failure.
var ErrWouldBlock = errors.New("v4l2: no frame ready")

// WaitStatus is the outcome of a single readiness wait.
type WaitStatus int

const (
	// WaitReady means the descriptor became readable and a dequeue may be
	// attempted.
	WaitReady WaitStatus = iota
	// WaitTimeout means the wait elapsed without the descriptor becoming
	// readable.
	WaitTimeout
	// WaitInterrupted means the wait was cut short by signal delivery and
	// should simply be repeated.
	WaitInterrupted
)

// Capability is the identity and feature set reported by VIDIOC_QUERYCAP.
type Capability struct {
	Driver  string
	Card    string
	BusInfo string
	Version uint32

	// Caps is the raw capability bitmask from the driver.
	Caps uint32
}

// HasVideoCapture reports whether the device advertises single-planar
// video capture.
func (c Capability) HasVideoCapture() bool { return c.Caps&CapVideoCapture != 0 }

// HasStreaming reports whether the device advertises streaming I/O.
func (c Capability) HasStreaming() bool { return c.Caps&CapStreaming != 0 }

// VersionString renders the driver version as major.minor.patch.
func (c Capability) VersionString() string {
	return fmt.Sprintf("%d.%d.%d", byte(c.Version>>16), byte(c.Version>>8), byte(c.Version))
}

// PixFormat is the negotiable part of the single-planar pixel format.
type PixFormat struct {
	Width       uint32
	Height      uint32
	PixelFormat uint32
	Field       uint32
	SizeImage   uint32
}

// Dequeued describes a buffer reclaimed from the driver.
type Dequeued struct {
	Index     uint32
	BytesUsed uint32
	Sequence  uint32
}

// Device wraps the kernel descriptor of a video capture character device.
// It is the sole owner of the descriptor; nothing else may close it.
//
// The descriptor is opened non-blocking so that a dequeue returns
// immediately with ErrWouldBlock when no frame is ready; pacing is done by
// WaitFrame, never by blocking inside an ioctl.
type Device struct {
	path   string
	fd     int
	closed bool
}

// Open opens the capture device read/write and non-blocking.
func Open(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("v4l2: open %s: %w", path, err)
	}
	return &Device{path: path, fd: fd}, nil
}

// Path returns the device path the descriptor was opened from.
func (d *Device) Path() string { return d.path }

func (d *Device) ioctl(req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// Capability issues VIDIOC_QUERYCAP.
func (d *Device) Capability() (Capability, error) {
	var c capability
	if err := d.ioctl(vidiocQuerycap, unsafe.Pointer(&c)); err != nil {
		return Capability{}, fmt.Errorf("v4l2: query capabilities: %w", err)
	}
	return Capability{
		Driver:  cstr(c.driver[:]),
		Card:    cstr(c.card[:]),
		BusInfo: cstr(c.busInfo[:]),
		Version: c.version,
		Caps:    c.capabilities,
	}, nil
}

// SetFormat issues VIDIOC_S_FMT and returns the format the driver actually
// applied. Drivers are free to coerce any requested value; the returned
// PixFormat is the effective one.
func (d *Device) SetFormat(pf PixFormat) (PixFormat, error) {
	f := format{typ: bufTypeVideoCapture}
	f.pix.width = pf.Width
	f.pix.height = pf.Height
	f.pix.pixelformat = pf.PixelFormat
	f.pix.field = pf.Field
	if err := d.ioctl(vidiocSetFmt, unsafe.Pointer(&f)); err != nil {
		return PixFormat{}, fmt.Errorf("v4l2: set format: %w", err)
	}
	return PixFormat{
		Width:       f.pix.width,
		Height:      f.pix.height,
		PixelFormat: f.pix.pixelformat,
		Field:       f.pix.field,
		SizeImage:   f.pix.sizeimage,
	}, nil
}

// Enqueue hands buffer index to the driver for filling (VIDIOC_QBUF).
// Ownership of the buffer transfers to the driver until it is dequeued;
// the mapped region must not be read while the buffer is queued.
func (d *Device) Enqueue(index uint32) error {
	b := buffer{index: index, typ: bufTypeVideoCapture, memory: memoryMmap}
	if err := d.ioctl(vidiocQbuf, unsafe.Pointer(&b)); err != nil {
		return fmt.Errorf("v4l2: enqueue buffer %d: %w", index, err)
	}
	return nil
}

// Dequeue reclaims a filled buffer from the driver (VIDIOC_DQBUF).
// On a non-blocking descriptor with no frame ready it returns ErrWouldBlock.
func (d *Device) Dequeue() (Dequeued, error) {
	b := buffer{typ: bufTypeVideoCapture, memory: memoryMmap}
	if err := d.ioctl(vidiocDqbuf, unsafe.Pointer(&b)); err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return Dequeued{}, ErrWouldBlock
		}
		return Dequeued{}, fmt.Errorf("v4l2: dequeue buffer: %w", err)
	}
	return Dequeued{Index: b.index, BytesUsed: b.bytesused, Sequence: b.sequence}, nil
}

// StreamOn starts the capture pipeline. At least one buffer must already be
// enqueued.
func (d *Device) StreamOn() error {
	typ := int32(bufTypeVideoCapture)
	if err := d.ioctl(vidiocStreamOn, unsafe.Pointer(&typ)); err != nil {
		return fmt.Errorf("v4l2: stream on: %w", err)
	}
	return nil
}

// StreamOff stops the capture pipeline and implicitly dequeues any
// outstanding buffers. The buffer type argument is set explicitly; passing
// an indeterminate value here is a known way to get EINVAL from drivers.
func (d *Device) StreamOff() error {
	typ := int32(bufTypeVideoCapture)
	if err := d.ioctl(vidiocStreamOff, unsafe.Pointer(&typ)); err != nil {
		return fmt.Errorf("v4l2: stream off: %w", err)
	}
	return nil
}

// WaitFrame blocks until the descriptor is readable, the timeout elapses, or
// a signal interrupts the wait. It is the only blocking point in the
// pipeline; all ioctls stay short-lived because the descriptor is
// non-blocking.
func (d *Device) WaitFrame(timeout time.Duration) (WaitStatus, error) {
	var fds unix.FdSet
	fds.Zero()
	fds.Set(d.fd)
	tv := unix.NsecToTimeval(timeout.Nanoseconds())

	n, err := unix.Select(d.fd+1, &fds, nil, nil, &tv)
	switch {
	case errors.Is(err, unix.EINTR):
		return WaitInterrupted, nil
	case err != nil:
		return 0, fmt.Errorf("v4l2: readiness wait: %w", err)
	case n == 0:
		return WaitTimeout, nil
	}
	return WaitReady, nil
}

// Close releases the kernel descriptor. It is idempotent: the second and
// later calls are no-ops.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if err := unix.Close(d.fd); err != nil {
		return fmt.Errorf("v4l2: close %s: %w", d.path, err)
	}
	return nil
}

func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
