//go:build linux

package v4l2

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Arena negotiates driver-backed capture buffers and owns the process-side
// memory mapping of buffer 0. It borrows the Device for ioctl and mmap
// targets but never owns it: the descriptor must outlive the mapping, so
// Unmap always precedes Device.Close on both the happy and error paths.
type Arena struct {
	dev    *Device
	count  uint32
	length uint32
	offset uint32
	data   []byte
}

// NewArena returns an arena bound to dev. No kernel resources are acquired
// until Request.
func NewArena(dev *Device) *Arena {
	return &Arena{dev: dev}
}

// Request asks the driver for count memory-mapped capture buffers
// (VIDIOC_REQBUFS). It fails if the driver refuses mmap streaming or grants
// fewer buffers than requested.
func (a *Arena) Request(count uint32) error {
	rb := requestBuffers{count: count, typ: bufTypeVideoCapture, memory: memoryMmap}
	if err := a.dev.ioctl(vidiocReqbufs, unsafe.Pointer(&rb)); err != nil {
		return fmt.Errorf("v4l2: request %d buffers: %w", count, err)
	}
	if rb.count < count {
		return fmt.Errorf("v4l2: driver granted %d of %d requested buffers", rb.count, count)
	}
	a.count = rb.count
	return nil
}

// Map queries buffer 0 for its kernel-side length and offset
// (VIDIOC_QUERYBUF) and maps it read/write/shared into the process address
// space.
func (a *Arena) Map() error {
	b := buffer{index: 0, typ: bufTypeVideoCapture, memory: memoryMmap}
	if err := a.dev.ioctl(vidiocQuerybuf, unsafe.Pointer(&b)); err != nil {
		return fmt.Errorf("v4l2: query buffer 0: %w", err)
	}

	data, err := unix.Mmap(a.dev.fd, int64(b.offset), int(b.length),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("v4l2: mmap buffer 0 (%d bytes at offset %d): %w", b.length, b.offset, err)
	}

	a.length = b.length
	a.offset = b.offset
	a.data = data
	return nil
}

// Unmap releases the mapping. It is a no-op when nothing is mapped.
func (a *Arena) Unmap() error {
	if a.data == nil {
		return nil
	}
	data := a.data
	a.data = nil
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("v4l2: munmap buffer 0: %w", err)
	}
	return nil
}

// View returns the mapped region, or nil when unmapped. The returned slice
// aliases driver memory: it is only valid to read between a dequeue and the
// following enqueue of buffer 0.
func (a *Arena) View() []byte { return a.data }

// Length reports the kernel-side buffer length in bytes.
func (a *Arena) Length() uint32 { return a.length }
