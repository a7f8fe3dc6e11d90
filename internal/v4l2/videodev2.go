//go:build linux

package v4l2

import "unsafe"

// Kernel UAPI constants from include/uapi/linux/videodev2.h. The capture
// pipeline uses the single-planar video capture buffer type with
// memory-mapped streaming I/O exclusively.
const (
	bufTypeVideoCapture = 1
	memoryMmap          = 1

	CapVideoCapture = 0x00000001
	CapStreaming    = 0x04000000
)

// Field order values for v4l2_pix_format.field.
const (
	FieldAny        = 0
	FieldNone       = 1
	FieldInterlaced = 4
)

// PixFmtMJPEG is the fourcc for motion-JPEG compressed frames ('MJPG').
const PixFmtMJPEG uint32 = 'M' | 'J'<<8 | 'P'<<16 | 'G'<<24

// FourCCString renders a fourcc code as its four-character form.
func FourCCString(code uint32) string {
	return string([]byte{
		byte(code),
		byte(code >> 8),
		byte(code >> 16),
		byte(code >> 24),
	})
}

// ioctl request codes are derived from struct sizes exactly as the kernel's
// _IO* macros derive them, so a layout mistake in this package surfaces as a
// wrong request number rather than silent memory corruption. Tests pin the
// derived values against the well-known per-arch constants.
const (
	iocWrite = 1
	iocRead  = 2

	iocNrShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return dir<<iocDirShift | size<<iocSizeShift | typ<<iocTypeShift | nr<<iocNrShift
}

func iow(typ, nr, size uintptr) uintptr  { return ioc(iocWrite, typ, nr, size) }
func ior(typ, nr, size uintptr) uintptr  { return ioc(iocRead, typ, nr, size) }
func iowr(typ, nr, size uintptr) uintptr { return ioc(iocRead|iocWrite, typ, nr, size) }

var (
	vidiocQuerycap  = ior('V', 0, unsafe.Sizeof(capability{}))
	vidiocSetFmt    = iowr('V', 5, unsafe.Sizeof(format{}))
	vidiocReqbufs   = iowr('V', 8, unsafe.Sizeof(requestBuffers{}))
	vidiocQuerybuf  = iowr('V', 9, unsafe.Sizeof(buffer{}))
	vidiocQbuf      = iowr('V', 15, unsafe.Sizeof(buffer{}))
	vidiocDqbuf     = iowr('V', 17, unsafe.Sizeof(buffer{}))
	vidiocStreamOn  = iow('V', 18, unsafe.Sizeof(int32(0)))
	vidiocStreamOff = iow('V', 19, unsafe.Sizeof(int32(0)))
)

// Layouts below are identical on every supported architecture; the
// arch-dependent structs (v4l2_buffer, v4l2_format) live in the
// videodev2_*bit.go files.
var (
	_ [0]struct{} = [unsafe.Sizeof(capability{}) - 104]struct{}{}
	_ [0]struct{} = [unsafe.Sizeof(requestBuffers{}) - 20]struct{}{}
	_ [0]struct{} = [unsafe.Sizeof(timecode{}) - 16]struct{}{}
	_ [0]struct{} = [unsafe.Sizeof(pixFormat{}) - 48]struct{}{}
)

// capability mirrors struct v4l2_capability.
type capability struct {
	driver       [16]byte
	card         [32]byte
	busInfo      [32]byte
	version      uint32
	capabilities uint32
	deviceCaps   uint32
	reserved     [3]uint32
}

// requestBuffers mirrors struct v4l2_requestbuffers.
type requestBuffers struct {
	count        uint32
	typ          uint32
	memory       uint32
	capabilities uint32
	flags        uint8
	reserved     [3]uint8
}

// timecode mirrors struct v4l2_timecode.
type timecode struct {
	typ      uint32
	flags    uint32
	frames   uint8
	seconds  uint8
	minutes  uint8
	hours    uint8
	userbits [4]uint8
}

// pixFormat mirrors struct v4l2_pix_format (48 bytes of the 200-byte
// v4l2_format union).
type pixFormat struct {
	width        uint32
	height       uint32
	pixelformat  uint32
	field        uint32
	bytesperline uint32
	sizeimage    uint32
	colorspace   uint32
	priv         uint32
	flags        uint32
	ycbcrEnc     uint32
	quantization uint32
	xferFunc     uint32
}
