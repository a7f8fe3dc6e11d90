//go:build linux && (386 || arm)

package v4l2

import "unsafe"

// Compile-time layout assertions against the 32-bit kernel ABI.
// [0]struct{} = [actual - expected]struct{} fails to compile on mismatch.
var (
	_ [0]struct{} = [unsafe.Sizeof(buffer{}) - 68]struct{}{}
	_ [0]struct{} = [unsafe.Sizeof(format{}) - 204]struct{}{}
	_ [0]struct{} = [unsafe.Offsetof(buffer{}.timestamp) - 20]struct{}{}
	_ [0]struct{} = [unsafe.Offsetof(buffer{}.memory) - 48]struct{}{}
	_ [0]struct{} = [unsafe.Offsetof(buffer{}.offset) - 52]struct{}{}
	_ [0]struct{} = [unsafe.Offsetof(buffer{}.length) - 56]struct{}{}
	_ [0]struct{} = [unsafe.Offsetof(format{}.pix) - 4]struct{}{}
)

// timeval mirrors the kernel struct timeval on 32-bit targets.
type timeval struct {
	sec  int32
	usec int32
}

// buffer mirrors struct v4l2_buffer (68 bytes on 32-bit). The m union is
// word-sized; only the MEMORY_MMAP offset member is used here.
type buffer struct {
	index     uint32
	typ       uint32
	bytesused uint32
	flags     uint32
	field     uint32
	timestamp timeval
	timecode  timecode
	sequence  uint32
	memory    uint32
	offset    uint32
	length    uint32
	reserved2 uint32
	requestFD uint32
}

// format mirrors struct v4l2_format (204 bytes on 32-bit).
type format struct {
	typ uint32
	pix pixFormat
	_   [152]byte
}
