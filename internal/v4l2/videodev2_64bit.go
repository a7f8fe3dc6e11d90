//go:build linux && (amd64 || arm64 || riscv64)

package v4l2

import "unsafe"

// Compile-time layout assertions against the 64-bit kernel ABI.
// [0]struct{} = [actual - expected]struct{} fails to compile on mismatch.
var (
	_ [0]struct{} = [unsafe.Sizeof(buffer{}) - 88]struct{}{}
	_ [0]struct{} = [unsafe.Sizeof(format{}) - 208]struct{}{}
	_ [0]struct{} = [unsafe.Offsetof(buffer{}.timestamp) - 24]struct{}{}
	_ [0]struct{} = [unsafe.Offsetof(buffer{}.memory) - 60]struct{}{}
	_ [0]struct{} = [unsafe.Offsetof(buffer{}.offset) - 64]struct{}{}
	_ [0]struct{} = [unsafe.Offsetof(buffer{}.length) - 72]struct{}{}
	_ [0]struct{} = [unsafe.Offsetof(format{}.pix) - 8]struct{}{}
)

// timeval mirrors the kernel struct timeval on 64-bit targets.
type timeval struct {
	sec  int64
	usec int64
}

// buffer mirrors struct v4l2_buffer (88 bytes on 64-bit). The m union is
// pointer-sized; only the MEMORY_MMAP offset member is used here.
type buffer struct {
	index     uint32
	typ       uint32
	bytesused uint32
	flags     uint32
	field     uint32
	_         [4]byte
	timestamp timeval
	timecode  timecode
	sequence  uint32
	memory    uint32
	offset    uint32
	_         [4]byte
	length    uint32
	reserved2 uint32
	requestFD uint32
	_         [4]byte
}

// format mirrors struct v4l2_format (208 bytes on 64-bit: the fmt union is
// 8-aligned because v4l2_window carries pointers).
type format struct {
	typ uint32
	_   [4]byte
	pix pixFormat
	_   [152]byte
}
