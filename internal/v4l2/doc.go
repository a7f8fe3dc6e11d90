// Package v4l2 is a minimal pure-Go binding to the Video4Linux2 streaming
// capture UAPI: open/close of the device descriptor, capability query,
// format negotiation, buffer negotiation with memory mapping, queue/dequeue,
// stream on/off, and a select(2) readiness wait.
//
// The package does not use cgo. Struct layouts mirror
// include/uapi/linux/videodev2.h per architecture and are pinned by
// compile-time size and offset assertions; ioctl request codes are derived
// from those layouts the same way the kernel's _IO* macros derive them.
//
// Only the single-planar video-capture buffer type with MEMORY_MMAP
// streaming is supported.
package v4l2
