// Package stillcapture grabs a single still frame from a V4L2 video capture
// device and writes it to disk.
//
// This module is part of Orion 2.0 and implements Bounded Context "Snapshot
// Acquisition". It talks to the kernel directly over ioctl and mmap (no
// userspace media framework) and is meant for one-shot diagnostics: confirm
// a camera works, pull a reference image, seed a calibration run.
//
// # Quick Start
//
// The simplest way to capture a frame:
//
//	cfg := stillcapture.DefaultConfig()
//	cfg.DevicePath = "/dev/video0"
//	cfg.OutputPath = "frame.jpg"
//
//	ctrl, err := stillcapture.New(cfg, slog.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := ctrl.Run(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Printf("wrote %d bytes to %s", res.BytesWritten, res.OutputPath)
//
// # Capture Sequence
//
// A run walks a fixed phase sequence, each phase acquiring one kernel
// resource:
//
//   - open the device non-blocking (O_RDWR | O_NONBLOCK)
//   - query and verify capture + streaming capability (VIDIOC_QUERYCAP)
//   - negotiate the pixel format (VIDIOC_S_FMT, motion-JPEG)
//   - request and memory-map one driver buffer (VIDIOC_REQBUFS, mmap)
//   - prime the buffer and start streaming (VIDIOC_QBUF, VIDIOC_STREAMON)
//   - wait, dequeue, and discard frames until the sensor settles
//   - persist the selected frame, then stop, unmap, and close
//
// On any failure the phases already entered are rolled back in reverse
// order: stream off before unmap, unmap before close. The device is never
// left streaming or mapped.
//
// # Stabilization
//
// The first frames after stream-on carry unsettled exposure and white
// balance. Config.StabilizeCount selects which dequeued frame is kept; the
// earlier ones are re-enqueued and discarded. Delivery timing over the
// discard window is measured and reported on Result.Stability.
//
// # Error Handling
//
// Failures carry a Kind (device_unavailable, capture_timeout, ...) that
// classifies the failing phase. Extract it with KindOf:
//
//	if kind, ok := stillcapture.KindOf(err); ok && kind == stillcapture.KindCaptureTimeout {
//	    // camera connected but not delivering
//	}
//
// # Limitations
//
//   - Single-planar MMAP streaming only (no read(), no USERPTR, no DMABUF)
//   - One buffer, one frame, one device per run
//   - The frame is written as the driver delivered it; MJPG payloads are
//     JPEG files, other fourccs are raw
//
// # Project Context
//
// This module is part of Orion, a real-time AI inference system for geriatric
// patient monitoring. It operates as a "smart sensor" following the philosophy:
// "Orión Ve, No Interpreta" (Orion Sees, Doesn't Interpret).
//
// Repository: https://github.com/e7canasta/orion-care-sensor
// License: Proprietary (Visiona Health)
package stillcapture
