package stillcapture

import (
	"fmt"
	"os"
)

// writeFrame writes exactly n bytes of data to path, creating or truncating
// the file, and closes it before returning. n == 0 produces an empty file
// and succeeds: a driver reporting bytesused of zero is persisted as-is.
func writeFrame(path string, data []byte, n int) error {
	if n < 0 || n > len(data) {
		return fmt.Errorf("bytes used %d outside mapped region of %d bytes", n, len(data))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(data[:n]); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
