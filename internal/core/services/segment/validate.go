package segment

import "fmt"

// ValidateBufferSize checks the size of the buffered sink wrapping a segment file.
func ValidateBufferSize(size uint32) error {
	if size < MinBufferSize {
		return fmt.Errorf("buffer size must be at least 4KB (%d bytes), got %d bytes", MinBufferSize, size)
	}

	if size > MaxBufferSize {
		return fmt.Errorf("buffer size must not exceed 64MB (%d bytes), got %d bytes", MaxBufferSize, size)
	}

	return nil
}
