package system

import (
	"context"
)

// Runs a blocking operation bounded by ctx. The operation itself cannot be
// interrupted, so when ctx ends first the call returns ctx.Err() right away
// and the operation keeps running in its goroutine; its result is dropped.
//
// Returns:
//   - ctx.Err() if ctx is already done or ends before the operation finishes.
//   - the operation's own error otherwise.
func RunWithContext(ctx context.Context, operation func() error) error {
	// Fast feedback if the caller gave up before we started.
	if err := ctx.Err(); err != nil {
		return err
	}

	// Buffered so the goroutine can always deliver and exit, even when
	// nobody is left to read the result.
	done := make(chan error, 1)
	go func() {
		done <- operation()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
