package command

import (
	"context"
	"errors"
	"io"
	"time"
)

const maxLineLength = 256

// ReadLines reads CR- or LF-terminated lines from r and hands each non-empty
// one to handle. Reads returning no data (serial ports with a read timeout
// do this) are retried, so cancellation of ctx is noticed between reads.
// Lines longer than maxLineLength are discarded. A partial line pending at
// EOF is delivered before returning.
func ReadLines(ctx context.Context, r io.Reader, handle func(line string)) error {
	buf := make([]byte, 64)
	line := make([]byte, 0, maxLineLength)
	overflow := false

	flush := func() {
		if !overflow && len(line) > 0 {
			handle(string(line))
		}
		line = line[:0]
		overflow = false
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			switch b {
			case '\r', '\n':
				flush()
			default:
				if len(line) >= maxLineLength {
					overflow = true
					continue
				}
				line = append(line, b)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				flush()
				return nil
			}
			return err
		}
		if n == 0 {
			// Avoid spinning on readers that return (0, nil) without blocking
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(10 * time.Millisecond):
			}
		}
	}
}
