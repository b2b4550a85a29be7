package hardware

import (
	"time"

	"golang.org/x/sys/unix"
)

var processStart = time.Now()

// MonotonicMillis returns CLOCK_MONOTONIC in milliseconds. It never goes
// backwards across wall-clock adjustments.
func MonotonicMillis() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return time.Since(processStart).Milliseconds()
	}
	return ts.Nano() / int64(time.Millisecond)
}
