package engine

import (
	"sync/atomic"
	"time"
)

// FrameLimiter paces the frame loop to a maximum rate
type FrameLimiter struct {
	maxFPS atomic.Int64
	next   time.Time
}

// NewFrameLimiter returns a limiter capped at maxFPS, 0 meaning uncapped
func NewFrameLimiter(maxFPS int) *FrameLimiter {
	f := &FrameLimiter{}
	f.SetMaxFPS(maxFPS)
	return f
}

// SetMaxFPS changes the cap. Goroutine-safe.
func (f *FrameLimiter) SetMaxFPS(maxFPS int) {
	f.maxFPS.Store(int64(maxFPS))
}

// MaxFPS returns the current cap
func (f *FrameLimiter) MaxFPS() int {
	return int(f.maxFPS.Load())
}

// Wait blocks until the next frame is due.
// Sleeps most of the interval and spins the last 200µs.
func (f *FrameLimiter) Wait() {
	limit := f.maxFPS.Load()
	if limit <= 0 {
		f.next = time.Time{}
		return
	}

	target := time.Second / time.Duration(limit)

	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
	}

	// resync after a hitch instead of racing to catch up
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
}
