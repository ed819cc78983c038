package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameLimiterUncapped(t *testing.T) {
	f := NewFrameLimiter(0)
	start := time.Now()
	for i := 0; i < 1000; i++ {
		f.Wait()
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestFrameLimiterPaces(t *testing.T) {
	f := NewFrameLimiter(100)
	start := time.Now()
	for i := 0; i < 10; i++ {
		f.Wait()
	}
	// ten frames at 100 FPS take at least 100ms
	assert.GreaterOrEqual(t, time.Since(start), 95*time.Millisecond)

	f.SetMaxFPS(0)
	assert.Equal(t, 0, f.MaxFPS())
}
