package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnClock(t *testing.T) {
	t.Run("Remaining is negative before the clock starts", func(t *testing.T) {
		// Given: a clock that was never started
		clock := NewTurnClock(time.Minute, func() {})

		// Then: no countdown is reported
		assert.Equal(t, -1, clock.Remaining())
	})

	t.Run("Start arms the countdown once", func(t *testing.T) {
		// Given: a started clock
		clock := NewTurnClock(time.Minute, func() {})
		clock.Start()
		defer clock.Stop()

		time.Sleep(10 * time.Millisecond)
		first := clock.Remaining()

		// When: starting again
		clock.Start()

		// Then: the deadline was not pushed back to the full duration
		require.GreaterOrEqual(t, first, 58)
		assert.LessOrEqual(t, clock.Remaining(), first)
	})

	t.Run("Restart before Start is a no-op", func(t *testing.T) {
		// Given: a clock that was never started
		var fired atomic.Int32
		clock := NewTurnClock(20*time.Millisecond, func() { fired.Add(1) })

		// When: restarting it
		clock.Restart()
		time.Sleep(60 * time.Millisecond)

		// Then: no countdown ran and nothing fired
		assert.Equal(t, -1, clock.Remaining())
		assert.Equal(t, int32(0), fired.Load())
	})

	t.Run("Expiry fires the callback", func(t *testing.T) {
		// Given: a started short clock
		fired := make(chan struct{})
		clock := NewTurnClock(20*time.Millisecond, func() { close(fired) })
		clock.Start()
		defer clock.Stop()

		// Then: the callback arrives
		select {
		case <-fired:
		case <-time.After(2 * time.Second):
			t.Fatal("expected the clock to expire")
		}
	})

	t.Run("Restart pushes the deadline back", func(t *testing.T) {
		// Given: a started short clock
		var fired atomic.Int32
		clock := NewTurnClock(80*time.Millisecond, func() { fired.Add(1) })
		clock.Start()
		defer clock.Stop()

		// When: restarting it before each would-be expiry
		for i := 0; i < 4; i++ {
			time.Sleep(30 * time.Millisecond)
			clock.Restart()
		}

		// Then: it never expired
		assert.Equal(t, int32(0), fired.Load())
	})

	t.Run("Stop cancels the countdown", func(t *testing.T) {
		// Given: a started short clock
		var fired atomic.Int32
		clock := NewTurnClock(30*time.Millisecond, func() { fired.Add(1) })
		clock.Start()

		// When: stopping before expiry
		clock.Stop()
		time.Sleep(80 * time.Millisecond)

		// Then: nothing fired and no countdown is reported
		assert.Equal(t, int32(0), fired.Load())
		assert.Equal(t, -1, clock.Remaining())
	})
}
