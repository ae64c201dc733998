package session

import (
	"sync"
	"time"
)

// TurnClock is the per-turn countdown. Expiry fires the injected callback,
// which the owning room routes through the same serialized command path as
// player actions; the clock never mutates session state itself.
type TurnClock struct {
	mu       sync.Mutex
	duration time.Duration
	expire   func()

	timer    *time.Timer
	deadline time.Time
	running  bool
}

func NewTurnClock(duration time.Duration, expire func()) *TurnClock {
	return &TurnClock{
		duration: duration,
		expire:   expire,
	}
}

// Start arms the clock for the first time. It does nothing while the
// clock is already running; the timer only starts once both players are
// in the room.
func (that *TurnClock) Start() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.running {
		return
	}

	that.running = true
	that.arm()
}

// Restart resets the deadline for a new turn. A clock that was never
// started stays stopped.
func (that *TurnClock) Restart() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.running {
		return
	}

	that.arm()
}

// Stop cancels the countdown; any in-flight expiry becomes a no-op at the
// room level because game state no longer expects it.
func (that *TurnClock) Stop() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.timer != nil {
		that.timer.Stop()
		that.timer = nil
	}
	that.running = false
}

// Remaining reports whole seconds left on the current turn, or -1 when
// the clock has not been started.
func (that *TurnClock) Remaining() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.running {
		return -1
	}

	remaining := time.Until(that.deadline)
	if remaining < 0 {
		return 0
	}

	return int(remaining / time.Second)
}

func (that *TurnClock) arm() {
	if that.timer != nil {
		that.timer.Stop()
	}

	that.deadline = time.Now().Add(that.duration)
	that.timer = time.AfterFunc(that.duration, that.expire)
}
