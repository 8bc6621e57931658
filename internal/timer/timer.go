// Package timer provides the countdown that bounds an exam attempt.
package timer

import (
	"sync"
	"time"
)

// ExamTimer fires a callback exactly once when the attempt's time allowance
// runs out. Stop is idempotent and safe to call after expiry.
type ExamTimer struct {
	mu       sync.Mutex
	timer    *time.Timer
	deadline time.Time
	fired    bool
	stopped  bool
}

// New starts a timer that calls onExpire after d. The callback runs on its
// own goroutine and fires at most once.
func New(d time.Duration, onExpire func()) *ExamTimer {
	t := &ExamTimer{deadline: time.Now().Add(d)}
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		if t.stopped || t.fired {
			t.mu.Unlock()
			return
		}
		t.fired = true
		t.mu.Unlock()
		onExpire()
	})
	return t
}

// Stop cancels the timer. It returns true if the timer was cancelled before
// firing, false if it had already fired or been stopped.
func (t *ExamTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.timer.Stop()
	return true
}

// Remaining reports the time left before expiry, clamped at zero.
func (t *ExamTimer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired {
		return 0
	}
	if r := time.Until(t.deadline); r > 0 {
		return r
	}
	return 0
}

// Deadline returns the instant at which the timer expires.
func (t *ExamTimer) Deadline() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deadline
}
