package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestExamTimer_Fires(t *testing.T) {
	var fired atomic.Int32
	done := make(chan struct{})
	New(10*time.Millisecond, func() {
		fired.Add(1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
	if got := fired.Load(); got != 1 {
		t.Errorf("fired %d times, want 1", got)
	}
}

func TestExamTimer_StopPreventsFiring(t *testing.T) {
	var fired atomic.Int32
	tm := New(30*time.Millisecond, func() { fired.Add(1) })

	if !tm.Stop() {
		t.Fatal("Stop returned false on a pending timer")
	}
	if tm.Stop() {
		t.Error("second Stop returned true")
	}

	time.Sleep(60 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("stopped timer fired %d times", got)
	}
	if r := tm.Remaining(); r != 0 {
		t.Errorf("Remaining after Stop = %v, want 0", r)
	}
}

func TestExamTimer_StopAfterFire(t *testing.T) {
	done := make(chan struct{})
	tm := New(5*time.Millisecond, func() { close(done) })
	<-done

	if tm.Stop() {
		t.Error("Stop after expiry returned true")
	}
	if r := tm.Remaining(); r != 0 {
		t.Errorf("Remaining after expiry = %v, want 0", r)
	}
}

func TestExamTimer_Remaining(t *testing.T) {
	tm := New(time.Minute, func() {})
	defer tm.Stop()

	r := tm.Remaining()
	if r <= 0 || r > time.Minute {
		t.Errorf("Remaining = %v, want (0, 1m]", r)
	}
	if tm.Deadline().Before(time.Now()) {
		t.Error("Deadline is in the past")
	}
}
