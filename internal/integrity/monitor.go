// Package integrity carries violation reports from the proctoring surface
// into an exam session. What counts as a violation is the reporter's call;
// this package only delivers and records the events.
package integrity

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Violation is one integrity report against a running attempt.
type Violation struct {
	AttemptID  uuid.UUID `json:"attempt_id"`
	StudentID  int       `json:"student_id"`
	ExamID     uuid.UUID `json:"exam_id"`
	Payload    string    `json:"payload"`
	ReportedAt time.Time `json:"reported_at"`
}

// ChannelMonitor forwards violation reports to a consumer channel while
// monitoring is active. Reports received while monitoring is stopped are
// dropped. Start, Stop and the enforced-mode toggles are idempotent.
type ChannelMonitor struct {
	mu       sync.Mutex
	out      chan Violation
	active   bool
	enforced bool
	closed   bool
}

// NewChannelMonitor builds a monitor with a buffered delivery channel.
func NewChannelMonitor() *ChannelMonitor {
	return &ChannelMonitor{out: make(chan Violation, 64)}
}

// Violations is the delivery channel consumed by the session loop.
func (m *ChannelMonitor) Violations() <-chan Violation {
	return m.out
}

// StartMonitoring enables delivery. Calling it on an active monitor is a
// no-op.
func (m *ChannelMonitor) StartMonitoring() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.active = true
}

// StopMonitoring disables delivery. Safe to call repeatedly.
func (m *ChannelMonitor) StopMonitoring() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = false
}

// EnterEnforcedMode raises the strict proctoring flag. Idempotent.
func (m *ChannelMonitor) EnterEnforcedMode() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enforced = true
}

// ExitEnforcedMode lowers the strict proctoring flag. Idempotent.
func (m *ChannelMonitor) ExitEnforcedMode() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enforced = false
}

// Enforced reports whether strict proctoring is currently on.
func (m *ChannelMonitor) Enforced() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enforced
}

// Report delivers a violation to the consumer. It returns false when the
// report was dropped: monitoring off, monitor closed, or the consumer not
// keeping up.
func (m *ChannelMonitor) Report(v Violation) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active || m.closed {
		return false
	}
	if v.ReportedAt.IsZero() {
		v.ReportedAt = time.Now()
	}
	select {
	case m.out <- v:
		return true
	default:
		return false
	}
}

// Close stops monitoring and closes the delivery channel. Safe to call once
// the consuming session has finished.
func (m *ChannelMonitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.active = false
	close(m.out)
}
