package integrity

import (
	"testing"

	"github.com/google/uuid"
)

func TestChannelMonitor_ReportRequiresActive(t *testing.T) {
	m := NewChannelMonitor()

	if m.Report(Violation{Payload: "tab_switch"}) {
		t.Error("report accepted before StartMonitoring")
	}

	m.StartMonitoring()
	m.StartMonitoring() // idempotent
	if !m.Report(Violation{AttemptID: uuid.New(), Payload: "tab_switch"}) {
		t.Fatal("report dropped while monitoring active")
	}

	v := <-m.Violations()
	if v.Payload != "tab_switch" {
		t.Errorf("payload = %q", v.Payload)
	}
	if v.ReportedAt.IsZero() {
		t.Error("ReportedAt not stamped")
	}

	m.StopMonitoring()
	m.StopMonitoring()
	if m.Report(Violation{Payload: "blur"}) {
		t.Error("report accepted after StopMonitoring")
	}
}

func TestChannelMonitor_EnforcedModeToggles(t *testing.T) {
	m := NewChannelMonitor()

	if m.Enforced() {
		t.Fatal("enforced before EnterEnforcedMode")
	}
	m.EnterEnforcedMode()
	m.EnterEnforcedMode()
	if !m.Enforced() {
		t.Fatal("not enforced after EnterEnforcedMode")
	}
	m.ExitEnforcedMode()
	m.ExitEnforcedMode()
	if m.Enforced() {
		t.Fatal("still enforced after ExitEnforcedMode")
	}
}

func TestChannelMonitor_DropsWhenBufferFull(t *testing.T) {
	m := NewChannelMonitor()
	m.StartMonitoring()

	accepted := 0
	for i := 0; i < 200; i++ {
		if m.Report(Violation{Payload: "spam"}) {
			accepted++
		}
	}
	if accepted == 0 || accepted >= 200 {
		t.Errorf("accepted = %d, want bounded by the channel buffer", accepted)
	}
}

func TestChannelMonitor_Close(t *testing.T) {
	m := NewChannelMonitor()
	m.StartMonitoring()
	m.Close()
	m.Close() // idempotent

	if m.Report(Violation{Payload: "late"}) {
		t.Error("report accepted after Close")
	}
	if _, ok := <-m.Violations(); ok {
		t.Error("channel not closed")
	}
}
