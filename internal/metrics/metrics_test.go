package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := Register(reg); err != nil {
		t.Fatalf("second register: %v", err)
	}
}

func TestHelpersAfterRegister(t *testing.T) {
	_ = Register(prometheus.NewRegistry())
	// Must not panic.
	IncSave("p")
	IncSaveFailure("p")
	IncToggle("p")
	SetParticipants("p", 2, 3)
	IncNotificationAttempt()
	IncNotification("success")
	IncNotification("failure")
	IncHistoryExportFailure("sqlite")
}
