package testutil

import (
	"testing"

	"github.com/kbukum/rex/bus"
	"github.com/kbukum/rex/ci"
)

type ping struct{}

func (ping) Kind() string { return "ping" }

func TestHarness_RecordsBusAndVars(t *testing.T) {
	h := T(t)

	h.Ctx.Bus.Send(ping{})
	h.Ctx.Bus.Info("hello")
	if got := h.Sink.Kinds(); len(got) != 1 || got[0] != "ping" {
		t.Errorf("kinds = %v", got)
	}
	if h.Sink.Count(bus.KindLog) != 1 {
		t.Errorf("expected one log message")
	}

	h.Must(h.Ctx.Vars.SetVar("TOKEN", "v", ci.VarOptions{Secret: true}))
	if got := h.Vars.Secrets(); len(got) != 1 || got[0] != "TOKEN" {
		t.Errorf("secrets = %v", got)
	}
}

func TestRecordingMasker(t *testing.T) {
	m := NewRecordingMasker()
	m.Add("abc123")
	m.Add("abc123")

	if m.Adds("abc123") != 2 {
		t.Errorf("adds = %d", m.Adds("abc123"))
	}
	if got := m.Mask("token abc123"); got == "token abc123" {
		t.Error("value not masked")
	}
}
