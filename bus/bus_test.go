package bus

import (
	"errors"
	"testing"
)

type ping struct{ n int }

func (ping) Kind() string { return "ping" }

func TestBus_SendOrder(t *testing.T) {
	b := New()
	var order []string
	b.AddListener(SinkFunc(func(Message) { order = append(order, "first") }))
	b.AddListener(SinkFunc(func(Message) { order = append(order, "second") }))

	b.Send(ping{1})

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestBus_RemoveListener(t *testing.T) {
	b := New()
	count := 0
	id := b.AddListener(SinkFunc(func(Message) { count++ }))
	b.Send(ping{1})
	b.RemoveListener(id)
	b.RemoveListener(id)
	b.Send(ping{2})

	if count != 1 {
		t.Fatalf("expected 1 delivery, got %d", count)
	}
}

func TestBus_ListenerMayRemoveItself(t *testing.T) {
	b := New()
	var id ListenerID
	calls := 0
	id = b.AddListener(SinkFunc(func(Message) {
		calls++
		b.RemoveListener(id)
	}))
	b.Send(ping{1})
	b.Send(ping{2})
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestBus_LogHelpers(t *testing.T) {
	b := New()
	var got []LogMessage
	b.AddListener(SinkFunc(func(m Message) {
		if lm, ok := m.(LogMessage); ok {
			got = append(got, lm)
		}
	}))

	b.Info("hello %s", "world")
	b.Error(errors.New("bad"), "")
	b.Trace("t")

	if len(got) != 3 {
		t.Fatalf("expected 3 log messages, got %d", len(got))
	}
	if got[0].Message != "hello world" || got[0].Level != LevelInfo {
		t.Errorf("unexpected info message %+v", got[0])
	}
	if got[1].Message != "bad" || got[1].Level != LevelError {
		t.Errorf("error message should default to err text, got %+v", got[1])
	}
	if got[2].Level.String() != "trace" {
		t.Errorf("unexpected level %s", got[2].Level)
	}
}
