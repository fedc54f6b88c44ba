package testutil

import (
	"sync"

	"github.com/kbukum/rex/bus"
	"github.com/kbukum/rex/ci"
	"github.com/kbukum/rex/secrets"
)

// RecordingSink is a bus sink that keeps every message it receives.
type RecordingSink struct {
	mu       sync.Mutex
	messages []bus.Message
}

func (s *RecordingSink) Receive(msg bus.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// Messages returns a copy of the received messages.
func (s *RecordingSink) Messages() []bus.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]bus.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Kinds returns the kinds of the received messages, skipping log messages.
func (s *RecordingSink) Kinds() []string {
	var kinds []string
	for _, m := range s.Messages() {
		if m.Kind() != bus.KindLog {
			kinds = append(kinds, m.Kind())
		}
	}
	return kinds
}

// Count returns how many messages of kind were received.
func (s *RecordingSink) Count(kind string) int {
	n := 0
	for _, m := range s.Messages() {
		if m.Kind() == kind {
			n++
		}
	}
	return n
}

// SetVarCall is one recorded ci.VarSetter call.
type SetVarCall struct {
	Name  string
	Value string
	Opts  ci.VarOptions
}

// RecordingVarSetter is a ci.VarSetter that records its calls.
type RecordingVarSetter struct {
	mu    sync.Mutex
	Calls []SetVarCall
}

func (r *RecordingVarSetter) SetVar(name, value string, opts ci.VarOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, SetVarCall{Name: name, Value: value, Opts: opts})
	return nil
}

// Secrets returns the names published as secrets.
func (r *RecordingVarSetter) Secrets() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for _, c := range r.Calls {
		if c.Opts.Secret {
			names = append(names, c.Name)
		}
	}
	return names
}

// RecordingMasker wraps a real masker and records every added value.
type RecordingMasker struct {
	secrets.Masker

	mu    sync.Mutex
	Added []string
}

// NewRecordingMasker wraps the default masker.
func NewRecordingMasker() *RecordingMasker {
	return &RecordingMasker{Masker: secrets.NewDefaultMasker()}
}

func (m *RecordingMasker) Add(value string) {
	m.mu.Lock()
	m.Added = append(m.Added, value)
	m.mu.Unlock()
	m.Masker.Add(value)
}

// Adds returns how many times value was added.
func (m *RecordingMasker) Adds(value string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, v := range m.Added {
		if v == value {
			n++
		}
	}
	return n
}
