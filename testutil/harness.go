package testutil

import (
	"bytes"
	"sync"
	"testing"

	"github.com/kbukum/rex/execution"
	"github.com/kbukum/rex/logger"
	"github.com/kbukum/rex/writer"
)

// Harness is a root execution context wired to recording fakes.
type Harness struct {
	t *testing.T

	Ctx    *execution.Context
	Sink   *RecordingSink
	Vars   *RecordingVarSetter
	Masker *RecordingMasker
	Output *Buffer
}

// T creates a harness for t. Its services are closed when the test ends.
func T(t *testing.T) *Harness {
	t.Helper()
	h := &Harness{
		t:      t,
		Ctx:    execution.NewContext(),
		Sink:   &RecordingSink{},
		Vars:   &RecordingVarSetter{},
		Masker: NewRecordingMasker(),
		Output: &Buffer{},
	}
	h.Ctx.Cwd = t.TempDir()
	h.Ctx.Vars = h.Vars
	h.Ctx.Bus.AddListener(h.Sink)
	h.Ctx.Writer = writer.New(writer.Options{
		Log:     logger.Config{Level: "debug", Format: "console"},
		Out:     h.Output,
		Masker:  h.Masker,
		NoColor: true,
	})
	t.Cleanup(func() {
		if err := h.Ctx.Services.Close(); err != nil {
			t.Errorf("closing services: %v", err)
		}
	})
	return h
}

// Must fails the test when err is not nil.
func (h *Harness) Must(err error) {
	h.t.Helper()
	if err != nil {
		h.t.Fatalf("unexpected error: %v", err)
	}
}

// Buffer is a bytes.Buffer safe for concurrent writes.
type Buffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
