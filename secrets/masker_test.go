package secrets

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestMasker_MasksValues(t *testing.T) {
	m := NewMasker()
	m.Add("hunter2")

	got := m.Mask("password is hunter2, really hunter2")
	if strings.Contains(got, "hunter2") {
		t.Fatalf("secret leaked: %q", got)
	}
	if strings.Count(got, Mask) != 2 {
		t.Errorf("expected two masks, got %q", got)
	}
}

func TestMasker_Base64Variant(t *testing.T) {
	m := NewDefaultMasker()
	m.Add("s3cr3t")

	encoded := Base64("s3cr3t")
	if got := m.Mask("token " + encoded); strings.Contains(got, encoded) {
		t.Fatalf("base64 variant leaked: %q", got)
	}
	if m.Len() != 2 {
		t.Errorf("expected value and variant, got %d", m.Len())
	}
}

func TestMasker_LongestFirst(t *testing.T) {
	m := NewMasker()
	m.Add("abc")
	m.Add("abcdef")

	if got := m.Mask("abcdef"); got != Mask {
		t.Errorf("expected a single mask, got %q", got)
	}
}

func TestMasker_IgnoresBlank(t *testing.T) {
	m := NewMasker()
	m.Add("")
	m.Add("   ")
	if m.Len() != 0 {
		t.Fatalf("blank values should be ignored, got %d", m.Len())
	}
	if got := m.Mask("plain text"); got != "plain text" {
		t.Errorf("unexpected change %q", got)
	}
}

func TestMasker_AddAfterMask(t *testing.T) {
	m := NewMasker()
	m.Add("one")
	_ = m.Mask("one")
	m.Add("two")
	if got := m.Mask("one two"); got != Mask+" "+Mask {
		t.Errorf("replacer not rebuilt: %q", got)
	}
}

func TestMasker_Concurrent(t *testing.T) {
	m := NewDefaultMasker()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.Add("value")
		}()
		go func() {
			defer wg.Done()
			_ = m.Mask("value")
		}()
	}
	wg.Wait()
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	m := NewMasker()
	m.Add("token-123")
	w := NewWriter(&buf, m)

	in := []byte("auth token-123\n")
	n, err := w.Write(in)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(in) {
		t.Errorf("n = %d, want %d", n, len(in))
	}
	if buf.String() != "auth "+Mask+"\n" {
		t.Errorf("got %q", buf.String())
	}
}
