package secrets

import (
	"encoding/base64"
	"io"
	"sort"
	"strings"
	"sync"
)

// Mask is the text that replaces a secret.
const Mask = "*******"

// Masker hides registered secret values.
type Masker interface {
	// Add registers a secret value.
	Add(value string)
	// Mask replaces every registered value in text.
	Mask(text string) string
}

// Generator derives an additional value to mask from a secret, for example
// its base64 encoding.
type Generator func(secret string) string

// Base64 is a Generator for the standard base64 encoding of a secret.
func Base64(secret string) string {
	return base64.StdEncoding.EncodeToString([]byte(secret))
}

// DefaultMasker is a concurrency-safe Masker.
type DefaultMasker struct {
	mu         sync.RWMutex
	values     map[string]struct{}
	generators []Generator
	replacer   *strings.Replacer
}

// NewMasker creates a masker that also masks the output of each generator.
func NewMasker(generators ...Generator) *DefaultMasker {
	return &DefaultMasker{
		values:     make(map[string]struct{}),
		generators: generators,
	}
}

// NewDefaultMasker creates a masker that also hides base64 variants.
func NewDefaultMasker() *DefaultMasker {
	return NewMasker(Base64)
}

// Add registers value and its generated variants. Blank values are ignored.
func (m *DefaultMasker) Add(value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[value] = struct{}{}
	for _, gen := range m.generators {
		if v := gen(value); strings.TrimSpace(v) != "" {
			m.values[v] = struct{}{}
		}
	}
	m.replacer = nil
}

// Len returns the number of masked values including generated variants.
func (m *DefaultMasker) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

// Mask replaces registered values in text. Longer values are replaced first
// so a secret that contains another is hidden entirely.
func (m *DefaultMasker) Mask(text string) string {
	m.mu.RLock()
	r := m.replacer
	empty := len(m.values) == 0
	m.mu.RUnlock()
	if empty {
		return text
	}
	if r == nil {
		r = m.build()
	}
	return r.Replace(text)
}

func (m *DefaultMasker) build() *strings.Replacer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replacer != nil {
		return m.replacer
	}
	values := make([]string, 0, len(m.values))
	for v := range m.values {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		if len(values[i]) != len(values[j]) {
			return len(values[i]) > len(values[j])
		}
		return values[i] < values[j]
	})
	pairs := make([]string, 0, len(values)*2)
	for _, v := range values {
		pairs = append(pairs, v, Mask)
	}
	m.replacer = strings.NewReplacer(pairs...)
	return m.replacer
}

// Writer masks secrets in everything written to the underlying writer.
// Each Write call is masked independently; callers writing whole lines
// (loggers, line-buffered command output) never split a secret.
type Writer struct {
	out    io.Writer
	masker Masker
}

// NewWriter wraps out so that writes pass through masker.
func NewWriter(out io.Writer, masker Masker) *Writer {
	return &Writer{out: out, masker: masker}
}

// Write masks p and writes it. It reports len(p) on success so callers are
// not confused by a masked value changing the length.
func (w *Writer) Write(p []byte) (int, error) {
	masked := w.masker.Mask(string(p))
	if _, err := io.WriteString(w.out, masked); err != nil {
		return 0, err
	}
	return len(p), nil
}
