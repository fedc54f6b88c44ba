package writer

import (
	"bytes"
	"sync"
)

// LineWriter is an io.Writer that forwards each complete line to a Writer.
// Call Flush to emit a trailing partial line.
type LineWriter struct {
	mu  sync.Mutex
	w   Writer
	buf bytes.Buffer
}

// Lines returns a LineWriter over w.
func Lines(w Writer) *LineWriter {
	return &LineWriter{w: w}
}

func (l *LineWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf.Write(p)
	for {
		i := bytes.IndexByte(l.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := l.buf.Next(i + 1)
		l.w.WriteLine(string(bytes.TrimRight(line, "\r\n")))
	}
	return len(p), nil
}

// Flush writes any buffered partial line.
func (l *LineWriter) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.buf.Len() > 0 {
		l.w.WriteLine(l.buf.String())
		l.buf.Reset()
	}
}
