package bus

import (
	"fmt"
	"sync"
	"time"
)

// Message is anything sent on the bus.
type Message interface {
	// Kind identifies the message type, e.g. "task:started".
	Kind() string
}

// Sink receives messages.
type Sink interface {
	Receive(msg Message)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(msg Message)

// Receive calls f(msg).
func (f SinkFunc) Receive(msg Message) { f(msg) }

// ListenerID identifies a registered sink.
type ListenerID uint64

// Bus fans messages out to listeners.
type Bus interface {
	AddListener(sink Sink) ListenerID
	RemoveListener(id ListenerID)
	Send(msg Message)

	Error(err error, msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
	Trace(msg string, args ...any)
}

type listener struct {
	id   ListenerID
	sink Sink
}

// DefaultBus is a synchronous Bus safe for concurrent use.
type DefaultBus struct {
	mu        sync.RWMutex
	next      ListenerID
	listeners []listener
}

// New creates an empty bus.
func New() *DefaultBus {
	return &DefaultBus{}
}

// AddListener registers sink and returns its id.
func (b *DefaultBus) AddListener(sink Sink) ListenerID {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.listeners = append(b.listeners, listener{id: b.next, sink: sink})
	return b.next
}

// RemoveListener unregisters the sink with the given id. Unknown ids are ignored.
func (b *DefaultBus) RemoveListener(id ListenerID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, l := range b.listeners {
		if l.id == id {
			b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Send delivers msg to every listener in registration order.
func (b *DefaultBus) Send(msg Message) {
	b.mu.RLock()
	listeners := make([]listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, l := range listeners {
		l.sink.Receive(msg)
	}
}

func (b *DefaultBus) Error(err error, msg string, args ...any) {
	b.Send(newLog(LevelError, err, msg, args))
}

func (b *DefaultBus) Warn(msg string, args ...any) {
	b.Send(newLog(LevelWarn, nil, msg, args))
}

func (b *DefaultBus) Info(msg string, args ...any) {
	b.Send(newLog(LevelInfo, nil, msg, args))
}

func (b *DefaultBus) Debug(msg string, args ...any) {
	b.Send(newLog(LevelDebug, nil, msg, args))
}

func (b *DefaultBus) Trace(msg string, args ...any) {
	b.Send(newLog(LevelTrace, nil, msg, args))
}

// Level is the severity of a LogMessage.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// KindLog is the Kind of LogMessage.
const KindLog = "log"

// LogMessage is a leveled log line sent on the bus.
type LogMessage struct {
	Level     Level
	Err       error
	Message   string
	Timestamp time.Time
}

// Kind implements Message.
func (LogMessage) Kind() string { return KindLog }

func newLog(level Level, err error, msg string, args []any) LogMessage {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	if msg == "" && err != nil {
		msg = err.Error()
	}
	return LogMessage{Level: level, Err: err, Message: msg, Timestamp: time.Now()}
}
