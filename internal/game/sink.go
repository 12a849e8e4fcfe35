package game

import (
	"sync"

	"github.com/rs/zerolog"
)

// Sink receives events in the order they were committed.
type Sink interface {
	Emit(e Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(e Event)

// Emit calls f(e).
func (f SinkFunc) Emit(e Event) {
	f(e)
}

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Recorder keeps every event in memory. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Emit appends e.
func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType returns the recorded events of type t.
func (r *Recorder) OfType(t EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Reset discards the recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// MultiSink fans every event out to each of its sinks.
type MultiSink []Sink

// Emit forwards e to every non-nil sink.
func (m MultiSink) Emit(e Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(e)
		}
	}
}

// LogSink writes events to a zerolog logger at debug level.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a sink that logs through logger.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Emit logs e with its non-zero fields. Faces of private events are not
// logged.
func (s *LogSink) Emit(e Event) {
	ev := s.logger.Debug().
		Int("seq", e.Seq).
		Str("type", string(e.Type))
	if e.Player != 0 {
		ev = ev.Int64("player", int64(e.Player))
	}
	if e.Target != 0 {
		ev = ev.Int64("target", int64(e.Target))
	}
	if e.Action != "" {
		ev = ev.Str("action", string(e.Action))
	}
	if e.Face != "" && !e.Private {
		ev = ev.Str("face", string(e.Face))
	}
	if len(e.Faces) > 0 && !e.Private {
		faces := make([]string, len(e.Faces))
		for i, f := range e.Faces {
			faces[i] = string(f)
		}
		ev = ev.Strs("faces", faces)
	}
	if e.Count != 0 {
		ev = ev.Int("count", e.Count)
	}
	if e.Tokens != 0 {
		ev = ev.Int("tokens", e.Tokens)
	}
	if e.Phase != "" {
		ev = ev.Str("phase", string(e.Phase))
	}
	ev.Msg("Table event")
}
