// Package logging provides the pluggable log sinks used by the delegation
// engine. The engine only ever sees a Sink; callers decide where lines go.
package logging

import "sync"

// Sink accepts human-readable event lines.
type Sink interface {
	Log(format string, args ...interface{})
}

// Nop returns a sink that discards everything.
func Nop() Sink {
	return nopSink{}
}

type nopSink struct{}

func (nopSink) Log(string, ...interface{}) {}

// Multi fans each line out to every non-nil sink.
func Multi(sinks ...Sink) Sink {
	out := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return multiSink(out)
}

type multiSink []Sink

func (m multiSink) Log(format string, args ...interface{}) {
	for _, s := range m {
		s.Log(format, args...)
	}
}

// Recorder keeps every formatted line in memory. Useful in tests.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

// Log records the formatted line.
func (r *Recorder) Log(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, sprintf(format, args...))
}

// Lines returns a copy of the recorded lines.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}
