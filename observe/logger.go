package observe

import "sync"

// LogLevel mirrors logging.LogLevelSilent/.../LogLevelVerbose from the
// compiler this package's shape is borrowed from.
type LogLevel int

const (
	// LevelSilent prints nothing.
	LevelSilent LogLevel = iota
	// LevelSummary prints only the final per-kind event counts (Summary).
	LevelSummary
	// LevelVerbose prints every event as it is observed, plus the summary.
	LevelVerbose
)

// Logger is the default Sink: a mutex-guarded accumulator that renders each
// event through pterm styles keyed by Kind, the same synchronization shape
// as chai's logging.Logger (a single *sync.Mutex serializing handleMsg).
type Logger struct {
	Level LogLevel

	m       sync.Mutex
	events  []Event
	counted map[Kind]int
}

// NewLogger creates a Logger at the given level. Unlike chai's logging
// package, this is never a package-level singleton: chaiinline is a library
// that may back several concurrent inlining sessions, each with its own
// observation stream, so every *inline.Session owns its own *Logger instead
// of sharing one global.
func NewLogger(level LogLevel) *Logger {
	return &Logger{Level: level, counted: make(map[Kind]int)}
}

// Observe records ev and, at LevelVerbose, renders it immediately.
func (l *Logger) Observe(ev Event) {
	l.m.Lock()
	defer l.m.Unlock()

	l.events = append(l.events, ev)
	l.counted[ev.Kind]++

	if l.Level == LevelVerbose {
		display(ev)
	}
}

// Events returns every event recorded so far, in observation order.
func (l *Logger) Events() []Event {
	l.m.Lock()
	defer l.m.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Count returns how many events of the given kind have been recorded.
func (l *Logger) Count(k Kind) int {
	l.m.Lock()
	defer l.m.Unlock()
	return l.counted[k]
}

// Summary renders the accumulated counts by kind, honored at LevelSummary
// and above.
func (l *Logger) Summary() {
	l.m.Lock()
	defer l.m.Unlock()
	if l.Level == LevelSilent {
		return
	}
	displaySummary(l.counted)
}
