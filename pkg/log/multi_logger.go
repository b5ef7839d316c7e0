package log

// MultiLogger sends events to multiple loggers.
// Useful when you want both console output (via SlogAdapter)
// and a capture file (via FileLogger) simultaneously.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a MultiLogger that sends events to all provided
// loggers. Nil loggers are skipped.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

// Log sends the event to all configured loggers.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}

// LevelFilter forwards only events at or above Min.
type LevelFilter struct {
	Min  Level
	Next Logger
}

// AtLeast wraps next so that events below min are dropped. Summary events
// always pass.
func AtLeast(min Level, next Logger) *LevelFilter {
	return &LevelFilter{Min: min, Next: next}
}

// Log forwards the event when it is severe enough.
func (f *LevelFilter) Log(event Event) {
	if event.Level < f.Min && event.Summary == nil {
		return
	}
	f.Next.Log(event)
}

// Compile-time interface satisfaction checks.
var (
	_ Logger = (*MultiLogger)(nil)
	_ Logger = (*LevelFilter)(nil)
)
