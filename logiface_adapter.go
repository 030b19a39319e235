package chanselect

import "github.com/joeycumines/logiface"

// NewLogifaceLogger adapts a *logiface.Logger[E] so a Driver can emit its
// phase-transition diagnostics through it, for callers already standardised
// on the logiface structured logging facade (used throughout the
// go-utilpkg pack, e.g. by the eventloop this package is grounded on).
func NewLogifaceLogger[E logiface.Event](l *logiface.Logger[E]) Logger {
	return &logifaceLogger[E]{l: l}
}

type logifaceLogger[E logiface.Event] struct {
	l *logiface.Logger[E]
}

func (a *logifaceLogger[E]) IsEnabled(level LogLevel) bool {
	if a.l == nil {
		return false
	}
	lvl := toLogifaceLevel(level)
	return lvl.Enabled() && lvl <= a.l.Level()
}

func (a *logifaceLogger[E]) Log(entry LogEntry) {
	if a.l == nil {
		return
	}
	b := a.l.Build(toLogifaceLevel(entry.Level))
	if b == nil {
		return
	}
	b = b.Str("category", entry.Category)
	if entry.SelectionID != 0 {
		b = b.Int64("selection", entry.SelectionID)
	}
	if entry.Phase != "" {
		b = b.Str("phase", entry.Phase)
	}
	if entry.CaseID != "" {
		b = b.Str("case", entry.CaseID)
	}
	for k, v := range entry.Context {
		b = b.Any(k, v)
	}
	if entry.Err != nil {
		b = b.Err(entry.Err)
	}
	b.Log(entry.Message)
}

func toLogifaceLevel(level LogLevel) logiface.Level {
	switch level {
	case LevelDebug:
		return logiface.LevelDebug
	case LevelInfo:
		return logiface.LevelInformational
	case LevelWarn:
		return logiface.LevelWarning
	case LevelError:
		return logiface.LevelError
	default:
		return logiface.LevelInformational
	}
}
