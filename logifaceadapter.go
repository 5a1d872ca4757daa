package strand

import (
	"github.com/joeycumines/logiface"
)

// strandEvent is the minimal logiface.Event this adapter needs: a level, a
// message and a flat set of fields. It embeds UnimplementedEvent as every
// logiface.Event implementation must (logiface.go's documented contract).
type strandEvent struct {
	logiface.UnimplementedEvent
	level   logiface.Level
	message string
	fields  []strandField
	err     error
}

type strandField struct {
	key string
	val any
}

func (e *strandEvent) Level() logiface.Level { return e.level }

func (e *strandEvent) AddField(key string, val any) {
	e.fields = append(e.fields, strandField{key, val})
}

func (e *strandEvent) AddMessage(msg string) bool {
	e.message = msg
	return true
}

func (e *strandEvent) AddError(err error) bool {
	e.err = err
	return true
}

func (e *strandEvent) reset() {
	e.level = logiface.LevelDisabled
	e.message = ""
	e.fields = e.fields[:0]
	e.err = nil
}

// strandEventWriter adapts a finished logiface event back into a Logger
// Entry and forwards it to the wrapped strand.Logger. Writer[E] is the
// integration point logiface gives backends (zerolog, stumpy, slog); this
// is that integration point pointed back at this package's own Logger
// interface instead of a third-party sink.
type strandEventWriter struct {
	target Logger
}

func (w strandEventWriter) Write(e *strandEvent) error {
	entry := Entry{
		Level:    fromLogifaceLevel(e.level),
		Category: "logiface",
		Message:  e.message,
		Err:      e.err,
	}
	for _, fld := range e.fields {
		switch fld.key {
		case "fiber_id":
			if id, ok := fld.val.(int64); ok {
				entry.FiberID = id
			}
		case "fd":
			switch fd := fld.val.(type) {
			case int:
				entry.FD = fd
			case int64:
				entry.FD = int(fd)
			}
		case "event":
			entry.Category = "logiface." + toString(fld.val)
		}
	}
	w.target.Log(entry)
	return nil
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func toLogifaceLevel(l Level) logiface.Level {
	switch l {
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

func fromLogifaceLevel(l logiface.Level) Level {
	switch l {
	case logiface.LevelDebug, logiface.LevelTrace:
		return LevelDebug
	case logiface.LevelWarning, logiface.LevelNotice:
		return LevelWarn
	case logiface.LevelError, logiface.LevelCritical, logiface.LevelAlert, logiface.LevelEmergency:
		return LevelError
	default:
		return LevelInfo
	}
}

// LogifaceLogger adapts a github.com/joeycumines/logiface.Logger to this
// package's Logger interface, so a caller who already wires logiface into
// their service gets structured fields (fiber_id, event, fd, err) for free
// instead of the built-in LineLogger (spec.md §6).
type LogifaceLogger struct {
	inner *logiface.Logger[*strandEvent]
}

// NewLogifaceLogger builds a Logger backed by logiface, emitting at level or
// above, and writing finished events into target via a Writer adapter.
func NewLogifaceLogger(target Logger, level Level) *LogifaceLogger {
	if target == nil {
		target = NewNoOpLogger()
	}
	factory := logiface.EventFactoryFunc[*strandEvent](func(lvl logiface.Level) *strandEvent {
		return &strandEvent{level: lvl}
	})
	inner := logiface.New[*strandEvent](
		logiface.WithEventFactory[*strandEvent](factory),
		logiface.WithWriter[*strandEvent](strandEventWriter{target: target}),
		logiface.WithLevel[*strandEvent](toLogifaceLevel(level)),
	)
	return &LogifaceLogger{inner: inner}
}

// Enabled implements Logger.
func (l *LogifaceLogger) Enabled(level Level) bool {
	return toLogifaceLevel(level) <= l.inner.Level()
}

// Log implements Logger, routing the entry through logiface's builder chain
// so downstream backends see structured fields rather than a flat string.
func (l *LogifaceLogger) Log(e Entry) {
	b := l.inner.Build(toLogifaceLevel(e.Level))
	if b == nil {
		return
	}
	if e.FiberID != 0 {
		b = b.Int64("fiber_id", e.FiberID)
	}
	if e.FD != 0 {
		b = b.Int64("fd", int64(e.FD))
	}
	if e.Category != "" {
		b = b.Str("event", e.Category)
	}
	if e.Err != nil {
		b = b.Err(e.Err)
	}
	b.Log(e.Message)
}
