package logloader

import (
	"time"

	"github.com/rs/zerolog"
)

// LogEvent provides a fluent interface for adding typed fields to a record.
// It wraps zerolog.Event; a LogEvent for a disabled record is a no-op.
type LogEvent interface {
	Str(key, val string) LogEvent
	Strs(key string, vals []string) LogEvent
	Int(key string, val int) LogEvent
	Int64(key string, val int64) LogEvent
	Uint64(key string, val uint64) LogEvent
	Float64(key string, val float64) LogEvent
	Bool(key string, val bool) LogEvent
	Time(key string, val time.Time) LogEvent
	Dur(key string, val time.Duration) LogEvent
	Err(err error) LogEvent
	AnErr(key string, err error) LogEvent
	Interface(key string, val interface{}) LogEvent
	Fields(fields map[string]interface{}) LogEvent
	Dict(key string, dict func(LogEvent)) LogEvent
	Enabled() bool
	Msg(msg string)
	Msgf(format string, v ...interface{})
	Send()
}

// LogContext builds a context logger whose fields are stamped onto every
// record it writes.
type LogContext interface {
	Str(key, val string) LogContext
	Int(key string, val int) LogContext
	Bool(key string, val bool) LogContext
	Err(err error) LogContext
	Interface(key string, val interface{}) LogContext
	Logger() Logger
}

type logEvent struct {
	event *zerolog.Event
	// self is returned from chained calls so a tracked event stays tracked.
	self LogEvent
}

func newLogEvent(e *zerolog.Event) LogEvent {
	return &logEvent{event: e}
}

func (e *logEvent) with(fn func(ev *zerolog.Event)) LogEvent {
	if e.event != nil {
		fn(e.event)
	}
	if e.self != nil {
		return e.self
	}
	return e
}

func (e *logEvent) Str(key, val string) LogEvent {
	return e.with(func(ev *zerolog.Event) { ev.Str(key, val) })
}

func (e *logEvent) Strs(key string, vals []string) LogEvent {
	return e.with(func(ev *zerolog.Event) { ev.Strs(key, vals) })
}

func (e *logEvent) Int(key string, val int) LogEvent {
	return e.with(func(ev *zerolog.Event) { ev.Int(key, val) })
}

func (e *logEvent) Int64(key string, val int64) LogEvent {
	return e.with(func(ev *zerolog.Event) { ev.Int64(key, val) })
}

func (e *logEvent) Uint64(key string, val uint64) LogEvent {
	return e.with(func(ev *zerolog.Event) { ev.Uint64(key, val) })
}

func (e *logEvent) Float64(key string, val float64) LogEvent {
	return e.with(func(ev *zerolog.Event) { ev.Float64(key, val) })
}

func (e *logEvent) Bool(key string, val bool) LogEvent {
	return e.with(func(ev *zerolog.Event) { ev.Bool(key, val) })
}

func (e *logEvent) Time(key string, val time.Time) LogEvent {
	return e.with(func(ev *zerolog.Event) { ev.Time(key, val) })
}

func (e *logEvent) Dur(key string, val time.Duration) LogEvent {
	return e.with(func(ev *zerolog.Event) { ev.Dur(key, val) })
}

func (e *logEvent) Interface(key string, val interface{}) LogEvent {
	return e.with(func(ev *zerolog.Event) { ev.Interface(key, val) })
}

func (e *logEvent) Fields(fields map[string]interface{}) LogEvent {
	return e.with(func(ev *zerolog.Event) { ev.Fields(fields) })
}

// Err adds the error plus its history: the chain from outermost to root,
// the root message, the joined chain and the operations chain.
func (e *logEvent) Err(err error) LogEvent {
	return e.with(func(ev *zerolog.Event) {
		ev.Err(err)
		addErrorChain(ev, "error", err)
	})
}

func (e *logEvent) AnErr(key string, err error) LogEvent {
	return e.with(func(ev *zerolog.Event) {
		ev.AnErr(key, err)
		addErrorChain(ev, key, err)
	})
}

func (e *logEvent) Dict(key string, dict func(LogEvent)) LogEvent {
	return e.with(func(ev *zerolog.Event) {
		d := zerolog.Dict()
		dict(newLogEvent(d))
		ev.Dict(key, d)
	})
}

func (e *logEvent) Enabled() bool {
	return e.event != nil && e.event.Enabled()
}

func (e *logEvent) Msg(msg string) {
	if e.event != nil {
		e.event.Msg(msg)
	}
}

func (e *logEvent) Msgf(format string, v ...interface{}) {
	if e.event != nil {
		e.event.Msgf(format, v...)
	}
}

func (e *logEvent) Send() {
	if e.event != nil {
		e.event.Send()
	}
}

// trackedLogEvent releases its in-flight slot on the core once the record
// is written, then runs after (used by fatal records).
type trackedLogEvent struct {
	logEvent
	core  *core
	after func()
}

func newTrackedLogEvent(e *zerolog.Event, c *core, after func()) LogEvent {
	if e == nil || c == nil {
		return newLogEvent(nil)
	}
	t := &trackedLogEvent{logEvent: logEvent{event: e}, core: c, after: after}
	t.self = t
	return t
}

func (e *trackedLogEvent) finish() {
	e.core.activeOps.Dec()
	e.core.wg.Done()
	if e.after != nil {
		e.after()
	}
}

func (e *trackedLogEvent) Msg(msg string) {
	defer e.finish()
	e.logEvent.Msg(msg)
}

func (e *trackedLogEvent) Msgf(format string, v ...interface{}) {
	defer e.finish()
	e.logEvent.Msgf(format, v...)
}

func (e *trackedLogEvent) Send() {
	defer e.finish()
	e.logEvent.Send()
}

type logContext struct {
	context zerolog.Context
	parent  *logger
}

func (c *logContext) Str(key, val string) LogContext {
	c.context = c.context.Str(key, val)
	return c
}

func (c *logContext) Int(key string, val int) LogContext {
	c.context = c.context.Int(key, val)
	return c
}

func (c *logContext) Bool(key string, val bool) LogContext {
	c.context = c.context.Bool(key, val)
	return c
}

func (c *logContext) Err(err error) LogContext {
	c.context = c.context.Err(err)
	return c
}

func (c *logContext) Interface(key string, val interface{}) LogContext {
	c.context = c.context.Interface(key, val)
	return c
}

func (c *logContext) Logger() Logger {
	return c.parent.derive(c.context.Logger(), c.parent.category)
}

type noopLogContext struct{}

func (n noopLogContext) Str(string, string) LogContext            { return n }
func (n noopLogContext) Int(string, int) LogContext               { return n }
func (n noopLogContext) Bool(string, bool) LogContext             { return n }
func (n noopLogContext) Err(error) LogContext                     { return n }
func (n noopLogContext) Interface(string, interface{}) LogContext { return n }
func (n noopLogContext) Logger() Logger                           { return &logger{} }
