package logloader

import "github.com/rs/zerolog"

// Logger is a compiled, registered logger or a view onto one. Views created
// by Child, With or Hook share the parent's destinations, formatting and
// level; they only differ in the fields stamped onto each record.
type Logger interface {
	// Log starts a record at any severity of the logger's level table.
	// Unknown or disabled severities yield a no-op event.
	Log(level string) LogEvent

	TraceWith() LogEvent
	DebugWith() LogEvent
	InfoWith() LogEvent
	WarnWith() LogEvent
	ErrorWith() LogEvent
	// FatalWith writes the record and then exits the process when the
	// specification's exitOnError is true.
	FatalWith() LogEvent

	// With creates a context logger with pre-populated fields.
	// Example: reqLogger := logger.With().Str("request_id", id).Logger()
	With() LogContext
	// Child returns a view that tags every record with the category field.
	Child(category string) Logger
	Hook(hooks ...zerolog.Hook) Logger

	Enabled(level string) bool
	Name() string
	Category() string
	Dump(v interface{})
}
