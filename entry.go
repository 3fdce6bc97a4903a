package logloader

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Entry is one decoded log record as it moves through a format pipeline.
// Fields holds every key of the record including the level and message.
// Output holds the rendered line once a finalizing format has run; when it
// is still nil at write time the record is rendered as a JSON line.
type Entry struct {
	Fields map[string]any
	Output []byte

	// severity is the level as the record was emitted, before any format
	// rewrote the level field.
	severity string
}

// NewEntry returns an entry with the given level and message.
func NewEntry(level, message string) *Entry {
	return &Entry{Fields: map[string]any{
		zerolog.LevelFieldName:   level,
		zerolog.MessageFieldName: message,
	}, severity: level}
}

func decodeEntry(p []byte) (*Entry, error) {
	fields := make(map[string]any)
	dec := json.NewDecoder(bytes.NewReader(p))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	e := &Entry{Fields: fields}
	e.severity = e.Level()
	return e, nil
}

// Level returns the record's severity name.
func (e *Entry) Level() string {
	return e.str(zerolog.LevelFieldName)
}

// Severity returns the level the record was emitted at. Unlike Level it is
// not affected by formats that rewrite the level field.
func (e *Entry) Severity() string {
	if e.severity == emptyString {
		return e.Level()
	}
	return e.severity
}

// SetLevel replaces the record's severity name.
func (e *Entry) SetLevel(level string) {
	e.Fields[zerolog.LevelFieldName] = level
}

// Message returns the record's message.
func (e *Entry) Message() string {
	return e.str(zerolog.MessageFieldName)
}

// SetMessage replaces the record's message.
func (e *Entry) SetMessage(msg string) {
	e.Fields[zerolog.MessageFieldName] = msg
}

// Get returns a field value.
func (e *Entry) Get(key string) (any, bool) {
	v, ok := e.Fields[key]
	return v, ok
}

// Set sets a field value.
func (e *Entry) Set(key string, val any) {
	e.Fields[key] = val
}

func (e *Entry) str(key string) string {
	v, ok := e.Fields[key]
	if !ok || v == nil {
		return emptyString
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Clone returns a copy whose top-level fields may be changed independently.
func (e *Entry) Clone() *Entry {
	fields := make(map[string]any, len(e.Fields))
	for k, v := range e.Fields {
		fields[k] = v
	}
	var out []byte
	if e.Output != nil {
		out = append([]byte(nil), e.Output...)
	}
	return &Entry{Fields: fields, Output: out, severity: e.severity}
}

// Render returns the bytes to write for this entry, always newline terminated.
func (e *Entry) Render() ([]byte, error) {
	out := e.Output
	if out == nil {
		b, err := json.Marshal(e.Fields)
		if err != nil {
			return nil, err
		}
		out = b
	}
	if len(out) == 0 || out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return out, nil
}
