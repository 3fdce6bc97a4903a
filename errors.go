package logloader

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by this package wraps exactly one of
// them, so callers can branch with errors.Is.
var (
	ErrConfigLoad              = errors.New("config load failed")
	ErrConfigShape             = errors.New("config shape invalid")
	ErrUnknownFormat           = errors.New("unknown format")
	ErrInvalidFormatOptions    = errors.New("invalid format options")
	ErrUnknownTransport        = errors.New("unknown transport")
	ErrInvalidTransportOptions = errors.New("invalid transport options")
	ErrTemplateResolution      = errors.New("printf template resolution failed")
	ErrNotConfigured           = errors.New("logger not configured")
)

// ConfigError describes a single failure while loading or compiling a
// specification. Name is the offending path, format, transport or template
// name. Index is the position of the offending transport or format step, or
// -1 when the failure is not tied to a sequence element.
type ConfigError struct {
	Kind  error
	Name  string
	Index int
	Err   error
}

func newConfigError(kind error, name string, index int, cause error) *ConfigError {
	return &ConfigError{Kind: kind, Name: name, Index: index, Err: cause}
}

func (e *ConfigError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	if e.Index >= 0 {
		fmt.Fprintf(&sb, " [%d]", e.Index)
	}
	if e.Name != emptyString {
		fmt.Fprintf(&sb, " %q", e.Name)
	}
	if e.Err != nil {
		chain, _, _, _ := buildErrorChain(e.Err)
		sb.WriteString(": ")
		sb.WriteString(joinChain(chain))
	}
	return sb.String()
}

// Unwrap exposes both the kind and the underlying cause.
func (e *ConfigError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
