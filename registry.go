package logloader

import (
	"sort"
	"sync"

	"github.com/Station-Manager/errors"
	"go.uber.org/multierr"
)

// Registry holds named loggers and the colour table formats consult. It is
// safe for concurrent use, although the order in which specifications are
// compiled into it is the caller's concern.
type Registry struct {
	mu      sync.RWMutex
	loggers map[string]*registered
	colors  map[string]string
}

type registered struct {
	logger  *logger
	options *CompiledOptions
}

// NewRegistry returns an empty registry with the default colour table.
func NewRegistry() *Registry {
	return &Registry{
		loggers: make(map[string]*registered),
		colors:  defaultColors(),
	}
}

// Register builds a logger from opts and stores it under opts.Name. An
// existing registration with the same name is replaced and closed.
func (r *Registry) Register(opts *CompiledOptions) Logger {
	l := newLogger(newCore(opts))

	r.mu.Lock()
	prev := r.loggers[opts.Name]
	r.loggers[opts.Name] = &registered{logger: l, options: opts}
	r.mu.Unlock()

	if prev != nil {
		_ = prev.logger.core.close()
	}
	return l
}

// Get returns the logger registered under name.
func (r *Registry) Get(name string) (Logger, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.loggers[name]
	if !ok {
		return nil, false
	}
	return reg.logger, true
}

// Options returns the compiled options a logger was registered with.
func (r *Registry) Options(name string) (*CompiledOptions, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.loggers[name]
	if !ok {
		return nil, false
	}
	return reg.options, true
}

// Names returns the registered logger names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.loggers))
	for name := range r.loggers {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// AddColors merges colors into the colour table. Every value must be a
// space separated list of known colour words; nothing is merged otherwise.
func (r *Registry) AddColors(colors map[string]string) error {
	const op errors.Op = "logloader.Registry.AddColors"
	for name, spec := range colors {
		if _, ok := ansiSequence(spec); !ok {
			return errors.New(op).Msg(errMsgUnknownColor + " " + name + "=" + spec)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, spec := range colors {
		r.colors[name] = spec
	}
	return nil
}

// Colors returns a copy of the colour table.
func (r *Registry) Colors() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.colors))
	for k, v := range r.colors {
		out[k] = v
	}
	return out
}

// Close closes every registered logger and forgets them. Transport close
// errors are combined.
func (r *Registry) Close() error {
	r.mu.Lock()
	loggers := r.loggers
	r.loggers = make(map[string]*registered)
	r.mu.Unlock()

	var errs error
	for _, reg := range loggers {
		errs = multierr.Append(errs, reg.logger.core.close())
	}
	return errs
}
