package logloader

import (
	"fmt"
	"strings"

	"github.com/Station-Manager/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
)

const (
	stateUnconfigured int32 = iota
	stateConfiguring
	stateConfigured
)

// Interpreter turns configuration documents into registered loggers. An
// Interpreter is not safe for concurrent use; the Registry it registers
// into is.
type Interpreter struct {
	name       string
	env        string
	envFile    string
	envErr     error
	registry   *Registry
	formats    map[string]FormatFactory
	transports map[string]TransportFactory
	templates  map[string]Template
	exit       func(int)

	raw   map[string]any
	spec  *Specification
	state atomic.Int32
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithRegistry registers compiled loggers into r instead of a registry
// private to the interpreter.
func WithRegistry(r *Registry) Option {
	return func(i *Interpreter) {
		if r != nil {
			i.registry = r
		}
	}
}

// WithEnvironment overrides the runtime environment read from APP_ENV.
func WithEnvironment(env string) Option {
	return func(i *Interpreter) {
		i.env = NormalizeEnvironment(env)
		i.envFile = emptyString
	}
}

// WithEnvFile resolves the runtime environment from a .env file when APP_ENV
// is not set in the process environment.
func WithEnvFile(path string) Option {
	return func(i *Interpreter) {
		i.envFile = path
	}
}

// WithFormat adds or replaces a format factory.
func WithFormat(name string, f FormatFactory) Option {
	return func(i *Interpreter) {
		i.formats[name] = f
	}
}

// WithTransport adds or replaces a transport factory.
func WithTransport(name string, f TransportFactory) Option {
	return func(i *Interpreter) {
		i.transports[name] = f
	}
}

// WithTemplate registers a printf template under name. Templates declared in
// the document's printf.templates block take precedence.
func WithTemplate(name string, t Template) Option {
	return func(i *Interpreter) {
		i.templates[name] = t
	}
}

// WithExitFunc replaces os.Exit for fatal records.
func WithExitFunc(fn func(int)) Option {
	return func(i *Interpreter) {
		i.exit = fn
	}
}

// NewInterpreter returns an interpreter that registers its logger under
// name, or DefaultLoggerName when name is empty. The runtime environment is
// resolved here, once.
func NewInterpreter(name string, opts ...Option) *Interpreter {
	if name == emptyString {
		name = DefaultLoggerName
	}
	i := &Interpreter{
		name:       name,
		env:        ResolveEnvironment(),
		formats:    builtinFormats(),
		transports: builtinTransports(),
		templates:  make(map[string]Template),
		raw:        make(map[string]any),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.registry == nil {
		i.registry = NewRegistry()
	}
	if i.envFile != emptyString {
		i.env, i.envErr = resolveEnvironmentFile(i.envFile)
	}
	return i
}

// Name returns the name the logger is registered under.
func (i *Interpreter) Name() string {
	return i.name
}

// Environment returns the resolved runtime environment.
func (i *Interpreter) Environment() string {
	return i.env
}

// Registry returns the registry compiled loggers are stored in.
func (i *Interpreter) Registry() *Registry {
	return i.registry
}

// Configured reports whether the last Compile registered a logger.
func (i *Interpreter) Configured() bool {
	return i.state.Load() == stateConfigured
}

// Specification returns the held specification, nil before the first
// successful load.
func (i *Interpreter) Specification() *Specification {
	return i.spec
}

// LoadSpecification reads the document at path and merges its top-level
// keys over the ones already held, later keys winning. Nested values are
// replaced, never merged. The held specification only changes when the
// merged document decodes and validates.
func (i *Interpreter) LoadSpecification(path string) error {
	doc, err := readDocument(path)
	if err != nil {
		return newConfigError(ErrConfigLoad, path, -1, err)
	}

	merged := make(map[string]any, len(i.raw)+len(doc))
	mergeShallow(merged, i.raw)
	mergeShallow(merged, doc)

	spec, err := decodeSpecification(merged)
	if err != nil {
		return newConfigError(ErrConfigShape, path, -1, err)
	}
	if err = validateSpecification(spec); err != nil {
		return newConfigError(ErrConfigShape, path, -1, err)
	}

	i.raw = merged
	i.spec = spec
	return nil
}

// Compile loads the document at path, compiles it and registers the result
// under the interpreter's name, replacing any earlier registration.
//
// Failures in the document as a whole (loading, shape, the top-level
// format) abort before anything is registered. A transport that fails to
// compile is left out and reported; the logger is still registered with the
// remaining destinations, and the returned error combines every such
// failure.
func (i *Interpreter) Compile(path string) (*CompiledOptions, error) {
	prev := i.state.Swap(stateConfiguring)
	opts, err := i.compile(path)
	if opts == nil {
		i.state.Store(prev)
		return nil, err
	}
	if cerr := i.registry.AddColors(i.spec.Colors()); cerr != nil {
		i.state.Store(prev)
		return nil, newConfigError(ErrConfigShape, "levels.colors", -1, cerr)
	}
	i.registry.Register(opts)
	i.state.Store(stateConfigured)
	return opts, err
}

func (i *Interpreter) compile(path string) (*CompiledOptions, error) {
	if i.envErr != nil {
		return nil, newConfigError(ErrConfigLoad, i.envFile, -1, i.envErr)
	}
	if err := i.LoadSpecification(path); err != nil {
		return nil, err
	}
	spec := i.spec
	levels := spec.LevelTable()

	// Declared colours are staged here and only reach the registry once the
	// logger is registered.
	colors := i.registry.Colors()
	for name, c := range spec.Colors() {
		colors[name] = c
	}

	format, err := i.compileFormat(spec.Format, nil, levels, colors)
	if err != nil {
		return nil, err
	}

	dests, errs := i.compileTransports(spec.Transports, levels, colors)

	return &CompiledOptions{
		Name:         i.name,
		Level:        spec.LevelOrDefault(),
		Levels:       levels,
		Silent:       spec.SilentOrDefault(),
		ExitOnError:  spec.ExitOnErrorOrDefault(),
		Format:       format,
		Destinations: dests,
		exit:         i.exit,
	}, errs
}

// transportControls are the option keys of a transport the interpreter
// consumes itself.
type transportControls struct {
	Format  []FormatStep `mapstructure:"format" validate:"dive"`
	Filters []string     `mapstructure:"filters"`
	Level   string       `mapstructure:"level"`
}

func splitTransportOptions(opts map[string]any) (map[string]any, map[string]any) {
	controls := make(map[string]any, 3)
	rest := make(map[string]any, len(opts))
	for k, v := range opts {
		switch k {
		case optFormat, optFilters, optLevel:
			controls[k] = v
		default:
			rest[k] = v
		}
	}
	return controls, rest
}

func (i *Interpreter) compileTransports(specs []TransportSpec, levels LevelTable, colors map[string]string) ([]*Destination, error) {
	var (
		dests []*Destination
		errs  error
	)
	for idx, ts := range specs {
		d, err := i.compileTransport(idx, ts, levels, colors)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if d != nil {
			dests = append(dests, d)
		}
	}
	return dests, errs
}

// compileTransport returns a nil destination without error when the
// transport is not enabled in the current environment.
func (i *Interpreter) compileTransport(idx int, ts TransportSpec, levels LevelTable, colors map[string]string) (*Destination, error) {
	const op errors.Op = "logloader.Interpreter.compileTransport"

	raw, rest := splitTransportOptions(ts.Options)
	var ctl transportControls
	if err := decodeMap(raw, &ctl, false); err != nil {
		return nil, newConfigError(ErrInvalidTransportOptions, ts.Type, idx, err)
	}
	if err := validatorInstance().Struct(&ctl); err != nil {
		return nil, newConfigError(ErrInvalidTransportOptions, ts.Type, idx, err)
	}
	if ctl.Level != emptyString && !levels.Has(ctl.Level) {
		return nil, newConfigError(ErrInvalidTransportOptions, ts.Type, idx,
			errors.New(op).Msg(errMsgUnknownLevel+" level="+ctl.Level))
	}

	format, err := i.compileFormat(ctl.Format, ctl.Filters, levels, colors)
	if err != nil {
		return nil, newConfigError(ErrInvalidTransportOptions, ts.Type, idx, err)
	}

	env := strings.TrimSpace(ts.Env)
	if env != emptyString && !strings.EqualFold(env, i.env) {
		return nil, nil
	}

	factory, ok := i.transports[ts.Type]
	if !ok {
		return nil, newConfigError(ErrUnknownTransport, ts.Type, idx, nil)
	}
	t, err := factory(rest)
	if err != nil {
		return nil, newConfigError(ErrInvalidTransportOptions, ts.Type, idx, err)
	}

	return &Destination{
		Type:      ts.Type,
		Env:       env,
		Level:     ctl.Level,
		Format:    format,
		Transport: t,
	}, nil
}

// compileFormat builds one pipeline: the level filter first when filters is
// non-empty, then each step in order. It returns nil when there is nothing
// to run.
func (i *Interpreter) compileFormat(steps []FormatStep, filters []string, levels LevelTable, colors map[string]string) (Format, error) {
	const op errors.Op = "logloader.Interpreter.compileFormat"

	formats := make([]Format, 0, len(steps)+1)
	if len(filters) > 0 {
		for _, name := range filters {
			if !levels.Has(name) {
				return nil, newConfigError(ErrConfigShape, optFilters, -1,
					errors.New(op).Msg(errMsgUnknownLevel+" level="+name))
			}
		}
		formats = append(formats, LevelFilter(filters...))
	}

	for idx, step := range steps {
		factory, ok := i.formats[step.Type]
		if !ok {
			return nil, newConfigError(ErrUnknownFormat, step.Type, idx, nil)
		}

		params := FormatParams{Options: step.Options, Colors: colors}
		if ref, ok := step.Options[printfTemplateKey]; ok && step.Type == printfFormatName {
			tmpl, err := i.resolveTemplate(ref)
			if err != nil {
				return nil, newConfigError(ErrTemplateResolution, fmt.Sprint(ref), idx, err)
			}
			params.Template = tmpl
		}

		f, err := factory(params)
		if err != nil {
			return nil, newConfigError(ErrInvalidFormatOptions, step.Type, idx, err)
		}
		formats = append(formats, f)
	}

	return Combine(formats...), nil
}

// resolveTemplate looks a template up by name, first in the document's
// printf.templates block and then among the ones registered with
// WithTemplate.
func (i *Interpreter) resolveTemplate(ref any) (Template, error) {
	const op errors.Op = "logloader.Interpreter.resolveTemplate"

	name, ok := ref.(string)
	if !ok || name == emptyString {
		return nil, errors.New(op).Msg("Template reference must be a non-empty name.")
	}
	if i.spec != nil {
		if src, ok := i.spec.Template(name); ok {
			return parseTemplate(name, src)
		}
	}
	if tmpl, ok := i.templates[name]; ok && tmpl != nil {
		return tmpl, nil
	}
	return nil, errors.New(op).Msg("Template is not defined.")
}

// GetLogger returns the logger registered under the interpreter's name.
// With a non-empty category the returned view tags every record with it.
func (i *Interpreter) GetLogger(category string) (Logger, error) {
	const op errors.Op = "logloader.Interpreter.GetLogger"
	l, ok := i.registry.Get(i.name)
	if !ok {
		return nil, newConfigError(ErrNotConfigured, i.name, -1, errors.New(op).Msg(errMsgLoggerNotExists))
	}
	if category == emptyString {
		return l, nil
	}
	return l.Child(category), nil
}
