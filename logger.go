package logloader

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
)

// defaultCloseTimeout bounds how long closing waits for in-flight records.
const defaultCloseTimeout = 2 * time.Second

// CompiledOptions is the result of compiling a specification: everything
// the registry needs to build a logger.
type CompiledOptions struct {
	Name         string
	Level        string
	Levels       LevelTable
	Silent       bool
	ExitOnError  bool
	Format       Format
	Destinations []*Destination

	exit func(int)
}

// Destination is a constructed transport with its own pipeline and
// optional severity threshold.
type Destination struct {
	Type      string
	Env       string
	Level     string
	Format    Format
	Transport Transport

	mu sync.Mutex
}

func (d *Destination) write(e *Entry) error {
	if d.Format != nil && !d.Format.Transform(e) {
		return nil
	}
	out, err := e.Render()
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err = d.Transport.Write(out)
	return err
}

// core is shared by a registered logger and every view derived from it.
// It is the io.Writer zerolog writes encoded records into.
type core struct {
	name        string
	level       string
	levels      LevelTable
	silent      bool
	exitOnError bool
	format      Format
	dests       []*Destination
	exit        func(int)

	closeTimeout time.Duration
	closed       atomic.Bool
	activeOps    atomic.Int32
	wg           sync.WaitGroup
	mu           sync.RWMutex
}

func newCore(opts *CompiledOptions) *core {
	exit := opts.exit
	if exit == nil {
		exit = os.Exit
	}
	levels := opts.Levels
	if levels == nil {
		levels = DefaultLevels()
	}
	level := opts.Level
	if level == emptyString {
		level = defaultLevel
	}
	return &core{
		name:         opts.Name,
		level:        level,
		levels:       levels,
		silent:       opts.Silent,
		exitOnError:  opts.ExitOnError,
		format:       opts.Format,
		dests:        opts.Destinations,
		exit:         exit,
		closeTimeout: defaultCloseTimeout,
	}
}

// Write decodes one record, runs the logger-wide pipeline once and then
// each destination's threshold and pipeline on its own copy.
func (c *core) Write(p []byte) (int, error) {
	e, err := decodeEntry(p)
	if err != nil {
		return 0, err
	}
	level := e.Severity()
	if c.format != nil && !c.format.Transform(e) {
		return len(p), nil
	}

	var errs error
	for _, d := range c.dests {
		if d.Level != emptyString && !c.levels.Enabled(d.Level, level) {
			continue
		}
		errs = multierr.Append(errs, d.write(e.Clone()))
	}
	if errs != nil {
		return 0, errs
	}
	return len(p), nil
}

// close stops new records, waits up to closeTimeout for in-flight ones and
// closes every transport. Only the first call does anything.
func (c *core) close() error {
	// Taking the write lock waits out builders holding the read lock.
	c.mu.Lock()
	wasClosed := c.closed.Swap(true)
	c.mu.Unlock()
	if wasClosed {
		return nil
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(c.closeTimeout):
	}

	var errs error
	for _, d := range c.dests {
		errs = multierr.Append(errs, d.Transport.Close())
	}
	return errs
}

// logger is one view onto a core.
type logger struct {
	core     *core
	zl       zerolog.Logger
	category string
}

func newLogger(c *core) *logger {
	zl := zerolog.New(c).Level(zerolog.TraceLevel).With().Timestamp().Logger()
	return &logger{core: c, zl: zl}
}

func (l *logger) derive(zl zerolog.Logger, category string) Logger {
	return &logger{core: l.core, zl: zl, category: category}
}

func (l *logger) Log(level string) LogEvent {
	return logEventBuilder(l, level, nil)
}

func (l *logger) TraceWith() LogEvent { return l.Log(zerolog.LevelTraceValue) }
func (l *logger) DebugWith() LogEvent { return l.Log(zerolog.LevelDebugValue) }
func (l *logger) InfoWith() LogEvent  { return l.Log(zerolog.LevelInfoValue) }
func (l *logger) WarnWith() LogEvent  { return l.Log(zerolog.LevelWarnValue) }
func (l *logger) ErrorWith() LogEvent { return l.Log(zerolog.LevelErrorValue) }

func (l *logger) FatalWith() LogEvent {
	if l.core == nil {
		return newLogEvent(nil)
	}
	c := l.core
	return logEventBuilder(l, zerolog.LevelFatalValue, func() {
		if c.exitOnError {
			c.exit(1)
		}
	})
}

func (l *logger) With() LogContext {
	if l.core == nil || l.core.closed.Load() {
		return noopLogContext{}
	}
	return &logContext{context: l.zl.With(), parent: l}
}

func (l *logger) Child(category string) Logger {
	if l.core == nil {
		return l
	}
	return l.derive(l.zl.With().Str(CategoryFieldName, category).Logger(), category)
}

func (l *logger) Hook(hooks ...zerolog.Hook) Logger {
	if l.core == nil {
		return l
	}
	return l.derive(l.zl.Hook(hooks...), l.category)
}

func (l *logger) Enabled(level string) bool {
	if l.core == nil || l.core.silent || l.core.closed.Load() {
		return false
	}
	return l.core.levels.Enabled(l.core.level, level)
}

func (l *logger) Name() string {
	if l.core == nil {
		return emptyString
	}
	return l.core.name
}

func (l *logger) Category() string {
	return l.category
}
