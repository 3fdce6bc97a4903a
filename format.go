package logloader

// Format transforms an entry in place. Returning false drops the entry and
// stops the rest of the pipeline.
type Format interface {
	Transform(e *Entry) bool
}

// FormatFunc adapts a function to Format.
type FormatFunc func(e *Entry) bool

func (f FormatFunc) Transform(e *Entry) bool { return f(e) }

// FormatParams is what a format factory receives. Options is the step's
// option bag. Colors is the colour table registered at compile time.
// Template is the resolved printf callback, set only for printf steps that
// referenced a named template.
type FormatParams struct {
	Options  map[string]any
	Colors   map[string]string
	Template Template
}

// FormatFactory builds a Format from its parameters. A returned error means
// the options were rejected.
type FormatFactory func(p FormatParams) (Format, error)

type pipeline []Format

func (p pipeline) Transform(e *Entry) bool {
	for _, f := range p {
		if !f.Transform(e) {
			return false
		}
	}
	return true
}

// Combine chains formats in order. Nil formats are skipped, a single format
// is returned as is, and nil is returned when nothing is left.
func Combine(formats ...Format) Format {
	p := make(pipeline, 0, len(formats))
	for _, f := range formats {
		if f != nil {
			p = append(p, f)
		}
	}
	switch len(p) {
	case 0:
		return nil
	case 1:
		return p[0]
	default:
		return p
	}
}

// LevelFilter passes entries whose severity is one of levels and drops the
// rest. The emitted severity is used, so an earlier colorize or uppercase
// step does not change the outcome.
func LevelFilter(levels ...string) Format {
	set := make(map[string]struct{}, len(levels))
	for _, l := range levels {
		set[l] = struct{}{}
	}
	return FormatFunc(func(e *Entry) bool {
		_, ok := set[e.Severity()]
		return ok
	})
}

const (
	printfFormatName  = "printf"
	printfTemplateKey = "template"
)

func builtinFormats() map[string]FormatFactory {
	return map[string]FormatFactory{
		"json":      newJSONFormat,
		"simple":    newSimpleFormat,
		"printf":    newPrintfFormat,
		"colorize":  newColorizeFormat,
		"timestamp": newTimestampFormat,
		"label":     newLabelFormat,
		"pretty":    newPrettyFormat,
		"uppercase": newUppercaseFormat,
		"metadata":  newMetadataFormat,
	}
}
