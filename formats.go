package logloader

import (
	"bytes"
	"strings"
	"time"

	"github.com/Station-Manager/errors"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

type jsonOptions struct {
	Space int `mapstructure:"space" validate:"gte=0,lte=8"`
}

func newJSONFormat(p FormatParams) (Format, error) {
	var opts jsonOptions
	if err := decodeOptions(p.Options, &opts); err != nil {
		return nil, err
	}
	indent := strings.Repeat(" ", opts.Space)
	return FormatFunc(func(e *Entry) bool {
		var (
			b   []byte
			err error
		)
		if opts.Space > 0 {
			b, err = json.MarshalIndent(e.Fields, emptyString, indent)
		} else {
			b, err = json.Marshal(e.Fields)
		}
		if err != nil {
			return true
		}
		e.Output = b
		return true
	}), nil
}

// newSimpleFormat renders "level: message" followed by the remaining fields
// as a JSON object when there are any.
func newSimpleFormat(p FormatParams) (Format, error) {
	var opts struct{}
	if err := decodeOptions(p.Options, &opts); err != nil {
		return nil, err
	}
	return FormatFunc(func(e *Entry) bool {
		rest := make(map[string]any, len(e.Fields))
		for k, v := range e.Fields {
			if k == zerolog.LevelFieldName || k == zerolog.MessageFieldName {
				continue
			}
			rest[k] = v
		}
		var sb strings.Builder
		sb.WriteString(e.Level())
		sb.WriteString(": ")
		sb.WriteString(e.Message())
		if len(rest) > 0 {
			if b, err := json.Marshal(rest); err == nil {
				sb.WriteByte(' ')
				sb.Write(b)
			}
		}
		e.Output = []byte(sb.String())
		return true
	}), nil
}

type printfOptions struct {
	Template string `mapstructure:"template" validate:"required"`
}

func newPrintfFormat(p FormatParams) (Format, error) {
	const op errors.Op = "logloader.newPrintfFormat"
	var opts printfOptions
	if err := decodeOptions(p.Options, &opts); err != nil {
		return nil, err
	}
	if p.Template == nil {
		return nil, errors.New(op).Msg("Printf format has no resolved template.")
	}
	tmpl := p.Template
	return FormatFunc(func(e *Entry) bool {
		e.Output = []byte(tmpl(e))
		return true
	}), nil
}

type colorizeOptions struct {
	All     bool              `mapstructure:"all"`
	Level   *bool             `mapstructure:"level"`
	Message bool              `mapstructure:"message"`
	Colors  map[string]string `mapstructure:"colors"`
}

func newColorizeFormat(p FormatParams) (Format, error) {
	const op errors.Op = "logloader.newColorizeFormat"
	var opts colorizeOptions
	if err := decodeOptions(p.Options, &opts); err != nil {
		return nil, err
	}
	colors := make(map[string]string, len(p.Colors)+len(opts.Colors))
	for k, v := range p.Colors {
		colors[k] = v
	}
	for k, v := range opts.Colors {
		if _, ok := ansiSequence(v); !ok {
			return nil, errors.New(op).Msg(errMsgUnknownColor + " " + k + "=" + v)
		}
		colors[k] = v
	}

	level := opts.All || opts.Level == nil || *opts.Level
	message := opts.All || opts.Message
	return FormatFunc(func(e *Entry) bool {
		spec, ok := colors[e.Severity()]
		if !ok {
			return true
		}
		if message {
			e.SetMessage(colorize(spec, e.Message()))
		}
		if level {
			e.SetLevel(colorize(spec, e.Level()))
		}
		return true
	}), nil
}

type timestampOptions struct {
	Format string `mapstructure:"format"`
	Alias  string `mapstructure:"alias"`
}

const timestampFieldName = "timestamp"

func newTimestampFormat(p FormatParams) (Format, error) {
	var opts timestampOptions
	if err := decodeOptions(p.Options, &opts); err != nil {
		return nil, err
	}
	layout := opts.Format
	if layout == emptyString {
		layout = time.RFC3339
	}
	return FormatFunc(func(e *Entry) bool {
		ts := zerolog.TimestampFunc().Format(layout)
		e.Set(timestampFieldName, ts)
		if opts.Alias != emptyString {
			e.Set(opts.Alias, ts)
		}
		return true
	}), nil
}

type labelOptions struct {
	Label   string `mapstructure:"label" validate:"required"`
	Message bool   `mapstructure:"message"`
}

func newLabelFormat(p FormatParams) (Format, error) {
	var opts labelOptions
	if err := decodeOptions(p.Options, &opts); err != nil {
		return nil, err
	}
	return FormatFunc(func(e *Entry) bool {
		if opts.Message {
			e.SetMessage("[" + opts.Label + "] " + e.Message())
			return true
		}
		e.Set("label", opts.Label)
		return true
	}), nil
}

type prettyOptions struct {
	NoColor    bool   `mapstructure:"noColor"`
	TimeFormat string `mapstructure:"timeFormat"`
}

// newPrettyFormat renders through zerolog's ConsoleWriter.
func newPrettyFormat(p FormatParams) (Format, error) {
	var opts prettyOptions
	if err := decodeOptions(p.Options, &opts); err != nil {
		return nil, err
	}
	if opts.TimeFormat == emptyString {
		opts.TimeFormat = time.Kitchen
	}
	return FormatFunc(func(e *Entry) bool {
		b, err := json.Marshal(e.Fields)
		if err != nil {
			return true
		}
		var buf bytes.Buffer
		w := zerolog.ConsoleWriter{Out: &buf, NoColor: opts.NoColor, TimeFormat: opts.TimeFormat}
		if _, err := w.Write(b); err != nil {
			return true
		}
		e.Output = buf.Bytes()
		return true
	}), nil
}

func newUppercaseFormat(p FormatParams) (Format, error) {
	var opts struct{}
	if err := decodeOptions(p.Options, &opts); err != nil {
		return nil, err
	}
	return FormatFunc(func(e *Entry) bool {
		e.SetLevel(strings.ToUpper(e.Level()))
		return true
	}), nil
}

type metadataOptions struct {
	Key        string   `mapstructure:"key"`
	FillExcept []string `mapstructure:"fillExcept"`
}

// newMetadataFormat moves every field except the level, message and time,
// and the ones named in fillExcept, under a single key.
func newMetadataFormat(p FormatParams) (Format, error) {
	var opts metadataOptions
	if err := decodeOptions(p.Options, &opts); err != nil {
		return nil, err
	}
	if opts.Key == emptyString {
		opts.Key = "metadata"
	}
	keep := map[string]struct{}{
		zerolog.LevelFieldName:     {},
		zerolog.MessageFieldName:   {},
		zerolog.TimestampFieldName: {},
	}
	for _, k := range opts.FillExcept {
		keep[k] = struct{}{}
	}
	return FormatFunc(func(e *Entry) bool {
		meta := make(map[string]any)
		for k, v := range e.Fields {
			if _, ok := keep[k]; ok {
				continue
			}
			meta[k] = v
			delete(e.Fields, k)
		}
		if len(meta) > 0 {
			e.Set(opts.Key, meta)
		}
		return true
	}), nil
}
