package logloader

import (
	"math"
	"reflect"
	"strconv"

	"github.com/Station-Manager/errors"
	"github.com/go-viper/mapstructure/v2"
)

// Specification is the decoded form of a configuration document.
type Specification struct {
	Level       string          `mapstructure:"level"`
	Levels      *Levels         `mapstructure:"levels"`
	Silent      *bool           `mapstructure:"silent"`
	ExitOnError *bool           `mapstructure:"exitOnError"`
	Format      []FormatStep    `mapstructure:"format" validate:"dive"`
	Transports  []TransportSpec `mapstructure:"transports" validate:"dive"`
	Printf      *Printf         `mapstructure:"printf"`
}

// Levels declares custom severities and their display colours.
type Levels struct {
	Values map[string]int    `mapstructure:"values" validate:"omitempty,dive,keys,required,endkeys,gte=0"`
	Colors map[string]string `mapstructure:"colors" validate:"omitempty,dive,keys,required,endkeys,required"`
}

// Printf holds named printf templates. Each value is a text/template source
// rendered against the record's fields.
type Printf struct {
	Templates map[string]string `mapstructure:"templates"`
}

// FormatStep names one formatting behaviour and its options.
type FormatStep struct {
	Type    string         `mapstructure:"type" validate:"required"`
	Options map[string]any `mapstructure:"options"`
}

// TransportSpec names one destination kind. Env selects the runtime
// environment the destination is active in; an empty Env matches every
// environment. Options may embed "format", "filters" and "level" besides
// the transport specific keys.
type TransportSpec struct {
	Type    string         `mapstructure:"type" validate:"required"`
	Env     string         `mapstructure:"env"`
	Options map[string]any `mapstructure:"options"`
}

// Keys a TransportSpec's options may carry that the interpreter consumes
// itself instead of handing them to the transport factory.
const (
	optFormat  = "format"
	optFilters = "filters"
	optLevel   = "level"
)

// LevelOrDefault returns the declared level or "info".
func (s *Specification) LevelOrDefault() string {
	if s.Level == emptyString {
		return defaultLevel
	}
	return s.Level
}

// SilentOrDefault returns the declared silent flag or false.
func (s *Specification) SilentOrDefault() bool {
	return s.Silent != nil && *s.Silent
}

// ExitOnErrorOrDefault returns the declared exitOnError flag or true.
func (s *Specification) ExitOnErrorOrDefault() bool {
	return s.ExitOnError == nil || *s.ExitOnError
}

// LevelTable returns the declared severities, or the built-in table when the
// document carries no levels.values.
func (s *Specification) LevelTable() LevelTable {
	if s.Levels == nil || len(s.Levels.Values) == 0 {
		return DefaultLevels()
	}
	return LevelTable(s.Levels.Values).clone()
}

// Colors returns the declared colours, possibly nil.
func (s *Specification) Colors() map[string]string {
	if s.Levels == nil {
		return nil
	}
	return s.Levels.Colors
}

// Template returns the template source registered under name.
func (s *Specification) Template(name string) (string, bool) {
	if s.Printf == nil || s.Printf.Templates == nil {
		return emptyString, false
	}
	src, ok := s.Printf.Templates[name]
	return src, ok
}

// decodeSpecification turns a raw document into a Specification. Unknown
// top-level keys are kept out of the error so documents may carry extra
// application settings alongside the logger description.
func decodeSpecification(raw map[string]any) (*Specification, error) {
	var spec Specification
	if err := decodeMap(raw, &spec, false); err != nil {
		return nil, err
	}
	return &spec, nil
}

// decodeMap decodes a free-form map into out. With strict set, keys that do
// not map onto a field are an error.
// integralNumberHookFunc rejects fractional numbers bound for integer
// fields instead of letting them truncate.
func integralNumberHookFunc() mapstructure.DecodeHookFuncKind {
	const op errors.Op = "logloader.integralNumberHookFunc"
	return func(from, to reflect.Kind, data any) (any, error) {
		switch to {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		default:
			return data, nil
		}
		var f float64
		switch from {
		case reflect.Float64:
			f = data.(float64)
		case reflect.Float32:
			f = float64(data.(float32))
		default:
			return data, nil
		}
		if math.Trunc(f) != f {
			return nil, errors.New(op).Msg(errMsgNotInteger + " value=" + strconv.FormatFloat(f, 'g', -1, 64))
		}
		return data, nil
	}
}

func decodeMap(in map[string]any, out any, strict bool) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: strict,
		TagName:     "mapstructure",
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			integralNumberHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

// mergeShallow copies every top-level key of src into dst, replacing
// existing values without descending into them.
func mergeShallow(dst, src map[string]any) {
	for k, v := range src {
		dst[k] = v
	}
}
