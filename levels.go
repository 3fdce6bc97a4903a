package logloader

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// LevelTable maps a severity name to its rank. A lower rank is more severe,
// so a record is enabled when its rank is less than or equal to the rank of
// the configured threshold.
type LevelTable map[string]int

// DefaultLevels returns the built-in table, named after zerolog's levels.
func DefaultLevels() LevelTable {
	return LevelTable{
		zerolog.LevelPanicValue: 0,
		zerolog.LevelFatalValue: 1,
		zerolog.LevelErrorValue: 2,
		zerolog.LevelWarnValue:  3,
		zerolog.LevelInfoValue:  4,
		zerolog.LevelDebugValue: 5,
		zerolog.LevelTraceValue: 6,
	}
}

// Rank returns the rank of level and whether the level is defined.
func (t LevelTable) Rank(level string) (int, bool) {
	r, ok := t[level]
	return r, ok
}

// Has reports whether level is defined in the table.
func (t LevelTable) Has(level string) bool {
	_, ok := t[level]
	return ok
}

// Enabled reports whether a record at level passes a threshold. Undefined
// names never pass.
func (t LevelTable) Enabled(threshold, level string) bool {
	limit, ok := t[threshold]
	if !ok {
		return false
	}
	r, ok := t[level]
	if !ok {
		return false
	}
	return r <= limit
}

// Names returns the severity names ordered from most to least severe.
func (t LevelTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if t[names[i]] == t[names[j]] {
			return names[i] < names[j]
		}
		return t[names[i]] < t[names[j]]
	})
	return names
}

func (t LevelTable) clone() LevelTable {
	c := make(LevelTable, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}

// zerologLevel maps a severity name onto a zerolog level. Custom names map
// to zerolog.NoLevel and are written with an explicit level field.
func zerologLevel(level string) zerolog.Level {
	if level == emptyString {
		return zerolog.NoLevel
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel
	}
	return l
}

const ansiReset = "\033[0m"

var ansiCodes = map[string]string{
	"black":     "30",
	"red":       "31",
	"green":     "32",
	"yellow":    "33",
	"blue":      "34",
	"magenta":   "35",
	"cyan":      "36",
	"white":     "37",
	"gray":      "90",
	"grey":      "90",
	"bold":      "1",
	"dim":       "2",
	"italic":    "3",
	"underline": "4",
	"inverse":   "7",
	"blackBG":   "40",
	"redBG":     "41",
	"greenBG":   "42",
	"yellowBG":  "43",
	"blueBG":    "44",
	"magentaBG": "45",
	"cyanBG":    "46",
	"whiteBG":   "47",
}

// defaultColors is the colour table in effect before any levels.colors
// block is registered.
func defaultColors() map[string]string {
	return map[string]string{
		zerolog.LevelPanicValue: "bold red",
		zerolog.LevelFatalValue: "bold magenta",
		zerolog.LevelErrorValue: "red",
		zerolog.LevelWarnValue:  "yellow",
		zerolog.LevelInfoValue:  "green",
		zerolog.LevelDebugValue: "cyan",
		zerolog.LevelTraceValue: "gray",
	}
}

// ansiSequence turns a space separated colour spec ("bold red") into an
// escape sequence. It returns false if any word is unknown.
func ansiSequence(spec string) (string, bool) {
	words := strings.Fields(spec)
	if len(words) == 0 {
		return emptyString, false
	}
	codes := make([]string, 0, len(words))
	for _, w := range words {
		code, ok := ansiCodes[w]
		if !ok {
			return emptyString, false
		}
		codes = append(codes, code)
	}
	return "\033[" + strings.Join(codes, ";") + "m", true
}

func colorize(spec, text string) string {
	seq, ok := ansiSequence(spec)
	if !ok {
		return text
	}
	return seq + text + ansiReset
}
