package logloader

import (
	"io"
	"strconv"
	"testing"

	smerrors "github.com/Station-Manager/errors"
)

// newBenchLogger registers a logger at the given level that discards its
// output, so only record building and fan-out are measured.
func newBenchLogger(b *testing.B, level string, format Format) Logger {
	reg := NewRegistry()
	b.Cleanup(func() { _ = reg.Close() })
	return reg.Register(&CompiledOptions{
		Name:         "bench",
		Level:        level,
		Levels:       DefaultLevels(),
		Destinations: []*Destination{{Format: format, Transport: WriterTransport(io.Discard)}},
	})
}

func makeDetailedChain(depth int) error {
	if depth <= 0 {
		return nil
	}
	err := smerrors.New(smerrors.Op("op_0")).Msg("root cause message")
	for i := 1; i < depth; i++ {
		op := "op_" + strconv.Itoa(i)
		err = smerrors.New(smerrors.Op(op)).Err(err).Msg("wrapped message")
	}
	return err
}

func BenchmarkInfoWith_NoErr(b *testing.B) {
	l := newBenchLogger(b, "info", nil)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.InfoWith().Str("k", "v").Int("n", i).Msg("hello")
	}
}

func BenchmarkInfoWith_Disabled(b *testing.B) {
	l := newBenchLogger(b, "warn", nil)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.InfoWith().Str("k", "v").Int("n", i).Msg("hello")
	}
}

func BenchmarkErrorWith_DetailedChain6(b *testing.B) {
	l := newBenchLogger(b, "error", nil)
	err := makeDetailedChain(6)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.ErrorWith().Err(err).Msg("oops")
	}
}

func BenchmarkInfoWith_Pipeline(b *testing.B) {
	tmpl, err := parseTemplate("line", "{{.time}} [{{.level}}] {{.message}}")
	if err != nil {
		b.Fatal(err)
	}
	printf, err := newPrintfFormat(FormatParams{Options: map[string]any{"template": "line"}, Template: tmpl})
	if err != nil {
		b.Fatal(err)
	}
	format := Combine(LevelFilter("info", "warn", "error"), printf)

	l := newBenchLogger(b, "info", format)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.InfoWith().Str("k", "v").Msg("hello")
	}
}

func BenchmarkParallel_InfoWith(b *testing.B) {
	l := newBenchLogger(b, "info", nil)
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			l.InfoWith().Str("k", "v").Msg("hi")
		}
	})
}
