package logloader

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type logEntry map[string]any

// threadSafeBuffer is a simple thread-safe buffer for capturing log output.
type threadSafeBuffer struct {
	bytes.Buffer
	sync.Mutex
}

func (b *threadSafeBuffer) Write(p []byte) (n int, err error) {
	b.Lock()
	defer b.Unlock()
	return b.Buffer.Write(p)
}

func (b *threadSafeBuffer) String() string {
	b.Lock()
	defer b.Unlock()
	return b.Buffer.String()
}

func (b *threadSafeBuffer) Lines() []string {
	s := strings.TrimRight(b.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func (b *threadSafeBuffer) Entries(t testing.TB) []logEntry {
	t.Helper()
	var out []logEntry
	for _, line := range b.Lines() {
		var e logEntry
		require.NoError(t, json.Unmarshal([]byte(line), &e), line)
		out = append(out, e)
	}
	return out
}

// memorySinks backs the "memory" transport used by the tests. Each
// destination is keyed by its "id" option; a "reject" option makes the
// factory fail.
type memorySinks struct {
	mu    sync.Mutex
	sinks map[string]*memorySink
}

type memorySink struct {
	threadSafeBuffer
	closed bool
}

func (s *memorySink) Close() error {
	s.Lock()
	defer s.Unlock()
	s.closed = true
	return nil
}

func newMemorySinks() *memorySinks {
	return &memorySinks{sinks: make(map[string]*memorySink)}
}

func (m *memorySinks) factory(opts map[string]any) (Transport, error) {
	if _, ok := opts["reject"]; ok {
		return nil, errors.New("memory transport rejected its options")
	}
	id, _ := opts["id"].(string)
	sink := &memorySink{}
	m.mu.Lock()
	m.sinks[id] = sink
	m.mu.Unlock()
	return sink, nil
}

func (m *memorySinks) get(t testing.TB, id string) *memorySink {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	sink, ok := m.sinks[id]
	require.True(t, ok, "no memory sink %q", id)
	return sink
}

func (m *memorySinks) has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sinks[id]
	return ok
}

// writeDoc writes a configuration document into a temp dir and returns its path.
func writeDoc(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// newTestInterpreter returns an interpreter in the development environment
// with the memory transport registered.
func newTestInterpreter(t testing.TB, opts ...Option) (*Interpreter, *memorySinks) {
	t.Helper()
	sinks := newMemorySinks()
	base := []Option{
		WithEnvironment(EnvDevelopment),
		WithTransport("memory", sinks.factory),
		WithExitFunc(func(int) {}),
	}
	in := NewInterpreter("test", append(base, opts...)...)
	t.Cleanup(func() { _ = in.Registry().Close() })
	return in, sinks
}

// newBufferLogger registers a logger writing JSON lines into buf.
func newBufferLogger(t testing.TB, level string, buf *threadSafeBuffer) Logger {
	t.Helper()
	reg := NewRegistry()
	t.Cleanup(func() { _ = reg.Close() })
	return reg.Register(&CompiledOptions{
		Name:         "buffer",
		Level:        level,
		Levels:       DefaultLevels(),
		Destinations: []*Destination{{Type: "buffer", Transport: WriterTransport(buf)}},
		exit:         func(int) {},
	})
}
