package logloader

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestFileTransport_CreatesAndWrites(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "nested", "logs", "app.log")

	in, _ := newTestInterpreter(t)
	doc := `{"transports": [{"type": "file", "options": {"filename": ` + jsonString(logPath) + `, "maxSize": 1, "maxBackups": 2, "compress": true}}]}`
	opts, err := in.Compile(writeDoc(t, "logger.json", doc))
	require.NoError(t, err)
	require.Len(t, opts.Destinations, 1)

	lj, ok := opts.Destinations[0].Transport.(*lumberjack.Logger)
	require.True(t, ok)
	assert.Equal(t, logPath, lj.Filename)
	assert.Equal(t, 1, lj.MaxSize)
	assert.Equal(t, 2, lj.MaxBackups)
	assert.True(t, lj.Compress)

	l, err := in.GetLogger("")
	require.NoError(t, err)
	l.InfoWith().Str("component", "file").Msg("written to disk")
	require.NoError(t, in.Registry().Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	var entry logEntry
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "written to disk", entry["message"])
	assert.Equal(t, "file", entry["component"])
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestFileTransport_Options(t *testing.T) {
	_, err := newFileTransport(map[string]any{})
	require.Error(t, err)

	_, err = newFileTransport(map[string]any{"filename": "x.log", "maxSize": -1})
	require.Error(t, err)

	_, err = newFileTransport(map[string]any{"filename": "x.log", "rotate": true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), errMsgOptionsInvalid)
}

func TestConsoleTransport_Options(t *testing.T) {
	tr, err := newConsoleTransport(nil)
	require.NoError(t, err)
	assert.Equal(t, WriterTransport(os.Stdout), tr)

	tr, err = newConsoleTransport(map[string]any{"stream": "stderr"})
	require.NoError(t, err)
	assert.Equal(t, WriterTransport(os.Stderr), tr)
	assert.NoError(t, tr.Close())

	_, err = newConsoleTransport(map[string]any{"stream": "printer"})
	require.Error(t, err)
}

func TestHTTPTransport(t *testing.T) {
	var (
		mu      sync.Mutex
		bodies  []string
		headers []http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		headers = append(headers, r.Header.Clone())
		mu.Unlock()
		if strings.Contains(string(b), "reject-me") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	in, _ := newTestInterpreter(t)
	doc := `{"transports": [{"type": "http", "options": {"url": ` + jsonString(srv.URL) + `, "headers": {"X-Api-Key": "k"}, "timeout": "2s"}}]}`
	opts, err := in.Compile(writeDoc(t, "logger.json", doc))
	require.NoError(t, err)
	require.Len(t, opts.Destinations, 1)

	l, err := in.GetLogger("")
	require.NoError(t, err)
	l.InfoWith().Msg("shipped")

	mu.Lock()
	require.Len(t, bodies, 1)
	var entry logEntry
	require.NoError(t, json.Unmarshal([]byte(bodies[0]), &entry))
	assert.Equal(t, "shipped", entry["message"])
	assert.Equal(t, "k", headers[0].Get("X-Api-Key"))
	assert.Equal(t, "application/json", headers[0].Get("Content-Type"))
	mu.Unlock()

	tr := opts.Destinations[0].Transport
	_, err = tr.Write([]byte(`{"message":"reject-me"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestHTTPTransport_ContentType(t *testing.T) {
	var (
		mu    sync.Mutex
		types []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		types = append(types, r.Header.Get("Content-Type"))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	in, _ := newTestInterpreter(t)
	doc := `{"transports": [
	  {"type": "http", "options": {"url": ` + jsonString(srv.URL) + `}},
	  {"type": "http", "options": {"url": ` + jsonString(srv.URL) + `, "format": [{"type": "simple"}]}}
	]}`
	_, err := in.Compile(writeDoc(t, "logger.json", doc))
	require.NoError(t, err)

	l, err := in.GetLogger("")
	require.NoError(t, err)
	l.InfoWith().Msg("shipped")

	mu.Lock()
	assert.ElementsMatch(t, []string{contentTypeJSON, contentTypeText}, types)
	mu.Unlock()

	tr, err := newHTTPTransport(map[string]any{"url": srv.URL, "contentType": "application/x-ndjson"})
	require.NoError(t, err)
	_, err = tr.Write([]byte("plain line\n"))
	require.NoError(t, err)
	mu.Lock()
	assert.Equal(t, "application/x-ndjson", types[len(types)-1])
	mu.Unlock()
}

func TestHTTPTransport_Options(t *testing.T) {
	_, err := newHTTPTransport(map[string]any{})
	require.Error(t, err)

	_, err = newHTTPTransport(map[string]any{"url": "not a url"})
	require.Error(t, err)

	_, err = newHTTPTransport(map[string]any{"url": "http://localhost:1", "method": "GET"})
	require.Error(t, err)

	tr, err := newHTTPTransport(map[string]any{"url": "http://localhost:1", "method": "PUT", "timeout": "250ms"})
	require.NoError(t, err)
	ht := tr.(*httpTransport)
	assert.Equal(t, http.MethodPut, ht.method)
	assert.Equal(t, "250ms", ht.client.Timeout.String())
}

func TestTransport_UnknownType(t *testing.T) {
	in, _ := newTestInterpreter(t)
	opts, err := in.Compile(writeDoc(t, "logger.json", `{"transports": [{"type": "smoke-signal", "env": "development"}]}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTransport))
	assert.Contains(t, err.Error(), `"smoke-signal"`)
	assert.Empty(t, opts.Destinations)
}

func TestTransport_UnknownTypeSkippedOutsideEnvironment(t *testing.T) {
	in, _ := newTestInterpreter(t)
	opts, err := in.Compile(writeDoc(t, "logger.json", `{"transports": [{"type": "smoke-signal", "env": "production"}]}`))
	require.NoError(t, err)
	assert.Empty(t, opts.Destinations)
}
