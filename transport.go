package logloader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Station-Manager/errors"
	"github.com/goccy/go-json"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Transport is a destination for rendered log lines.
type Transport interface {
	io.Writer
	Close() error
}

// TransportFactory builds a Transport from its option bag. The interpreter
// strips the format, filters and level keys before calling it. A returned
// error means the options were rejected.
type TransportFactory func(opts map[string]any) (Transport, error)

func builtinTransports() map[string]TransportFactory {
	return map[string]TransportFactory{
		"console": newConsoleTransport,
		"file":    newFileTransport,
		"http":    newHTTPTransport,
	}
}

// WriterTransport adapts an io.Writer that needs no closing.
func WriterTransport(w io.Writer) Transport {
	return nopCloser{w}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

type consoleOptions struct {
	Stream string `mapstructure:"stream" validate:"omitempty,oneof=stdout stderr"`
}

func newConsoleTransport(opts map[string]any) (Transport, error) {
	var o consoleOptions
	if err := decodeOptions(opts, &o); err != nil {
		return nil, err
	}
	if o.Stream == "stderr" {
		return WriterTransport(os.Stderr), nil
	}
	return WriterTransport(os.Stdout), nil
}

type fileOptions struct {
	Filename   string `mapstructure:"filename" validate:"required"`
	MaxSize    int    `mapstructure:"maxSize" validate:"gte=0"`
	MaxBackups int    `mapstructure:"maxBackups" validate:"gte=0"`
	MaxAge     int    `mapstructure:"maxAge" validate:"gte=0"`
	Compress   bool   `mapstructure:"compress"`
	LocalTime  bool   `mapstructure:"localTime"`
}

// newFileTransport writes to a rolling file. Sizes are in megabytes and
// ages in days, as lumberjack takes them.
func newFileTransport(opts map[string]any) (Transport, error) {
	const op errors.Op = "logloader.newFileTransport"
	var o fileOptions
	if err := decodeOptions(opts, &o); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(o.Filename), os.ModePerm); err != nil {
		return nil, errors.New(op).Err(err).Msg("Failed to create the log directory.")
	}

	return &lumberjack.Logger{
		Filename:   o.Filename,
		MaxSize:    o.MaxSize,
		MaxBackups: o.MaxBackups,
		MaxAge:     o.MaxAge,
		Compress:   o.Compress,
		LocalTime:  o.LocalTime,
	}, nil
}

// httpOptions configures the http transport. An empty ContentType picks
// JSON or plain text per line.
type httpOptions struct {
	URL         string            `mapstructure:"url" validate:"required,url"`
	Method      string            `mapstructure:"method" validate:"omitempty,oneof=POST PUT"`
	Headers     map[string]string `mapstructure:"headers"`
	Timeout     time.Duration     `mapstructure:"timeout" validate:"gte=0"`
	ContentType string            `mapstructure:"contentType"`
}

const (
	contentTypeJSON = "application/json"
	contentTypeText = "text/plain; charset=utf-8"
)

type httpTransport struct {
	client      *http.Client
	url         string
	method      string
	headers     map[string]string
	contentType string
}

// newHTTPTransport sends every rendered line as the body of one request.
func newHTTPTransport(opts map[string]any) (Transport, error) {
	var o httpOptions
	if err := decodeOptions(opts, &o); err != nil {
		return nil, err
	}
	if o.Method == emptyString {
		o.Method = http.MethodPost
	}
	if o.Timeout == 0 {
		o.Timeout = 5 * time.Second
	}
	return &httpTransport{
		client:      &http.Client{Timeout: o.Timeout},
		url:         o.URL,
		method:      o.Method,
		headers:     o.Headers,
		contentType: o.ContentType,
	}, nil
}

func (t *httpTransport) Write(p []byte) (int, error) {
	req, err := http.NewRequestWithContext(context.Background(), t.method, t.url, bytes.NewReader(p))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", t.contentTypeFor(p))
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("http transport: %s %s: %s", t.method, t.url, resp.Status)
	}
	return len(p), nil
}

func (t *httpTransport) contentTypeFor(p []byte) string {
	if t.contentType != emptyString {
		return t.contentType
	}
	if json.Valid(bytes.TrimSpace(p)) {
		return contentTypeJSON
	}
	return contentTypeText
}

func (t *httpTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
