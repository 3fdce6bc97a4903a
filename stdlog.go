package logloader

import (
	"bytes"
	"log"
	"sync"
)

// RedirectStdLog sends everything written through the standard library's
// log package to l at level, one record per line. The returned function
// restores the previous output, flags and prefix.
//
// This changes process-wide state and is meant for program start-up.
func RedirectStdLog(l Logger, level string) (restore func()) {
	prevOut := log.Writer()
	prevFlags := log.Flags()
	prevPrefix := log.Prefix()

	log.SetFlags(0)
	log.SetPrefix(emptyString)
	log.SetOutput(&stdLogWriter{logger: l, level: level})

	var once sync.Once
	return func() {
		once.Do(func() {
			log.SetOutput(prevOut)
			log.SetFlags(prevFlags)
			log.SetPrefix(prevPrefix)
		})
	}
}

type stdLogWriter struct {
	logger Logger
	level  string
}

func (w *stdLogWriter) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(bytes.TrimRight(p, "\r\n"), []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		w.logger.Log(w.level).Msg(string(line))
	}
	return len(p), nil
}
