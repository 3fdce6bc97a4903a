package logloader

import (
	stderrs "errors"
	"strings"

	smerrors "github.com/Station-Manager/errors"
	"github.com/rs/zerolog"
)

// buildErrorChain walks an error's cause chain and returns:
//   - chain: outermost -> innermost error messages
//   - ops: operation identifiers for DetailedError links ("" if not available)
//   - root: the innermost error message
//   - rootOp: the innermost operation identifier if available
//
// Station-Manager DetailedError.Cause() is followed first, then stdlib
// errors.Unwrap. Depth is bounded and repeated messages stop the walk.
func buildErrorChain(err error) (chain []string, ops []string, root string, rootOp string) {
	const maxDepth = 50
	seen := map[string]bool{}

	for depth := 0; err != nil && depth < maxDepth; depth++ {
		if dErr, ok := smerrors.AsDetailedError(err); ok && dErr != nil {
			chain = append(chain, dErr.Error())
			ops = append(ops, string(dErr.Op()))
			err = dErr.Cause()
			continue
		}

		msg := err.Error()
		if seen[msg] {
			break
		}
		seen[msg] = true
		chain = append(chain, msg)
		ops = append(ops, emptyString)
		err = stderrs.Unwrap(err)
	}

	if len(chain) > 0 {
		root = chain[len(chain)-1]
	}
	if len(ops) > 0 {
		rootOp = ops[len(ops)-1]
	}
	return
}

// joinChain returns a single string for the error chain separated by " -> ".
func joinChain(chain []string) string {
	return strings.Join(chain, " -> ")
}

func addErrorChain(ev *zerolog.Event, key string, err error) {
	if err == nil {
		return
	}
	chain, ops, root, rootOp := buildErrorChain(err)
	if len(chain) == 0 {
		return
	}
	ev.Strs(key+"_chain", chain)
	ev.Str(key+"_root", root)
	ev.Str(key+"_history", joinChain(chain))
	ev.Strs(key+"_ops", ops)
	if rootOp != emptyString {
		ev.Str(key+"_root_op", rootOp)
	}
}

// logEventBuilder starts a record at level on the given view. The record is
// counted as in flight until Msg/Msgf/Send, so closing the logger waits for
// it. Silent, closed, unknown or disabled levels give a no-op event.
func logEventBuilder(l *logger, level string, after func()) LogEvent {
	if l == nil || l.core == nil {
		return newLogEvent(nil)
	}
	c := l.core
	if c.silent || c.closed.Load() || !c.levels.Enabled(c.level, level) {
		return newLogEvent(nil)
	}

	// Hold the read lock so close cannot start between the check and the
	// wait group being incremented.
	c.mu.RLock()
	if c.closed.Load() {
		c.mu.RUnlock()
		return newLogEvent(nil)
	}
	c.activeOps.Inc()
	c.wg.Add(1)

	var event *zerolog.Event
	if zl := zerologLevel(level); zl != zerolog.NoLevel && zl.String() == level {
		event = l.zl.WithLevel(zl)
	} else {
		event = l.zl.Log().Str(zerolog.LevelFieldName, level)
	}
	c.mu.RUnlock()

	if event == nil {
		c.activeOps.Dec()
		c.wg.Done()
		return newLogEvent(nil)
	}
	return newTrackedLogEvent(event, c, after)
}
