// Package logloader builds structured loggers from declarative
// configuration documents, on top of rs/zerolog.
//
// A document names a level, optional custom severities and colours, a
// top-level format pipeline and a list of transports. Each transport may
// carry its own format steps, a severity filter, a level threshold and the
// runtime environment it is active in. Compiling a document constructs the
// enabled transports and registers the resulting logger by name.
//
// Key features
//   - JSON or YAML documents, merged key by key across several loads
//   - Formats and transports resolved by name from factories, so callers
//     can add their own with WithFormat and WithTransport
//   - Filters are severity sets, printf templates are text/template sources
//     or functions registered with WithTemplate; nothing is evaluated
//   - A transport that fails to build is reported and left out, the rest
//     are still registered
//   - Error history enrichment: for any Err/AnErr, the logger includes
//     the full error chain (outermost -> root), the root cause string, a
//     joined human-readable history, the operations chain (when using
//     Station-Manager DetailedError), and the root operation if available.
//
// Example document
//
//	{
//	  "level": "info",
//	  "printf": {"templates": {"line": "{{.time}} [{{.level}}] {{.message}}"}},
//	  "transports": [
//	    {"type": "console", "env": "development",
//	     "options": {"format": [{"type": "colorize"}, {"type": "printf", "options": {"template": "line"}}]}},
//	    {"type": "file", "env": "production",
//	     "options": {"filename": "logs/app.log", "filters": ["error", "warn"]}}
//	  ]
//	}
//
// Typical usage
//
//	reg := logloader.NewRegistry()
//	defer reg.Close()
//
//	in := logloader.NewInterpreter("app", logloader.WithRegistry(reg))
//	if _, err := in.Compile("logger.json"); err != nil { ... }
//
//	log, _ := in.GetLogger("db")
//	log.InfoWith().Str("table", "users").Msg("migrated")
package logloader
