package logloader

import (
	"strings"
	"text/template"

	"github.com/Station-Manager/errors"
)

// Template renders an entry into its final line. Templates are resolved by
// name from the document's printf.templates block or from templates
// registered with WithTemplate.
type Template func(e *Entry) string

// parseTemplate compiles a text/template source into a Template. The
// template sees the record's fields as its dot value, so
// "{{.time}} [{{.level}}] {{.message}}" is a typical source.
func parseTemplate(name, src string) (Template, error) {
	const op errors.Op = "logloader.parseTemplate"
	if strings.TrimSpace(src) == emptyString {
		return nil, errors.New(op).Msg(errMsgEmptyTemplate)
	}
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(src)
	if err != nil {
		return nil, errors.New(op).Err(err).Msg("Template does not parse.")
	}
	return func(e *Entry) string {
		var sb strings.Builder
		if err := tmpl.Execute(&sb, e.Fields); err != nil {
			return e.Message()
		}
		return sb.String()
	}, nil
}
