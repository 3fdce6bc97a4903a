package logloader

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Station-Manager/errors"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// readDocument reads and parses a configuration document. The parser is
// picked by extension; anything other than .yaml/.yml/.json is tried as
// JSON first and YAML second.
func readDocument(path string) (map[string]any, error) {
	const op errors.Op = "logloader.readDocument"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgReadFailed)
	}

	doc, err := parseDocument(data, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgParseFailed)
	}
	if doc == nil {
		doc = make(map[string]any)
	}
	return doc, nil
}

func parseDocument(data []byte, ext string) (map[string]any, error) {
	var doc map[string]any
	switch ext {
	case ".json":
		err := json.Unmarshal(data, &doc)
		return doc, err
	case ".yaml", ".yml":
		err := yaml.Unmarshal(data, &doc)
		return doc, err
	default:
		if err := json.Unmarshal(data, &doc); err == nil {
			return doc, nil
		}
		doc = nil
		err := yaml.Unmarshal(data, &doc)
		return doc, err
	}
}
