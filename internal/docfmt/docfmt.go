// Package docfmt moves documents between the JSON form the schema registry
// reads and the YAML and TOML forms people like to author by hand.
//
// Every conversion goes through a generic tree (maps, slices, scalars), so
// field names and omitted fields are exactly those of the JSON encoding.
package docfmt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a document text encoding.
type Format string

// Supported formats.
const (
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
)

// ErrUnknownFormat is returned for format names and extensions docfmt does not handle.
var ErrUnknownFormat = errors.New("unknown document format")

// ParseFormat parses a format name such as "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FromPath picks a format from a file extension. Unknown extensions
// report false.
func FromPath(path string) (Format, bool) {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	return f, err == nil
}

// FromMediaType maps a Content-Type value to a format. Anything that is
// not recognizably YAML or TOML is treated as JSON.
func FromMediaType(contentType string) Format {
	mt := strings.ToLower(contentType)
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	mt = strings.TrimSpace(mt)
	switch {
	case strings.HasSuffix(mt, "yaml"), strings.HasSuffix(mt, "yml"):
		return YAML
	case strings.HasSuffix(mt, "toml"):
		return TOML
	}
	return JSON
}

// Detect guesses the format of raw text: an object opener means JSON,
// text that parses as TOML means TOML, and everything else is YAML.
func Detect(raw []byte) Format {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return JSON
	}
	var table map[string]any
	if len(trimmed) > 0 && toml.Unmarshal(trimmed, &table) == nil && len(table) > 0 {
		return TOML
	}
	return YAML
}

// ToJSON converts raw text in format f to JSON. JSON input is returned
// unchanged so that syntax errors are reported by the registry.
func ToJSON(raw []byte, f Format) ([]byte, error) {
	var tree any
	switch f {
	case JSON:
		return raw, nil
	case YAML:
		if err := yaml.Unmarshal(raw, &tree); err != nil {
			return nil, fmt.Errorf("docfmt: parse yaml: %w", err)
		}
	case TOML:
		var table map[string]any
		if err := toml.Unmarshal(raw, &table); err != nil {
			return nil, fmt.Errorf("docfmt: parse toml: %w", err)
		}
		tree = table
	default:
		return nil, fmt.Errorf("docfmt: %w: %q", ErrUnknownFormat, f)
	}

	norm, err := normalize(tree, false)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(norm)
	if err != nil {
		return nil, fmt.Errorf("docfmt: encode json: %w", err)
	}
	return out, nil
}

// Encode renders v in format f. v is first encoded as JSON, so its json
// tags decide names and omissions in every format.
func Encode(v any, f Format) ([]byte, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("docfmt: encode json: %w", err)
	}
	if f == JSON {
		return append(raw, '\n'), nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("docfmt: decode json: %w", err)
	}

	switch f {
	case YAML:
		norm, err := normalize(tree, false)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(norm); err != nil {
			return nil, fmt.Errorf("docfmt: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("docfmt: encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case TOML:
		norm, err := normalize(tree, true)
		if err != nil {
			return nil, err
		}
		if _, ok := norm.(map[string]any); !ok {
			return nil, errors.New("docfmt: toml documents must be tables")
		}
		out, err := toml.Marshal(norm)
		if err != nil {
			return nil, fmt.Errorf("docfmt: encode toml: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("docfmt: %w: %q", ErrUnknownFormat, f)
}

// normalize rewrites a decoded tree into plain JSON-compatible values:
// string-keyed maps, int64 or float64 numbers. TOML has no null, so with
// dropNulls set nil map entries are removed.
func normalize(v any, dropNulls bool) (any, error) {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			if e == nil && dropNulls {
				continue
			}
			n, err := normalize(e, dropNulls)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("docfmt: non-string key %v", k)
			}
			if e == nil && dropNulls {
				continue
			}
			n, err := normalize(e, dropNulls)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			n, err := normalize(e, dropNulls)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("docfmt: number %s: %w", x, err)
		}
		return f, nil
	}
	return v, nil
}
