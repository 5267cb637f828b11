package project

import (
	"fmt"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/muxer/internal/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// Parse decodes a project file into a Spec and reports the deprecated keys
// it uses. An empty document yields an empty Spec. Malformed YAML or a
// document that is not a mapping is reported as *errors.ParseError.
func Parse(data []byte) (Spec, []string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		perr := errors.NewParseError("invalid YAML", err)
		if m := yamlLineRegex.FindStringSubmatch(err.Error()); m != nil {
			line, _ := strconv.Atoi(m[1])
			perr = perr.WithLine(line)
		}
		return nil, nil, perr
	}

	if len(doc.Content) == 0 {
		return Spec{}, []string{}, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		// A document containing only "~" or comments is as good as empty.
		if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
			return Spec{}, []string{}, nil
		}
		return nil, nil, errors.NewParseError("project file must be a mapping of keys to values", nil).
			WithLine(root.Line)
	}

	var raw map[string]any
	if err := root.Decode(&raw); err != nil {
		return nil, nil, errors.NewParseError("invalid YAML", err).WithLine(root.Line)
	}

	spec := Spec(normalizeMap(raw))
	return spec, Deprecations(spec), nil
}

// normalize converts YAML mappings with non-string keys (window names such
// as "1:") to map[string]any so later stages deal with one map type.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalizeMap(t)
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}
