// Package definition parses workflow definition text in its declared format.
//
// Validation is a generic structured-data parse: any well-formed JSON or YAML
// document is accepted. Parse additionally extracts the parts of the
// definition that the editor and the test executor care about.
package definition

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/vihar-s1/bytechef/internal/workflow/domain"
)

var errMalformedJSON = errors.New("malformed JSON")

// Task is one task entry of a definition.
type Task struct {
	Name       string
	Type       string
	Label      string
	Parameters map[string]any
}

// Document is the parsed view of a definition.
type Document struct {
	Label       string
	Description string
	Inputs      []domain.Input
	Tasks       []Task
}

// Validate reports whether text is syntactically valid in the given format.
// The returned error is an *domain.InvalidDefinitionError.
func Validate(format domain.Format, text string) error {
	_, err := decode(format, text)
	return err
}

// Parse validates text and extracts label, description, inputs and tasks.
func Parse(format domain.Format, text string) (*Document, error) {
	js, err := toJSON(format, text)
	if err != nil {
		return nil, err
	}

	root := gjson.Parse(js)
	doc := &Document{
		Label:       root.Get("label").String(),
		Description: root.Get("description").String(),
	}

	root.Get("inputs").ForEach(func(_, v gjson.Result) bool {
		if !v.IsObject() {
			return true
		}
		doc.Inputs = append(doc.Inputs, domain.Input{
			Name:     v.Get("name").String(),
			Label:    v.Get("label").String(),
			Type:     v.Get("type").String(),
			Required: v.Get("required").Bool(),
		})
		return true
	})

	root.Get("tasks").ForEach(func(_, v gjson.Result) bool {
		if !v.IsObject() {
			return true
		}
		task := Task{
			Name:  v.Get("name").String(),
			Type:  v.Get("type").String(),
			Label: v.Get("label").String(),
		}
		if params, ok := v.Get("parameters").Value().(map[string]any); ok {
			task.Parameters = params
		}
		doc.Tasks = append(doc.Tasks, task)
		return true
	})

	return doc, nil
}

// decode parses text in its format. JSON is only checked and comes back as
// the text itself; YAML comes back as the decoded value.
func decode(format domain.Format, text string) (any, error) {
	switch format {
	case domain.FormatJSON:
		if !gjson.Valid(text) {
			return nil, &domain.InvalidDefinitionError{Format: format, Err: errMalformedJSON}
		}
		return text, nil
	case domain.FormatYAML:
		var v any
		if err := yaml.Unmarshal([]byte(text), &v); err != nil {
			return nil, &domain.InvalidDefinitionError{Format: format, Err: err}
		}
		return v, nil
	default:
		return nil, &domain.InvalidDefinitionError{Format: format, Err: fmt.Errorf("unsupported format %q", format)}
	}
}

// toJSON validates text and returns it as JSON. YAML is decoded, made
// JSON-representable and re-encoded.
func toJSON(format domain.Format, text string) (string, error) {
	v, err := decode(format, text)
	if err != nil {
		return "", err
	}
	if js, ok := v.(string); ok && format == domain.FormatJSON {
		return js, nil
	}
	data, err := json.Marshal(jsonSafe(v))
	if err != nil {
		return "", &domain.InvalidDefinitionError{Format: format, Err: err}
	}
	return string(data), nil
}

// jsonSafe rewrites YAML values JSON cannot hold: non-string map keys are
// stringified and non-finite floats become ".inf", "-.inf" or ".nan".
func jsonSafe(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = jsonSafe(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = jsonSafe(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = jsonSafe(val)
		}
		return out
	case float64:
		switch {
		case math.IsNaN(t):
			return ".nan"
		case math.IsInf(t, 1):
			return ".inf"
		case math.IsInf(t, -1):
			return "-.inf"
		}
		return t
	default:
		return v
	}
}
