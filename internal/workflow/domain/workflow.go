// Package domain holds the workflow types shared by storage, the API and the editor.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Format is the serialization format of a workflow definition.
type Format string

const (
	FormatJSON Format = "JSON"
	FormatYAML Format = "YAML"
)

// ParseFormat parses a format name case-insensitively. "yml" is accepted as YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "JSON":
		return FormatJSON, nil
	case "YAML", "YML":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown workflow format %q", s)
	}
}

// FormatFromExtension guesses the format from a file name.
func FormatFromExtension(name string) (Format, error) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return "", fmt.Errorf("cannot determine workflow format of %q", name)
	}
	return ParseFormat(name[i+1:])
}

// Language is the editor language hint for the format.
func (f Format) Language() string {
	return strings.ToLower(string(f))
}

// Extension is the file extension (with dot) used for temp files and exports.
func (f Format) Extension() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// Workflow is a stored workflow definition.
type Workflow struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Description string    `json:"description,omitempty"`
	Format      Format    `json:"format"`
	Definition  string    `json:"definition"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// WorkflowUpdate is the payload of a definition save. Version is the version
// the editor loaded; a stale version is rejected.
type WorkflowUpdate struct {
	Definition string `json:"definition"`
	Version    int    `json:"version"`
}

// Input is a workflow input parameter declared in the definition.
type Input struct {
	Name     string `json:"name"`
	Label    string `json:"label,omitempty"`
	Type     string `json:"type,omitempty"`
	Required bool   `json:"required,omitempty"`
}

// DisplayLabel returns Label, falling back to Name.
func (i Input) DisplayLabel() string {
	if i.Label != "" {
		return i.Label
	}
	return i.Name
}

// TestConfiguration holds the values used when test-running a workflow.
type TestConfiguration struct {
	WorkflowID  string            `json:"workflowId"`
	Inputs      map[string]string `json:"inputs"`
	Connections map[string]string `json:"connections"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// MissingInputs returns the names of required inputs that have no value.
func (c *TestConfiguration) MissingInputs(inputs []Input) []string {
	var missing []string
	for _, in := range inputs {
		if !in.Required {
			continue
		}
		if c == nil || strings.TrimSpace(c.Inputs[in.Name]) == "" {
			missing = append(missing, in.Name)
		}
	}
	return missing
}
