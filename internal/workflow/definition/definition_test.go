package definition

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vihar-s1/bytechef/internal/workflow/domain"
)

const sampleJSON = `{
  "label": "Order sync",
  "description": "Copies new orders",
  "inputs": [
    {"name": "email", "label": "E-mail", "type": "string", "required": true},
    {"name": "limit", "type": "integer"}
  ],
  "tasks": [
    {"name": "fetch", "type": "http/v1/get", "parameters": {"url": "https://example.com/${email}"}},
    {"name": "log", "type": "logger/v1/info", "parameters": {"text": "done"}}
  ]
}`

const sampleYAML = `label: Order sync
inputs:
  - name: email
    required: true
tasks:
  - name: fetch
    type: http/v1/get
    parameters:
      url: https://example.com
`

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		format domain.Format
		text   string
		valid  bool
	}{
		{"json object", domain.FormatJSON, `{"a":1}`, true},
		{"json scalar", domain.FormatJSON, `42`, true},
		{"json unterminated", domain.FormatJSON, `{invalid`, false},
		{"json bare key", domain.FormatJSON, `{a:`, false},
		{"json empty", domain.FormatJSON, ``, false},
		{"yaml mapping", domain.FormatYAML, sampleYAML, true},
		{"yaml empty", domain.FormatYAML, ``, true},
		{"yaml unclosed flow sequence", domain.FormatYAML, "key: [unclosed", false},
		{"yaml integer keys", domain.FormatYAML, "label: x\nretries:\n  1: first\n", true},
		{"yaml infinity", domain.FormatYAML, "limit: .inf\n", true},
		{"yaml nan", domain.FormatYAML, "limit: .nan\n", true},
		{"unknown format", domain.Format("XML"), `<a/>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.format, tt.text)
			if tt.valid {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, domain.IsInvalidDefinition(err), "expected InvalidDefinitionError, got %T", err)
		})
	}
}

func TestParse_JSON(t *testing.T) {
	doc, err := Parse(domain.FormatJSON, sampleJSON)
	require.NoError(t, err)

	require.Equal(t, "Order sync", doc.Label)
	require.Equal(t, "Copies new orders", doc.Description)
	require.Equal(t, []domain.Input{
		{Name: "email", Label: "E-mail", Type: "string", Required: true},
		{Name: "limit", Type: "integer"},
	}, doc.Inputs)

	require.Len(t, doc.Tasks, 2)
	require.Equal(t, "fetch", doc.Tasks[0].Name)
	require.Equal(t, "http/v1/get", doc.Tasks[0].Type)
	require.Equal(t, "https://example.com/${email}", doc.Tasks[0].Parameters["url"])
	require.Equal(t, "log", doc.Tasks[1].Name)
}

func TestParse_YAML(t *testing.T) {
	doc, err := Parse(domain.FormatYAML, sampleYAML)
	require.NoError(t, err)

	require.Equal(t, "Order sync", doc.Label)
	require.Len(t, doc.Inputs, 1)
	require.True(t, doc.Inputs[0].Required)
	require.Len(t, doc.Tasks, 1)
	require.Equal(t, "https://example.com", doc.Tasks[0].Parameters["url"])
}

func TestParse_YAMLNotRepresentableInJSON(t *testing.T) {
	doc, err := Parse(domain.FormatYAML, `label: Retry
tasks:
  - name: wait
    type: delay/v1/sleep
    parameters:
      backoff:
        1: 10s
        2: 30s
      limit: .inf
      lower: -.inf
`)
	require.NoError(t, err)

	require.Equal(t, "Retry", doc.Label)
	require.Len(t, doc.Tasks, 1)
	params := doc.Tasks[0].Parameters
	require.Equal(t, map[string]any{"1": "10s", "2": "30s"}, params["backoff"])
	require.Equal(t, ".inf", params["limit"])
	require.Equal(t, "-.inf", params["lower"])
}

func TestParse_IgnoresNonObjectEntries(t *testing.T) {
	doc, err := Parse(domain.FormatJSON, `{"inputs": ["x", {"name": "y"}], "tasks": [1, {"name": "t"}]}`)
	require.NoError(t, err)
	require.Len(t, doc.Inputs, 1)
	require.Equal(t, "y", doc.Inputs[0].Name)
	require.Len(t, doc.Tasks, 1)
	require.Nil(t, doc.Tasks[0].Parameters)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse(domain.FormatJSON, `{"a":`)
	require.Error(t, err)
	require.True(t, domain.IsInvalidDefinition(err))
}
