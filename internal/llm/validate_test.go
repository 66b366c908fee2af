package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

var verdictSchema = &Schema{
	Name: "test-verdict",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"correct":  map[string]any{"type": "boolean"},
			"feedback": map[string]any{"type": "string"},
			"level":    map[string]any{"type": "string", "enum": []any{"low", "high"}},
		},
		"required":             []any{"correct", "feedback"},
		"additionalProperties": false,
	},
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"correct":true,"feedback":"ok"}`, false},
		{"valid with optional", `{"correct":false,"feedback":"no","level":"low"}`, false},
		{"missing required", `{"correct":true}`, true},
		{"wrong type", `{"correct":"yes","feedback":"ok"}`, true},
		{"bad enum", `{"correct":true,"feedback":"ok","level":"mid"}`, true},
		{"extra field", `{"correct":true,"feedback":"ok","x":1}`, true},
		{"malformed", `{"correct":`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(verdictSchema, json.RawMessage(tt.raw))
			if tt.wantErr {
				var invalid *ErrInvalidResponse
				assert.ErrorAs(t, err, &invalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateResponseNilSchema(t *testing.T) {
	assert.NoError(t, validateResponse(nil, json.RawMessage(`not json`)))
}
