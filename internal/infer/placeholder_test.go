package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePlaceholder(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  Placeholder
		ok    bool
	}{
		{
			name:  "explicit",
			value: "{step_3_result}",
			want:  Placeholder{Kind: PlaceholderExplicit, StepID: 3},
			ok:    true,
		},
		{
			name:  "explicit embedded in expression",
			value: "{step_12_result} * 2",
			want:  Placeholder{Kind: PlaceholderExplicit, StepID: 12},
			ok:    true,
		},
		{
			name:  "explicit case-insensitive",
			value: "{STEP_2_RESULT}",
			want:  Placeholder{Kind: PlaceholderExplicit, StepID: 2},
			ok:    true,
		},
		{
			name:  "typed",
			value: "<from_previous_web_search>",
			want:  Placeholder{Kind: PlaceholderTyped, Tool: "web_search"},
			ok:    true,
		},
		{
			name:  "contextual",
			value: "<from_context>",
			want:  Placeholder{Kind: PlaceholderContextual},
			ok:    true,
		},
		{
			name:  "iteration",
			value: "<iterate:rows>",
			want:  Placeholder{Kind: PlaceholderIteration, Field: "rows"},
			ok:    true,
		},
		{
			name:  "literal text",
			value: "population of Paris",
			ok:    false,
		},
		{
			name:  "literal braces",
			value: "{not_a_placeholder}",
			ok:    false,
		},
		{
			name:  "empty",
			value: "",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePlaceholder(tt.value)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
