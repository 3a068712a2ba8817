package hints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
		wantErr  bool
	}{
		{
			name:     "plain object",
			response: `{"a": 1}`,
			want:     `{"a": 1}`,
		},
		{
			name:     "plain array",
			response: `[{"a": 1}]`,
			want:     `[{"a": 1}]`,
		},
		{
			name:     "markdown fenced",
			response: "Here you go:\n```json\n[{\"a\": 1}]\n```",
			want:     `[{"a": 1}]`,
		},
		{
			name:     "think tags stripped",
			response: "<think>reasoning about keys</think>\n{\"a\": 1}",
			want:     `{"a": 1}`,
		},
		{
			name:     "nested braces",
			response: `prefix {"a": {"b": [1, 2]}} suffix`,
			want:     `{"a": {"b": [1, 2]}}`,
		},
		{
			name:     "braces inside strings",
			response: `{"a": "value with } brace"}`,
			want:     `{"a": "value with } brace"}`,
		},
		{
			name:     "no json",
			response: "I cannot suggest any keys.",
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.response)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseJSONResponse(t *testing.T) {
	type pair struct {
		Left  string `json:"left"`
		Right string `json:"right"`
	}

	got, err := ParseJSONResponse[[]pair]("```json\n[{\"left\": \"a\", \"right\": \"b\"}]\n```")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Left)
	assert.Equal(t, "b", got[0].Right)

	_, err = ParseJSONResponse[[]pair](`{"left": "not an array"}`)
	assert.Error(t, err)
}
