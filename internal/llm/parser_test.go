package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare json untouched",
			input:    `[{"a":1}]`,
			expected: `[{"a":1}]`,
		},
		{
			name:     "fenced with language tag",
			input:    "```json\n[{\"a\":1}]\n```",
			expected: `[{"a":1}]`,
		},
		{
			name:     "fenced without tag",
			input:    "```\n{\"a\":1}\n```",
			expected: `{"a":1}`,
		},
		{
			name:     "surrounding whitespace",
			input:    "  \n[1,2]\n  ",
			expected: "[1,2]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanResponse(tt.input))
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		arr, err := ExtractJSONArray(`[{"category":"Food & Dining"},{"category":"Transport"}]`)
		require.NoError(t, err)
		assert.Len(t, arr, 2)
	})

	t.Run("wrapped under transactions key", func(t *testing.T) {
		arr, err := ExtractJSONArray(`{"transactions":[{"amount":120.5}]}`)
		require.NoError(t, err)
		assert.Len(t, arr, 1)
	})

	t.Run("fenced and wrapped", func(t *testing.T) {
		arr, err := ExtractJSONArray("```json\n{\"results\": [{\"a\":1},{\"a\":2},{\"a\":3}]}\n```")
		require.NoError(t, err)
		assert.Len(t, arr, 3)
	})

	t.Run("array embedded in prose", func(t *testing.T) {
		arr, err := ExtractJSONArray(`Here are the results: [{"a":1}] as requested.`)
		require.NoError(t, err)
		assert.Len(t, arr, 1)
	})

	t.Run("single object becomes one element", func(t *testing.T) {
		arr, err := ExtractJSONArray(`{"category":"Shopping","confidence":0.8}`)
		require.NoError(t, err)
		assert.Len(t, arr, 1)
	})

	t.Run("garbage is an error", func(t *testing.T) {
		_, err := ExtractJSONArray("the model refused to answer")
		assert.Error(t, err)
	})

	t.Run("empty is an error", func(t *testing.T) {
		_, err := ExtractJSONArray("")
		assert.Error(t, err)
	})
}
