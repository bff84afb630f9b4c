package repair

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixbrock/promptforge/internal/domain"
)

func TestObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain_object",
			input: `{"winner": "coding"}`,
			want:  `{"winner": "coding"}`,
		},
		{
			name:  "fenced_json",
			input: "```json\n{\"winner\": \"coding\"}\n```",
			want:  `{"winner": "coding"}`,
		},
		{
			name:  "fenced_without_language",
			input: "```\n{\"winner\": \"concise\"}\n```",
			want:  `{"winner": "concise"}`,
		},
		{
			name:  "trailing_comma_object",
			input: `{"winner": "coding",}`,
			want:  `{"winner": "coding"}`,
		},
		{
			name:  "trailing_comma_array",
			input: `{"items": [1, 2, 3,],}`,
			want:  `{"items": [1, 2, 3]}`,
		},
		{
			name:  "surrounding_prose",
			input: `Here is my verdict: {"winner": "research"} Hope that helps!`,
			want:  `{"winner": "research"}`,
		},
		{
			name:  "comma_inside_string_kept",
			input: `{"reason": "clear, specific"}`,
			want:  `{"reason": "clear, specific"}`,
		},
		{
			name:  "brace_inside_string_before_object",
			input: `The format "{}" is used here: {"winner": "structured"}`,
			want:  `{"winner": "structured"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Object(tt.input))
		})
	}
}

func TestParseJudgment(t *testing.T) {
	modes := domain.Modes()

	t.Run("fenced_with_trailing_comma", func(t *testing.T) {
		j := ParseJudgment("```json\n{\"winner\": \"coding\",}\n```", modes)

		assert.Equal(t, "coding", j.Winner)
		for _, m := range modes {
			assert.Equal(t, domain.DefaultScore, j.Scores[m])
		}
	})

	t.Run("full_judgment", func(t *testing.T) {
		raw := `{"scores": {"coding": 9, "research": 8, "concise": 7, "structured": 8},
			"winner": "coding", "reason": "most actionable"}`

		j := ParseJudgment(raw, modes)

		assert.Equal(t, "coding", j.Winner)
		assert.Equal(t, "most actionable", j.Reason)
		assert.Equal(t, 9, j.Scores[domain.ModeCoding])
		assert.Equal(t, 8, j.Scores[domain.ModeResearch])
		assert.Equal(t, 7, j.Scores[domain.ModeConcise])
		assert.Equal(t, 8, j.Scores[domain.ModeStructured])
	})

	t.Run("single_quotes_normalized", func(t *testing.T) {
		j := ParseJudgment(`{'winner': 'concise', 'scores': {'concise': 10}}`, modes)

		assert.Equal(t, "concise", j.Winner)
		assert.Equal(t, 10, j.Scores[domain.ModeConcise])
		assert.Equal(t, domain.DefaultScore, j.Scores[domain.ModeCoding])
	})

	t.Run("garbage_returns_default", func(t *testing.T) {
		j := ParseJudgment("sorry, I cannot judge these prompts today", modes)

		assert.Equal(t, domain.UnknownWinner, j.Winner)
		for _, m := range modes {
			assert.Equal(t, domain.DefaultScore, j.Scores[m])
		}
	})

	t.Run("empty_input_returns_default", func(t *testing.T) {
		j := ParseJudgment("", modes)

		assert.Equal(t, domain.UnknownWinner, j.Winner)
	})
}
