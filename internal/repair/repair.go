// Package repair turns malformed JSON-like model output into typed values.
// Models wrap JSON in markdown fences, leave trailing commas and sometimes
// use single quotes; parsing here is tolerant and never fails hard.
package repair

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/felixbrock/promptforge/internal/domain"
)

// Object extracts the most plausible JSON object from raw model output.
// It strips markdown code fences, slices the text down to the outermost
// brace pair and removes trailing commas before closing brackets.
func Object(raw string) string {
	text := strings.TrimSpace(raw)
	text = stripFences(text)

	start := objectStart(text)
	end := objectEnd(text)
	if start != -1 && end != -1 && end > start {
		text = text[start : end+1]
	}

	return stripTrailingCommas(text)
}

func stripFences(text string) string {
	if strings.HasPrefix(text, "```") {
		text = text[3:]
		if strings.HasPrefix(strings.ToLower(text), "json") {
			text = text[4:]
		}
	}
	text = strings.TrimSpace(text)
	if strings.HasSuffix(text, "```") {
		text = text[:len(text)-3]
	}

	return strings.TrimSpace(text)
}

// objectStart returns the index of the first top-level '{', ignoring
// braces inside string literals.
func objectStart(s string) int {
	inString := false
	escape := false

	for i := 0; i < len(s); i++ {
		b := s[i]

		if escape {
			escape = false
			continue
		}

		if inString {
			if b == '\\' {
				escape = true
			} else if b == '"' {
				inString = false
			}
			continue
		}

		if b == '"' {
			inString = true
			continue
		}

		if b == '{' {
			return i
		}
	}

	return -1
}

func objectEnd(s string) int {
	return strings.LastIndexByte(s, '}')
}

// stripTrailingCommas removes commas directly preceding a closing brace or
// bracket. Commas inside string literals are left untouched.
func stripTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escape := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			b.WriteByte(c)
			if escape {
				escape = false
			} else if c == '\\' {
				escape = true
			} else if c == '"' {
				inString = false
			}
			continue
		}

		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}

		if c == ',' {
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}

		b.WriteByte(c)
	}

	return b.String()
}

type judgmentProto struct {
	Scores map[string]float64 `json:"scores"`
	Winner string             `json:"winner"`
	Reason string             `json:"reason"`
}

// DefaultJudgment is the fallback returned for unparseable judge output:
// every mode at the mid-range score with an unknown winner.
func DefaultJudgment(modes []domain.Mode) domain.Judgment {
	scores := make(map[domain.Mode]int, len(modes))
	for i := 0; i < len(modes); i++ {
		scores[modes[i]] = domain.DefaultScore
	}

	return domain.Judgment{Scores: scores, Winner: domain.UnknownWinner}
}

// ParseJudgment parses judge output into a Judgment. On unparseable input
// it returns DefaultJudgment rather than an error; missing per-mode scores
// are filled with the default mid-range score.
func ParseJudgment(raw string, modes []domain.Mode) domain.Judgment {
	cleaned := Object(raw)

	var proto judgmentProto
	err := json.Unmarshal([]byte(cleaned), &proto)

	if err != nil {
		// Second pass for model output quoted with single quotes.
		err = json.Unmarshal([]byte(strings.ReplaceAll(cleaned, "'", `"`)), &proto)
	}

	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: judgment parse failed: %s", err.Error()))
		return DefaultJudgment(modes)
	}

	scores := make(map[domain.Mode]int, len(modes))
	for i := 0; i < len(modes); i++ {
		scores[modes[i]] = domain.DefaultScore
		if v, ok := proto.Scores[string(modes[i])]; ok {
			scores[modes[i]] = int(v)
		}
	}

	return domain.Judgment{Scores: scores, Winner: strings.TrimSpace(proto.Winner), Reason: proto.Reason}
}
