package app

import (
	"strings"

	"github.com/felixbrock/promptforge/internal/domain"
)

// EstimateTokens roughly estimates the token count of a text.
// Approximation: words + chars/4, consistent with typical tokenizers.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	return len(strings.Fields(text)) + len(text)/4
}

func tokenStats(rawPrompt string, fusion string) domain.TokenStats {
	original := EstimateTokens(rawPrompt)
	fused := EstimateTokens(fusion)

	return domain.TokenStats{
		OriginalTokens: original,
		FusionTokens:   fused,
		Saved:          original - fused,
	}
}
