package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/felixbrock/promptforge/internal/domain"
	"github.com/felixbrock/promptforge/internal/repair"
)

// batchSize caps how many optimizer calls run concurrently. Groq free tier
// throttles bursts hard, so modes go out two at a time with the pacer
// waiting between batches.
const batchSize = 2

const (
	codingSystem = "You are a world-class coding agent prompt engineer. Optimize for clarity, " +
		"step-by-step reasoning, strict JSON/YAML output, tool calls if needed, " +
		"error handling, acceptance criteria."

	researchSystem = "You are an expert AI research prompt optimizer. Include hypothesis, " +
		"variables/definitions, methodology, reproducibility notes, expected analysis, " +
		"success metrics."

	conciseSystem = "Make the shortest possible effective version of this prompt while preserving " +
		"100% intent. Remove fluff, combine ideas."

	structuredSystem = "Force perfect structure: ROLE + CLEAR TASK + STEP-BY-STEP INSTRUCTIONS + " +
		"OUTPUT FORMAT + CONSTRAINTS + 1-2 EXAMPLES."
)

func systemPrompt(mode domain.Mode) string {
	switch mode {
	case domain.ModeCoding:
		return codingSystem
	case domain.ModeResearch:
		return researchSystem
	case domain.ModeConcise:
		return conciseSystem
	case domain.ModeStructured:
		return structuredSystem
	default:
		return conciseSystem
	}
}

const judgeSystem = "You are a prompt quality judge. " +
	"Score each variant 1-10 on: clarity, specificity, token efficiency, expected performance. " +
	"Respond with ONLY valid JSON and no markdown/code fences. " +
	"Use this exact schema with double quotes: " +
	`{"scores": {"coding": 9, "research": 8, "concise": 7, "structured": 8}, ` +
	`"winner": "coding", "reason": "brief explanation"}.`

// RunOptimization executes the fixed pipeline: optimize -> judge -> fuse.
// Every stage isolates its own failure; the run always comes back complete.
func (a App) RunOptimization(ctx context.Context, rawPrompt string, model string) domain.OptimizationRun {
	run := domain.OptimizationRun{
		Id:        uuid.New().String(),
		RawPrompt: rawPrompt,
		Model:     model,
	}

	run.Variants = a.runOptimizers(ctx, rawPrompt, model)
	run.Judgment = a.judge(ctx, run.Variants, model)
	run.Fusion = a.fuse(ctx, run.Variants, model)
	run.Tokens = tokenStats(rawPrompt, run.Fusion)

	if a.EventRepo != nil {
		err := a.EventRepo.Capture("optimization_completed", run.Id)
		if err != nil {
			slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		}
	}

	return run
}

// runOptimizers produces one variant per mode, two modes per batch. A mode
// that fails only error-marks its own variant.
func (a App) runOptimizers(ctx context.Context, rawPrompt string, model string) []domain.Variant {
	modes := domain.Modes()
	variants := make([]domain.Variant, len(modes))

	for start := 0; start < len(modes); start += batchSize {
		if a.Pacer != nil {
			err := a.Pacer.Wait(ctx)
			if err != nil {
				slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
			}
		}

		end := start + batchSize
		if end > len(modes) {
			end = len(modes)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				variants[i] = a.optimizeMode(gctx, rawPrompt, modes[i], model)
				return nil
			})
		}

		err := g.Wait()
		if err != nil {
			slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		}
	}

	return variants
}

func (a App) optimizeMode(ctx context.Context, rawPrompt string, mode domain.Mode, model string) domain.Variant {
	msgs := []Message{
		{Role: "system", Content: systemPrompt(mode)},
		{Role: "user", Content: rawPrompt},
	}

	text, err := a.OptimizerRepo.Complete(ctx, model, msgs, CompletionOpts{})

	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s optimizer failed: %s", mode, err.Error()))
		return domain.Variant{Mode: mode, Text: fmt.Sprintf("Error: %s", err.Error()), Failed: true}
	}

	return domain.Variant{Mode: mode, Text: text}
}

type judgeReq struct {
	Instructions string            `json:"instructions"`
	Variants     map[string]string `json:"variants"`
}

// judge scores the variants in a single call. Parse failures fall back to
// the default mid-range judgment; a winner outside the submitted modes
// resolves to the highest-scoring mode.
func (a App) judge(ctx context.Context, variants []domain.Variant, model string) domain.Judgment {
	modes := domain.Modes()

	body := judgeReq{
		Instructions: "Judge the following prompt variants and pick a single best winner.",
		Variants:     make(map[string]string, len(variants)),
	}
	for i := 0; i < len(variants); i++ {
		body.Variants[string(variants[i].Mode)] = variants[i].Text
	}

	content, err := json.Marshal(body)
	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		return repair.DefaultJudgment(modes)
	}

	msgs := []Message{
		{Role: "system", Content: judgeSystem},
		{Role: "user", Content: string(content)},
	}

	out, err := a.OptimizerRepo.Complete(ctx, model, msgs, CompletionOpts{})

	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: judge failed: %s", err.Error()))
		return repair.DefaultJudgment(modes)
	}

	judgment := repair.ParseJudgment(out, modes)
	judgment.Winner = resolveWinner(judgment, modes)

	return judgment
}

// resolveWinner keeps a winner naming a submitted mode (case-insensitive),
// keeps the unknown marker, and otherwise falls back to the highest-scoring
// mode with ties broken by mode order.
func resolveWinner(judgment domain.Judgment, modes []domain.Mode) string {
	if judgment.Winner == domain.UnknownWinner {
		return judgment.Winner
	}

	normalized := strings.ToLower(strings.TrimSpace(judgment.Winner))
	for i := 0; i < len(modes); i++ {
		if normalized == string(modes[i]) {
			return string(modes[i])
		}
	}

	winner := modes[0]
	for i := 1; i < len(modes); i++ {
		if judgment.Scores[modes[i]] > judgment.Scores[winner] {
			winner = modes[i]
		}
	}

	return string(winner)
}

// fuse merges the strongest elements of all variants into one prompt.
func (a App) fuse(ctx context.Context, variants []domain.Variant, model string) string {
	parts := make([]string, len(variants))
	for i := 0; i < len(variants); i++ {
		parts[i] = fmt.Sprintf("### %s Variant\n%s", variants[i].Mode, variants[i].Text)
	}

	userPrompt := fmt.Sprintf(
		"Combine the best parts of these %d optimized prompts into one ultimate, balanced version:\n\n%s",
		len(variants), strings.Join(parts, "\n\n---\n\n"))

	out, err := a.OptimizerRepo.Complete(ctx, model, []Message{{Role: "user", Content: userPrompt}}, CompletionOpts{})

	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: fusion failed: %s", err.Error()))
		return fmt.Sprintf("Error: %s", err.Error())
	}

	return out
}
