package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/felixbrock/promptforge/internal/app"
)

const groqBaseUrl = "https://api.groq.com/openai/v1"

// RetryPolicy retries rate-limited completions along a fixed backoff
// sequence. Sleep is injectable so tests can run on a fake clock.
type RetryPolicy struct {
	Delays []time.Duration
	Sleep  func(time.Duration)
}

// DefaultRetryPolicy matches the Groq free tier: four waits of 15s, 30s,
// 60s and 120s before giving up.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Delays: []time.Duration{15 * time.Second, 30 * time.Second, 60 * time.Second, 120 * time.Second},
		Sleep:  time.Sleep,
	}
}

type GroqRepo struct {
	BaseHeaders []string
	BaseUrl     string
	Client      *http.Client
	Retry       RetryPolicy
}

type chatCompletionReq struct {
	Model       string        `json:"model"`
	Messages    []app.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatChoice struct {
	Message app.Message `json:"message"`
}

type chatCompletion struct {
	Id      string       `json:"id"`
	Choices []chatChoice `json:"choices"`
}

// NewGroqRepo builds a repo against the hosted Groq endpoint.
func NewGroqRepo(apiKey string, retry RetryPolicy) GroqRepo {
	return GroqRepo{
		BaseHeaders: []string{
			"Content-Type:application/json",
			fmt.Sprintf("Authorization: Bearer %s", apiKey)},
		BaseUrl: groqBaseUrl,
		Client:  &http.Client{Timeout: 90 * time.Second},
		Retry:   retry,
	}
}

// NormalizeModel strips the litellm-style "groq/" prefix; the REST endpoint
// expects bare model ids.
func NormalizeModel(model string) string {
	return strings.TrimPrefix(strings.TrimSpace(model), "groq/")
}

// Complete issues one chat completion, retrying rate-limited attempts along
// the configured backoff sequence before surfacing the last error.
func (r GroqRepo) Complete(ctx context.Context, model string, msgs []app.Message, opts app.CompletionOpts) (string, error) {
	body, err := json.Marshal(chatCompletionReq{
		Model:       NormalizeModel(model),
		Messages:    msgs,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})

	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/chat/completions", r.BaseUrl)

	for attempt := 0; ; attempt++ {
		completion, err := request[chatCompletion](ctx, r.Client,
			reqConfig{Method: "POST", Url: url, Headers: r.BaseHeaders, Body: body}, 200)

		if err != nil {
			if rateLimited(err) && attempt < len(r.Retry.Delays) {
				delay := r.Retry.Delays[attempt]
				slog.Info(fmt.Sprintf("Rate limit hit - retry %d/%d in %s", attempt+1, len(r.Retry.Delays), delay))
				sleep := r.Retry.Sleep
				if sleep == nil {
					sleep = time.Sleep
				}
				sleep(delay)
				continue
			}
			return "", err
		}

		if len(completion.Choices) == 0 {
			return "", errors.New("unexpected chat completion state error")
		}

		return completion.Choices[0].Message.Content, nil
	}
}

// rateLimited reports whether an error is a rate-limit signal: a 429 status,
// or a provider message naming the limit.
func rateLimited(err error) bool {
	var respErr ResponseError
	if errors.As(err, &respErr) {
		if respErr.StatusCode == http.StatusTooManyRequests {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		(strings.Contains(msg, "rate") && strings.Contains(msg, "limit"))
}
