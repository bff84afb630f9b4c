package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixbrock/promptforge/internal/app"
)

func testRepo(url string, slept *[]time.Duration) GroqRepo {
	return GroqRepo{
		BaseHeaders: []string{
			"Content-Type:application/json",
			"Authorization: Bearer test-key"},
		BaseUrl: url,
		Client:  &http.Client{Timeout: 5 * time.Second},
		Retry: RetryPolicy{
			Delays: []time.Duration{15 * time.Second, 30 * time.Second, 60 * time.Second, 120 * time.Second},
			Sleep:  func(d time.Duration) { *slept = append(*slept, d) },
		},
	}
}

func completionBody(content string) string {
	return fmt.Sprintf(`{"id": "cmpl-1", "choices": [{"message": {"role": "assistant", "content": %q}}]}`, content)
}

func TestCompleteRetriesOnRateLimit(t *testing.T) {
	var calls int
	var lastReq chatCompletionReq

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		err := json.NewDecoder(r.Body).Decode(&lastReq)
		assert.NoError(t, err)

		if calls <= 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error": {"message": "Rate limit reached", "code": "rate_limit_exceeded"}}`)
			return
		}

		fmt.Fprint(w, completionBody("optimized prompt"))
	}))
	defer srv.Close()

	var slept []time.Duration
	repo := testRepo(srv.URL, &slept)

	msgs := []app.Message{{Role: "user", Content: "Write a function to sort a list"}}
	out, err := repo.Complete(context.Background(), "groq/llama-3.1-8b-instant", msgs, app.CompletionOpts{})

	require.NoError(t, err)
	assert.Equal(t, "optimized prompt", out)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{15 * time.Second, 30 * time.Second, 60 * time.Second}, slept)
	assert.Equal(t, "llama-3.1-8b-instant", lastReq.Model)
}

func TestCompleteExhaustsRetries(t *testing.T) {
	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": {"message": "Rate limit reached"}}`)
	}))
	defer srv.Close()

	var slept []time.Duration
	repo := testRepo(srv.URL, &slept)

	_, err := repo.Complete(context.Background(), "llama-3.1-8b-instant",
		[]app.Message{{Role: "user", Content: "hi"}}, app.CompletionOpts{})

	require.Error(t, err)
	assert.Equal(t, 5, calls)
	assert.Equal(t, []time.Duration{15 * time.Second, 30 * time.Second, 60 * time.Second, 120 * time.Second}, slept)
}

func TestCompleteDoesNotRetryOtherErrors(t *testing.T) {
	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"message": "model not found"}}`)
	}))
	defer srv.Close()

	var slept []time.Duration
	repo := testRepo(srv.URL, &slept)

	_, err := repo.Complete(context.Background(), "llama-3.1-8b-instant",
		[]app.Message{{Role: "user", Content: "hi"}}, app.CompletionOpts{})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, slept)
}

func TestCompleteRejectsEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": "cmpl-1", "choices": []}`)
	}))
	defer srv.Close()

	var slept []time.Duration
	repo := testRepo(srv.URL, &slept)

	_, err := repo.Complete(context.Background(), "llama-3.1-8b-instant",
		[]app.Message{{Role: "user", Content: "hi"}}, app.CompletionOpts{})

	require.Error(t, err)
}

func TestCompleteSendsOpts(t *testing.T) {
	var lastReq chatCompletionReq

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := json.NewDecoder(r.Body).Decode(&lastReq)
		assert.NoError(t, err)
		fmt.Fprint(w, completionBody("PromptForge Groq Ready"))
	}))
	defer srv.Close()

	var slept []time.Duration
	repo := testRepo(srv.URL, &slept)

	temperature := 0.0
	out, err := repo.Complete(context.Background(), "llama-3.1-8b-instant",
		[]app.Message{{Role: "user", Content: "Reply with exactly: PromptForge Groq Ready"}},
		app.CompletionOpts{MaxTokens: 12, Temperature: &temperature})

	require.NoError(t, err)
	assert.Equal(t, "PromptForge Groq Ready", out)
	assert.Equal(t, 12, lastReq.MaxTokens)
	require.NotNil(t, lastReq.Temperature)
	assert.Equal(t, 0.0, *lastReq.Temperature)
}

func TestNormalizeModel(t *testing.T) {
	assert.Equal(t, "llama-3.1-8b-instant", NormalizeModel("groq/llama-3.1-8b-instant"))
	assert.Equal(t, "llama-3.1-8b-instant", NormalizeModel(" llama-3.1-8b-instant "))
}

func TestRateLimited(t *testing.T) {
	assert.True(t, rateLimited(ResponseError{StatusCode: 429, Body: ""}))
	assert.True(t, rateLimited(ResponseError{StatusCode: 400, Body: "rate limit reached for model"}))
	assert.False(t, rateLimited(ResponseError{StatusCode: 500, Body: "internal error"}))
}
