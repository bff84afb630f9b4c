package app

import (
	"fmt"
	"net/http"
	"strings"
)

func (a App) index(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	if r.Method != http.MethodGet {
		errCtx := get405()
		return &ComponentResponse{
			Component: a.ComponentBuilder.Error(errCtx.Title, errCtx.Msg),
			Code:      errCtx.Code, Message: errCtx.Title, ContentType: "text/html"}
	}

	return &ComponentResponse{
		Component:   a.ComponentBuilder.Index(a.Config.Models, a.Config.DefaultModel),
		Code:        200,
		Message:     "OK",
		ContentType: "text/html"}
}

func (a App) optimize(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	if r.Method != http.MethodPost {
		errCtx := get405()
		return &ComponentResponse{
			Component: a.ComponentBuilder.Error(errCtx.Title, errCtx.Msg),
			Code:      errCtx.Code, Message: errCtx.Title, ContentType: "text/html"}
	}

	err := r.ParseForm()
	if err != nil {
		errCtx := get400()
		return &ComponentResponse{
			Component: a.ComponentBuilder.Error(errCtx.Title, errCtx.Msg),
			Code:      errCtx.Code, Message: errCtx.Title, ContentType: "text/html", Error: err}
	}

	rawPrompt := strings.TrimSpace(r.FormValue("prompt"))
	if rawPrompt == "" {
		errCtx := get400()
		return &ComponentResponse{
			Component: a.ComponentBuilder.Error(errCtx.Title, errCtx.Msg),
			Code:      errCtx.Code, Message: errCtx.Title, ContentType: "text/html"}
	}

	model := a.resolveModel(r.FormValue("model"))

	run := a.RunOptimization(r.Context(), rawPrompt, model)

	return &ComponentResponse{
		Component:   a.ComponentBuilder.Results(run),
		Code:        200,
		Message:     "OK",
		ContentType: "text/html"}
}

// resolveModel only accepts configured model ids; anything else falls back
// to the default so the form cannot smuggle arbitrary model names upstream.
func (a App) resolveModel(requested string) string {
	for i := 0; i < len(a.Config.Models); i++ {
		if requested == a.Config.Models[i] {
			return requested
		}
	}

	return a.Config.DefaultModel
}

func (a App) health(w http.ResponseWriter, r *http.Request) *ComponentResponse {
	temperature := 0.0
	msgs := []Message{{Role: "user", Content: "Reply with exactly: PromptForge Groq Ready"}}

	out, err := a.OptimizerRepo.Complete(r.Context(), a.Config.DefaultModel,
		msgs, CompletionOpts{MaxTokens: 12, Temperature: &temperature})

	if err != nil {
		return &ComponentResponse{
			Component: a.ComponentBuilder.Health(false, fmt.Sprintf("Connection failed: %s", err.Error())),
			Code:      200, Message: "OK", ContentType: "text/html", Error: err}
	}

	msg := strings.TrimSpace(out)
	if msg == "" {
		msg = "Groq connected."
	}

	return &ComponentResponse{
		Component:   a.ComponentBuilder.Health(true, fmt.Sprintf("Connected: %s", msg)),
		Code:        200,
		Message:     "OK",
		ContentType: "text/html"}
}
