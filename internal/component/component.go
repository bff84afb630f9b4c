// Package component renders the PromptForge views as templ components.
package component

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/felixbrock/promptforge/internal/domain"
)

const pageStyle = `body { background-color: #0e1117; color: #e0e0e0; font-family: sans-serif; margin: 2rem auto; max-width: 60rem; }
h1 { color: #58a6ff; text-align: center; }
.subtitle { color: #8b949e; text-align: center; }
textarea, select { background-color: #21262d; color: #c9d1d9; border: 1px solid #30363d; border-radius: 8px; width: 100%; }
button { background-color: #238636; color: white; border-radius: 8px; padding: 0.6rem 1.2rem; border: 0; }
pre { background-color: #161b22; border: 1px solid #30363d; border-radius: 8px; padding: 1rem; white-space: pre-wrap; }
.caption { color: #8b949e; font-size: 0.85rem; }
.error { color: #f85149; }`

func page(title string, body func(w io.Writer) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			"<!DOCTYPE html><html><head><title>%s</title><style>%s</style></head><body>",
			templ.EscapeString(title), pageStyle)
		if err != nil {
			return err
		}

		err = body(w)
		if err != nil {
			return err
		}

		_, err = io.WriteString(w, "</body></html>")
		return err
	})
}

// Index renders the prompt form with the model selector.
func Index(models []string, defaultModel string) templ.Component {
	return page("PromptForge Aggregator", func(w io.Writer) error {
		_, err := io.WriteString(w,
			`<h1>PromptForge Aggregator</h1>`+
				`<p class="subtitle">Groq-powered prompt optimizer</p>`+
				`<form method="post" action="/optimize">`+
				`<label for="model">Choose model</label><br/>`+
				`<select id="model" name="model">`)
		if err != nil {
			return err
		}

		for i := 0; i < len(models); i++ {
			selected := ""
			if models[i] == defaultModel {
				selected = " selected"
			}
			_, err = fmt.Fprintf(w, `<option value="%s"%s>%s</option>`,
				templ.EscapeString(models[i]), selected, templ.EscapeString(models[i]))
			if err != nil {
				return err
			}
		}

		_, err = io.WriteString(w,
			`</select><br/><br/>`+
				`<label for="prompt">Paste your raw prompt below</label><br/>`+
				`<textarea id="prompt" name="prompt" rows="10" `+
				`placeholder="Paste your raw prompt here... e.g. 'Write a Python function to sort a list'"></textarea><br/><br/>`+
				`<button type="submit">Optimize Now</button>`+
				`</form>`)
		return err
	})
}

// Results renders one completed optimization run: the four variants, the
// judged winner and the fusion block with token captions.
func Results(run domain.OptimizationRun) templ.Component {
	return page("PromptForge Results", func(w io.Writer) error {
		_, err := io.WriteString(w, `<h1>Optimized Prompt Variants</h1>`)
		if err != nil {
			return err
		}

		for i := 0; i < len(run.Variants); i++ {
			v := run.Variants[i]
			class := ""
			if v.Failed {
				class = ` class="error"`
			}
			_, err = fmt.Fprintf(w, `<h2>%s Prompt (score %d/10)</h2><pre%s>%s</pre>`,
				templ.EscapeString(title(string(v.Mode))), run.Judgment.Scores[v.Mode],
				class, templ.EscapeString(v.Text))
			if err != nil {
				return err
			}
		}

		winnerText := "No winner output available."
		if v, ok := run.Variant(domain.Mode(run.Judgment.Winner)); ok {
			winnerText = v.Text
		}
		_, err = fmt.Fprintf(w, `<h2>Winner: %s (Score: %d/10)</h2><pre>%s</pre>`,
			templ.EscapeString(title(run.Judgment.Winner)),
			run.Judgment.Scores[domain.Mode(run.Judgment.Winner)],
			templ.EscapeString(winnerText))
		if err != nil {
			return err
		}

		if strings.HasPrefix(run.Fusion, "Error:") {
			_, err = fmt.Fprintf(w, `<p class="error">Fusion skipped: %s</p>`,
				templ.EscapeString(run.Fusion))
			return err
		}

		label := "Saved"
		saved := run.Tokens.Saved
		if saved < 0 {
			label = "Added"
			saved = -saved
		}

		_, err = fmt.Fprintf(w,
			`<h2>Fusion Version (Best Combined)</h2><pre>%s</pre>`+
				`<p class="caption">Original: ~%d tokens | Fusion: ~%d tokens | %s: %d</p>`,
			templ.EscapeString(run.Fusion),
			run.Tokens.OriginalTokens, run.Tokens.FusionTokens, label, saved)
		return err
	})
}

// Health renders the Groq connection check result.
func Health(ok bool, msg string) templ.Component {
	return page("Groq Health", func(w io.Writer) error {
		class := ""
		if !ok {
			class = ` class="error"`
		}
		_, err := fmt.Fprintf(w, `<h1>Groq Health</h1><p%s>%s</p>`, class, templ.EscapeString(msg))
		return err
	})
}

// Error renders a request error page.
func Error(errTitle string, msg string) templ.Component {
	return page(errTitle, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, `<h1 class="error">%s</h1><p>%s</p><p><a href="/">Back</a></p>`,
			templ.EscapeString(errTitle), templ.EscapeString(msg))
		return err
	})
}

func title(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
