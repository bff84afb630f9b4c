package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"
	"golang.org/x/time/rate"

	"github.com/felixbrock/promptforge/internal/app"
	"github.com/felixbrock/promptforge/internal/component"
	"github.com/felixbrock/promptforge/internal/persistence"
)

// batchDelay spaces the optimizer batches to dodge burst rate limits on
// the Groq free tier.
const batchDelay = 2 * time.Second

func config() app.Config {
	port := os.Getenv("GOPORT")
	if port == "" {
		port = "8000"
	}

	groqApiKey := os.Getenv("GROQ_API_KEY")
	if groqApiKey == "" {
		slog.Error("GROQ_API_KEY environment variable not set")
		os.Exit(1)
	}

	models := []string{"llama-3.1-8b-instant", "llama-3.3-70b-versatile"}

	defaultModel := persistence.NormalizeModel(os.Getenv("GROQ_MODEL"))
	if defaultModel == "" {
		defaultModel = models[0]
	}

	return app.Config{
		Port:         port,
		GroqApiKey:   groqApiKey,
		PHApiKey:     os.Getenv("PH_API_KEY"),
		DefaultModel: defaultModel,
		Models:       models,
	}
}

func main() {
	config := config()

	componentBuilder := app.ComponentBuilder{
		Index:   component.Index,
		Results: component.Results,
		Health:  component.Health,
		Error:   component.Error,
	}

	groqRepo := persistence.NewGroqRepo(config.GroqApiKey, persistence.DefaultRetryPolicy())

	var eventRepo app.EventCapturer
	if config.PHApiKey != "" {
		eventRepo = persistence.PHRepo{
			BaseHeaders: []string{"Content-Type:application/json"},
			ApiKey:      config.PHApiKey,
			Client:      &http.Client{Timeout: 10 * time.Second},
		}
	}

	a := app.App{
		OptimizerRepo:    groqRepo,
		EventRepo:        eventRepo,
		Pacer:            rate.NewLimiter(rate.Every(batchDelay), 1),
		ComponentBuilder: componentBuilder,
		Config:           config,
	}

	slog.Info(fmt.Sprintf("using model %s", config.DefaultModel))
	a.Start()
}
