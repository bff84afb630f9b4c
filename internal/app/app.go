package app

import (
	"log"
	"net/http"

	"github.com/a-h/templ"

	"github.com/felixbrock/promptforge/internal/domain"
)

type Config struct {
	Port         string
	GroqApiKey   string
	PHApiKey     string
	DefaultModel string
	Models       []string
}

// ComponentBuilder holds the view constructors so handlers stay decoupled
// from the concrete component package.
type ComponentBuilder struct {
	Index   func(models []string, defaultModel string) templ.Component
	Results func(run domain.OptimizationRun) templ.Component
	Health  func(ok bool, msg string) templ.Component
	Error   func(title string, msg string) templ.Component
}

type App struct {
	OptimizerRepo    Completer
	EventRepo        EventCapturer
	Pacer            Pacer
	ComponentBuilder ComponentBuilder
	Config           Config
}

func (a App) Start() {
	http.Handle("/", ComponentHandler(a.index))
	http.Handle("/optimize", ComponentHandler(a.optimize))
	http.Handle("/health/groq", ComponentHandler(a.health))

	log.Printf("App running on %s...", a.Config.Port)
	log.Fatal(http.ListenAndServe(":"+a.Config.Port, nil))
}
