package commands

import (
	"llamachat/internal/config"
	"llamachat/internal/engine"
	"llamachat/internal/tui"
)

// ChatUI launches the interactive chat interface and blocks until it exits.
type ChatUI func(eng engine.Engine, cfg config.Config, modelName string) error

// Dependencies carries the swappable pieces the commands need. Tests
// substitute a mock engine or a capturing UI here instead of patching
// package globals.
type Dependencies struct {
	// Engine, when non-nil, overrides the client built from configuration.
	Engine engine.Engine

	// RunChat hands control to the interactive UI.
	RunChat ChatUI
}

// NewDependencies returns the production wiring.
func NewDependencies() *Dependencies {
	return &Dependencies{
		RunChat: tui.RunChat,
	}
}

// deps backs the package-level cobra commands.
var deps = NewDependencies()

// buildEngine returns the injected engine, or a client for the configured host.
func (d *Dependencies) buildEngine(cfg config.Config, modelName string) engine.Engine {
	if d.Engine != nil {
		return d.Engine
	}

	return engine.NewClient(
		engine.WithBaseURL(config.NormalizeHost(cfg.Host)),
		engine.WithModel(modelName),
		engine.WithSampling(cfg.Sampling()),
		engine.WithLogger(logger),
	)
}

// newAPIClient builds a client for the non-chat API commands. The model and
// sampling options are irrelevant there.
func newAPIClient(cfg config.Config) *engine.Client {
	return engine.NewClient(
		engine.WithBaseURL(config.NormalizeHost(cfg.Host)),
		engine.WithLogger(logger),
	)
}
