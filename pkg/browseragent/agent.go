package browseragent

import (
	"context"
	"fmt"

	"mailsweep/pkg/ai"

	"go.uber.org/zap"
)

// Task is one natural-language job for a browser-driving agent.
type Task struct {
	// URL is the page the agent starts on
	URL          string
	Instructions string
}

// Result is the outcome of an agent run. Transcript is opaque text meant to
// be judged by a separate AI call.
type Result struct {
	Transcript string
	Steps      int
}

// Runner drives a browser until the task is finished or the step budget runs out.
type Runner interface {
	Run(ctx context.Context, task Task) (*Result, error)
}

type Config struct {
	Kind     string // "chrome" or "remote"
	URL      string
	Model    string
	Headless bool
	MaxSteps int
}

// New builds the Runner selected by cfg.Kind. The chrome runner plans its
// actions with llm.
func New(cfg Config, llm ai.Completer, log *zap.Logger) (Runner, error) {
	switch cfg.Kind {
	case "", "chrome":
		return NewChromeAgent(llm, ChromeOptions{Headless: cfg.Headless, MaxSteps: cfg.MaxSteps}, log), nil
	case "remote":
		if cfg.URL == "" {
			return nil, fmt.Errorf("remote browser agent requires BROWSER_AGENT_URL")
		}
		return NewRemoteAgent(cfg.URL, cfg.Model, log), nil
	default:
		return nil, fmt.Errorf("unknown browser agent: %s", cfg.Kind)
	}
}
