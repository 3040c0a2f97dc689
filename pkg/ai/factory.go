package ai

import (
	"context"
	"fmt"
	"time"

	"mailsweep/pkg/gemini"
	"mailsweep/pkg/metrics"

	"go.uber.org/zap"
)

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType // "openai", "gemini", "ollama" or "auto"

	// OpenAI config
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	// Gemini config
	GeminiAPIKey string
	GeminiModel  string

	// Ollama config
	OllamaBaseURL string // e.g., "http://localhost:11434"
	OllamaModel   string // e.g., "llama3", "mistral"
}

// geminiCompleter adapts the Gemini SDK wrapper to Completer
type geminiCompleter struct {
	svc *gemini.GeminiService
}

func (g geminiCompleter) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	out, err := g.svc.Generate(ctx, req.System, req.Prompt, req.Temperature, int32(req.MaxTokens), req.JSON)
	metrics.RecordAICall(string(ProviderGemini), err, time.Since(start))
	return out, err
}

// NewCompleter creates a Completer based on the config.
// This is the factory function - switch AI provider by changing config.Provider.
// In auto mode every configured hosted provider is chained with Ollama as the
// last resort, and the chain is wrapped in a circuit breaker.
func NewCompleter(ctx context.Context, cfg Config, log *zap.Logger) (Completer, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI provider")
		}
		return NewBreakerCompleter("openai", NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL), log), nil

	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		svc, err := gemini.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return NewBreakerCompleter("gemini", geminiCompleter{svc: svc}, log), nil

	case ProviderOllama:
		return NewBreakerCompleter("ollama", NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel), log), nil

	case ProviderAuto, "":
		var chain []Completer
		if cfg.OpenAIAPIKey != "" {
			chain = append(chain, NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL))
		}
		if cfg.GeminiAPIKey != "" {
			svc, err := gemini.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
			if err != nil {
				log.Warn("gemini unavailable, skipping", zap.Error(err))
			} else {
				chain = append(chain, geminiCompleter{svc: svc})
			}
		}
		chain = append(chain, NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel))

		var c Completer = chain[len(chain)-1]
		for i := len(chain) - 2; i >= 0; i-- {
			c = NewFallbackService(chain[i], c, log)
		}
		return NewBreakerCompleter("ai", c, log), nil

	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
