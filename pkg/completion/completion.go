// Package completion sends single-shot text prompts to a hosted or local
// language model and returns the model's text.
package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/garnizeh/citizenhub/internal/config"
)

var (
	// ErrNoCandidates is returned when the backend answered but produced no text.
	ErrNoCandidates = errors.New("completion returned no candidates")
	// ErrDisabled is returned by the none provider.
	ErrDisabled = errors.New("completion provider disabled")
)

// Completer sends one prompt and returns the model's text. Implementations
// make exactly one attempt and honour ctx cancellation.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Close() error
}

// package-level logger for pkg/completion; can be replaced by callers
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger sets the logger used by pkg/completion. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// New builds the Completer selected by cfg.Completion.Provider. httpClient may be nil.
func New(ctx context.Context, cfg *config.Config, httpClient *http.Client) (Completer, error) {
	switch cfg.Completion.Provider {
	case config.ProviderGemini:
		return NewGemini(ctx, cfg.Completion, httpClient)
	case config.ProviderOllama:
		return NewOllama(cfg.Ollama, cfg.Completion.Model, httpClient)
	case config.ProviderNone, "":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Completion.Provider)
	}
}

// Disabled always fails so callers take their local path.
type Disabled struct{}

func (Disabled) Complete(context.Context, string) (string, error) { return "", ErrDisabled }

func (Disabled) Close() error { return nil }
