package completion

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/garnizeh/citizenhub/internal/config"
)

// Ollama calls a local Ollama instance through its Go API client.
type Ollama struct {
	api    *api.Client
	client *http.Client
	model  string
	closed int32
}

// NewOllama creates an Ollama completer for model.
func NewOllama(cfg config.OllamaConfig, model string, httpClient *http.Client) (*Ollama, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	u, err := url.ParseRequestURI(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if model == "" {
		return nil, fmt.Errorf("ollama model is required")
	}

	logger.Info("completion: ollama client created", slog.String("base_url", cfg.BaseURL), slog.String("model", model))
	return &Ollama{api: api.NewClient(u, httpClient), client: httpClient, model: model}, nil
}

// Complete runs a non-streaming generate request and returns the response text.
func (o *Ollama) Complete(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{Model: o.model, Prompt: prompt, Stream: &stream}

	var sb strings.Builder
	start := time.Now()
	err := o.api.Generate(ctx, req, func(r api.GenerateResponse) error {
		sb.WriteString(r.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrNoCandidates
	}
	logger.Debug("completion: ollama answered", slog.String("model", o.model), slog.Duration("latency", time.Since(start)))
	return text, nil
}

// Health lists local models and fails when the configured model is missing.
func (o *Ollama) Health(ctx context.Context) error {
	list, err := o.api.List(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	for _, m := range list.Models {
		if m.Name == o.model || strings.TrimSuffix(m.Name, ":latest") == o.model {
			return nil
		}
	}
	return fmt.Errorf("health check failed: model %q not available", o.model)
}

// Close releases any resources held by the client. Close is idempotent and
// safe to call multiple times.
func (o *Ollama) Close() error {
	if o == nil {
		return nil
	}
	if !atomic.CompareAndSwapInt32(&o.closed, 0, 1) {
		return nil
	}
	o.client.CloseIdleConnections()
	return nil
}
