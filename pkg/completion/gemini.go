package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"google.golang.org/genai"

	"github.com/garnizeh/citizenhub/internal/config"
)

// Gemini calls the generateContent endpoint of the Gemini API.
type Gemini struct {
	client     *genai.Client
	httpClient *http.Client
	model      string
	closed     int32
}

// NewGemini creates a Gemini completer. The API key comes from cfg and is
// never logged.
func NewGemini(ctx context.Context, cfg config.CompletionConfig, httpClient *http.Client) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("gemini model is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL, APIVersion: "v1beta"}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	logger.Info("completion: gemini client created", slog.String("model", cfg.Model))
	return &Gemini{client: client, httpClient: httpClient, model: cfg.Model}, nil
}

// Complete sends prompt as a single user turn and returns the first candidate's text.
func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrNoCandidates
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrNoCandidates
	}
	logger.Debug("completion: gemini answered", slog.String("model", g.model), slog.Duration("latency", time.Since(start)))
	return text, nil
}

// Close releases idle connections. It is idempotent.
func (g *Gemini) Close() error {
	if g == nil || !atomic.CompareAndSwapInt32(&g.closed, 0, 1) {
		return nil
	}
	g.httpClient.CloseIdleConnections()
	return nil
}
