// Package eligibility matches a citizen profile against the scheme catalog,
// asking a remote model first and falling back to local rules.
package eligibility

import (
	"context"
	"log/slog"
	"time"

	"github.com/garnizeh/citizenhub/internal/catalog"
	"github.com/garnizeh/citizenhub/pkg/completion"
)

// Source names which path produced a result.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// Result is the outcome of one eligibility check.
type Result struct {
	Schemes        []catalog.Scheme `json:"schemes"`
	Source         Source           `json:"source"`
	CatalogVersion int64            `json:"catalogVersion"`
}

// Checker runs eligibility checks. It is safe for concurrent use.
type Checker struct {
	completer completion.Completer
	store     *catalog.Store
	timeout   time.Duration
	logger    *slog.Logger
}

// NewChecker returns a checker; timeout bounds the single remote call.
func NewChecker(c completion.Completer, store *catalog.Store, timeout time.Duration, logger *slog.Logger) *Checker {
	if c == nil {
		c = completion.Disabled{}
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{completer: c, store: store, timeout: timeout, logger: logger}
}

// Check returns the schemes p is eligible for. It never fails: any remote
// problem is logged and the local rules answer instead.
func (c *Checker) Check(ctx context.Context, p Profile) Result {
	version, schemes := c.store.Snapshot()
	start := time.Now()

	remote, err := c.remote(ctx, p, schemes)
	if err == nil {
		c.logger.Info("eligibility: remote match",
			slog.Int("matches", len(remote)),
			slog.Int64("catalog_version", version),
			slog.Duration("latency", time.Since(start)))
		return Result{Schemes: remote, Source: SourceRemote, CatalogVersion: version}
	}

	c.logger.Warn("eligibility: remote match failed, using local rules",
		slog.Any("error", err),
		slog.Duration("latency", time.Since(start)))
	return Result{Schemes: Fallback(p, schemes), Source: SourceFallback, CatalogVersion: version}
}

func (c *Checker) remote(ctx context.Context, p Profile, schemes []catalog.Scheme) ([]catalog.Scheme, error) {
	prompt, err := BuildPrompt(p, schemes)
	if err != nil {
		return nil, err
	}

	ctxReq, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.completer.Complete(ctxReq, prompt)
	if err != nil {
		return nil, err
	}
	parsed, err := ParseSchemes(ctx, out)
	if err != nil {
		return nil, err
	}
	known, err := KnownSchemes(parsed, schemes)
	if err != nil {
		return nil, err
	}
	if dropped := len(parsed) - len(known); dropped > 0 {
		c.logger.Warn("eligibility: dropped schemes outside the catalog", slog.Int("dropped", dropped))
	}
	return known, nil
}
