package source

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/celldown/celldown/internal/runner"
	"github.com/celldown/celldown/pkg/document"
)

// Remote fetches a document's text over the network.
type Remote interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// FetcherRemote adapts the engine's network capability into a Remote.
type FetcherRemote struct {
	Fetch runner.Fetcher
}

func (r FetcherRemote) FetchText(ctx context.Context, url string) (string, error) {
	body, err := r.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Loader turns files and URLs into cell snapshots. Load failures never
// leave the user without a document: they degrade to a single empty code
// cell, with the failure reported alongside.
type Loader struct {
	remote Remote
	logger *zap.Logger
}

func NewLoader(remote Remote, logger *zap.Logger) *Loader {
	if remote == nil {
		remote = FetcherRemote{Fetch: runner.HTTPFetcher(nil)}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{remote: remote, logger: logger}
}

// File loads and parses a local document.
func (l *Loader) File(path string) ([]document.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Warn("document load failed", zap.String("path", path), zap.Error(err))
		return Fallback(), errors.Wrap(err, "failed to load document")
	}
	return document.Parse(data), nil
}

// URL fetches and parses a remote document.
func (l *Loader) URL(ctx context.Context, url string) ([]document.Snapshot, error) {
	text, err := l.remote.FetchText(ctx, url)
	if err != nil {
		l.logger.Warn("document fetch failed", zap.String("url", url), zap.Error(err))
		return Fallback(), errors.Wrap(err, "failed to fetch document")
	}
	return document.Parse([]byte(text)), nil
}

// Fallback is the degraded document: one empty code cell, so the user
// always has something runnable to type into.
func Fallback() []document.Snapshot {
	return []document.Snapshot{{Cell: document.NewCodeCell()}}
}
