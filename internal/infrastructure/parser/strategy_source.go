package parser

import (
	"context"
	"fmt"
	"log/slog"

	"PostCatalog/internal/domain"
	"PostCatalog/internal/ports"
	"PostCatalog/internal/scanner"
)

// StrategySource implements PostSource via a registered scanner strategy.
type StrategySource struct {
	registry *scanner.Registry
	name     string
	options  map[string]string
	logger   *slog.Logger
}

var _ ports.PostSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with the configured strategy name.
func NewStrategySource(reg *scanner.Registry, name string, options map[string]string, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		name:     name,
		options:  options,
		logger:   log,
	}
}

// FetchPosts runs the configured scanner and enforces the post limit.
func (s *StrategySource) FetchPosts(ctx context.Context, pageIdentifier string, opts ports.FetchOptions) ([]domain.Post, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	strategy, err := s.registry.Resolve(s.name)
	if err != nil {
		return nil, err
	}

	req := scanner.Request{
		PageIdentifier: pageIdentifier,
		PostLimit:      opts.PostLimit,
		IncludeMedia:   opts.IncludeMedia,
		Options:        s.options,
	}
	s.debug("fetch posts", "scanner", s.name, "page", pageIdentifier, "limit", req.Limit())

	posts, err := strategy.Scan(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("scan page %s: %w", pageIdentifier, err)
	}

	if len(posts) > req.Limit() {
		posts = posts[:req.Limit()]
	}
	for i := range posts {
		if posts[i].MediaURLs == nil || !opts.IncludeMedia {
			posts[i].MediaURLs = []string{}
		}
	}

	s.debug("scanner produced posts", "scanner", s.name, "count", len(posts))
	return posts, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
