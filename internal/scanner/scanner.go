package scanner

import (
	"context"
	"fmt"
	"sort"

	"PostCatalog/internal/domain"
)

// MaxPosts is the hard cap on posts returned by any scanner.
const MaxPosts = 100

// Request carries all parameters required to execute a scan.
type Request struct {
	PageIdentifier string
	PostLimit      int
	IncludeMedia   bool
	Options        map[string]string
}

// Limit returns the effective post limit, clamped to [1, MaxPosts].
func (r Request) Limit() int {
	if r.PostLimit <= 0 || r.PostLimit > MaxPosts {
		return MaxPosts
	}
	return r.PostLimit
}

// Scanner captures a single post source strategy (mock feed, HTML export, etc.).
type Scanner interface {
	Name() string
	Scan(ctx context.Context, req Request) ([]domain.Post, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("scanner %s is not registered", name)
}

// Names lists registered scanners in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.scanners))
	for name := range r.scanners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
