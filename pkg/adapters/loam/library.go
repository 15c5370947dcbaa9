// Package loam serves maze configurations stored as documents in a Loam
// repository: markdown with YAML front-matter, or plain JSON/YAML files.
// The markdown body becomes the maze description.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/metamaze/pkg/domain"
	"github.com/aretw0/metamaze/pkg/schema"
)

// Library adapts a Loam repository to ports.MazeLibrary.
type Library struct {
	Repo *loam.TypedRepository[MazeMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[MazeMetadata]) *Library {
	return &Library{Repo: repo}
}

// Open initializes a read-only, strict Loam repository at path.
func Open(path string) (*Library, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[MazeMetadata](repo)), nil
}

// Get loads and validates the named maze.
func (l *Library) Get(ctx context.Context, name string) (*schema.Config, error) {
	doc, err := l.Repo.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s (%v)", domain.ErrMazeNotFound, name, err)
	}

	cfg := doc.Data.Config.Clone()
	cfg.Name = documentName(doc.Data.ID, doc.ID)
	if cfg.Description == "" {
		cfg.Description = strings.TrimSpace(doc.Content)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("maze %s: %w", cfg.Name, err)
	}
	return cfg, nil
}

// List returns the names of all documents, sorted.
// Two documents resolving to the same name are an error.
func (l *Library) List(ctx context.Context) ([]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		name := documentName(doc.Data.ID, doc.ID)
		if existing, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision detected: maze '%s' is defined in both '%s' and '%s'", name, existing, doc.ID)
		}
		seen[name] = doc.ID
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Watch implements ports.Watchable.
func (l *Library) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

func documentName(metaID, docID string) string {
	if metaID != "" {
		return trimExtension(metaID)
	}
	return trimExtension(docID)
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}
