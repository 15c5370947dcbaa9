package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/metamaze/pkg/domain"
	"github.com/aretw0/metamaze/pkg/schema"
)

// Library implements ports.MazeLibrary with an in-memory map of configs.
type Library struct {
	mu      sync.RWMutex
	configs map[string]*schema.Config
}

// NewLibrary creates a library holding the given configs, keyed by their Name.
// Every config is validated; unnamed configs are rejected.
func NewLibrary(configs ...*schema.Config) (*Library, error) {
	l := &Library{configs: make(map[string]*schema.Config)}
	for _, c := range configs {
		if err := l.Put(c); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Put adds or replaces a config.
func (l *Library) Put(cfg *schema.Config) error {
	if cfg.Name == "" {
		return fmt.Errorf("maze config missing name")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("maze %s: %w", cfg.Name, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.configs[cfg.Name] = cfg.Clone()
	return nil
}

// Get returns a copy of the named config.
func (l *Library) Get(ctx context.Context, name string) (*schema.Config, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cfg, ok := l.configs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrMazeNotFound, name)
	}
	return cfg.Clone(), nil
}

// List returns all maze names in deterministic order.
func (l *Library) List(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.configs))
	for name := range l.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
