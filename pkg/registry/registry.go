// Package registry names the agents available to trial runs.
package registry

import (
	"errors"
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/aretw0/metamaze"
	"github.com/aretw0/metamaze/pkg/adapters/process"
	"github.com/aretw0/metamaze/pkg/ports"
	"github.com/aretw0/metamaze/pkg/runner"
)

// ErrAgentNotFound is returned by Lookup for unknown names.
var ErrAgentNotFound = errors.New("agent not found")

// Registry maps agent names to factories.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]runner.AgentFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]runner.AgentFactory)}
}

// Default returns a registry holding the built-in "planner" and "random" agents.
func Default() *Registry {
	r := NewRegistry()
	r.Register("planner", runner.Planner())
	r.Register("random", runner.Random())
	return r
}

// Register adds a factory. An existing name is overwritten.
func (r *Registry) Register(name string, factory runner.AgentFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[name] = factory
}

// RegisterProcesses adds one external agent per config.
func (r *Registry) RegisterProcesses(configs map[string]process.AgentConfig, opts ...process.Option) {
	for name, cfg := range configs {
		r.Register(name, func(*metamaze.Engine, *rand.Rand) ports.Agent {
			return process.NewAgent(cfg, opts...)
		})
	}
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (runner.AgentFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.agents[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	return f, nil
}

// Names lists the registered agents, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.agents))
}
