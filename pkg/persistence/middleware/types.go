// Package middleware wraps state stores with extra behaviour.
package middleware

import "github.com/aretw0/metamaze/pkg/ports"

// Middleware wraps a StateStore.
type Middleware func(ports.StateStore) ports.StateStore

// Chain applies mws to store so that the first middleware is the outermost.
func Chain(store ports.StateStore, mws ...Middleware) ports.StateStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
