// Package secret resolves and rotates the shared site password.
package secret

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrEmptySecret is returned when the store holds no value for the secret.
var ErrEmptySecret = errors.New("secret value is empty")

// Source fetches the current value of the shared secret from a store.
type Source interface {
	Fetch(ctx context.Context) (string, error)
	Name() string
}

// Resolver fetches the secret from its Source on first use and keeps it for
// the lifetime of the process. A cached value is never refreshed.
type Resolver struct {
	src Source
	log *zap.Logger

	mu     sync.RWMutex
	val    string
	cached bool
}

func NewResolver(src Source, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{src: src, log: log}
}

// Get returns the cached secret, fetching it first if nothing is cached yet.
// A failed fetch leaves the cache empty.
func (r *Resolver) Get(ctx context.Context) (string, error) {
	r.mu.RLock()
	if r.cached {
		v := r.val
		r.mu.RUnlock()
		r.log.Info("using cached secret")
		return v, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cached {
		r.log.Info("using cached secret")
		return r.val, nil
	}

	r.log.Info("fetching secret", zap.String("source", r.src.Name()))
	v, err := r.src.Fetch(ctx)
	if err != nil {
		r.log.Error("failed to fetch secret", zap.String("source", r.src.Name()), zap.Error(err))
		return "", fmt.Errorf("fetch secret %s: %w", r.src.Name(), err)
	}
	r.val = v
	r.cached = true
	r.log.Info("secret fetched and cached")
	return v, nil
}
