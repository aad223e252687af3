// Package health provides a thread-safe health check registry for tracking
// the health of the gateway's dependencies. The readiness endpoint uses it to
// report whether the upstream is currently reachable.
package health

import (
	"context"
	"sync"

	"github.com/jsamuelsen11/go-envelope-gateway/internal/platform/fanout"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/ports"
)

// maxConcurrentChecks bounds how many health checks run at once.
const maxConcurrentChecks = 8

// Compile-time interface check.
var _ ports.HealthRegistry = (*Registry)(nil)

// Registry is a thread-safe implementation of [ports.HealthRegistry].
// Components that implement [ports.HealthChecker] are registered at startup
// and checked on each readiness probe.
type Registry struct {
	mu       sync.RWMutex
	checkers []ports.HealthChecker
}

// New creates an empty health check registry.
func New() *Registry {
	return &Registry{}
}

// Register adds a health checker to the registry. Safe for concurrent use.
func (r *Registry) Register(checker ports.HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers = append(r.checkers, checker)
}

// CheckAll runs the registered checks concurrently, at most
// maxConcurrentChecks at a time, and returns results keyed by checker name.
// Nil values indicate healthy components. When two checkers share a name,
// the one registered last wins.
func (r *Registry) CheckAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	checkers := make([]ports.HealthChecker, len(r.checkers))
	copy(checkers, r.checkers)
	r.mu.RUnlock()

	errs := fanout.Each(ctx, maxConcurrentChecks, checkers, func(ctx context.Context, c ports.HealthChecker) error {
		return c.HealthCheck(ctx)
	})

	results := make(map[string]error, len(checkers))
	for i, c := range checkers {
		results[c.Name()] = errs[i]
	}
	return results
}

// Healthy reports whether every result in a CheckAll map is nil.
func Healthy(results map[string]error) bool {
	for _, err := range results {
		if err != nil {
			return false
		}
	}
	return true
}
