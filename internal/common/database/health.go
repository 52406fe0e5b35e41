package database

import (
	"context"
	"sync"
	"time"
)

// Dependency is a backing service the readiness probe checks.
type Dependency interface {
	Name() string
	Ping(ctx context.Context) error
	Close() error
}

// Status is the outcome of pinging one dependency.
type Status struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// CheckAll pings every dependency concurrently, each bounded by timeout,
// and reports them in the order given.
func CheckAll(ctx context.Context, timeout time.Duration, deps ...Dependency) ([]Status, bool) {
	statuses := make([]Status, len(deps))

	var wg sync.WaitGroup
	for i, dep := range deps {
		wg.Add(1)
		go func(i int, dep Dependency) {
			defer wg.Done()
			pingCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			statuses[i] = Status{Name: dep.Name(), Healthy: true}
			if err := dep.Ping(pingCtx); err != nil {
				statuses[i].Healthy = false
				statuses[i].Error = err.Error()
			}
		}(i, dep)
	}
	wg.Wait()

	healthy := true
	for _, s := range statuses {
		healthy = healthy && s.Healthy
	}
	return statuses, healthy
}

// CloseAll closes dependencies in reverse order and returns the first error.
func CloseAll(deps ...Dependency) error {
	var first error
	for i := len(deps) - 1; i >= 0; i-- {
		if err := deps[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
