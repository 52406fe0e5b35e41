// Package ratelimit throttles chat requests per client key.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"provider-directory/internal/common/config"
	"provider-directory/internal/common/database"
)

// Limiter decides whether the client identified by key may make another
// request. A non-nil error means the decision could not be made; the
// returned bool is then the fail-open answer.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// New picks the limiter named by cfg.Backend. redis may be nil when the
// memory backend is selected.
func New(cfg config.RateLimitConfig, redis *database.RedisClient) Limiter {
	if !cfg.Enabled {
		return Unlimited{}
	}
	if cfg.Backend == config.RateLimitBackendRedis && redis != nil {
		return NewRedisLimiter(redis.Client, cfg.RequestsPerMinute+cfg.Burst, time.Minute)
	}
	return NewMemoryLimiter(cfg.RequestsPerMinute, cfg.Burst)
}

// Unlimited allows everything.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (bool, error) { return true, nil }

// ==========================
// In-process token buckets
// ==========================

const idleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter keeps one token bucket per key. Buckets idle for longer
// than idleTTL are swept on access.
type MemoryLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func NewMemoryLimiter(requestsPerMinute, burst int) *MemoryLimiter {
	if burst < 1 {
		burst = 1
	}
	return &MemoryLimiter{
		visitors:  make(map[string]*visitor),
		limit:     rate.Limit(float64(requestsPerMinute) / 60),
		burst:     burst,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) > idleTTL {
		for k, v := range m.visitors {
			if now.Sub(v.lastSeen) > idleTTL {
				delete(m.visitors, k)
			}
		}
		m.lastSweep = now
	}

	v, ok := m.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1), nil
}

// Len reports how many keys are tracked.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.visitors)
}
