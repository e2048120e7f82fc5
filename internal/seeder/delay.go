package seeder

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Default jitter bounds before each insert.
const (
	DefaultMinDelay = 300 * time.Millisecond
	DefaultMaxDelay = time.Second
)

// Delayer decides how long to wait before each insert.
type Delayer interface {
	Delay() time.Duration
}

// RandomDelay draws uniformly from [min, max). It is safe for concurrent use.
type RandomDelay struct {
	min, max time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomDelay returns a jitter source over [min, max) seeded from the runtime.
func NewRandomDelay(lo, hi time.Duration) *RandomDelay {
	return &RandomDelay{min: lo, max: hi, rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededRandomDelay returns a reproducible jitter source.
func NewSeededRandomDelay(lo, hi time.Duration, seed uint64) *RandomDelay {
	return &RandomDelay{min: lo, max: hi, rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Delay returns the next wait.
func (r *RandomDelay) Delay() time.Duration {
	if r.max <= r.min {
		return r.min
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.min + time.Duration(r.rng.Int64N(int64(r.max-r.min)))
}

// FixedDelay always waits the same amount.
type FixedDelay time.Duration

// Delay returns d.
func (d FixedDelay) Delay() time.Duration { return time.Duration(d) }

// NoDelay never waits.
var NoDelay Delayer = FixedDelay(0)

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
