// Package testkit provides in-memory adapters honoring the same atomicity
// contracts as the postgres adapters, so the concurrency invariants are
// testable without a database.
package testkit

import (
	"math/rand"
	"sync"
	"time"

	"agora/app"
	"agora/domain/challenge"
	"agora/domain/debate"
	"agora/ports"
)

// Kit wires a full in-memory arena for tests
type Kit struct {
	Store  *Store
	Clock  *FakeClock
	Engine *challenge.Engine
	Policy debate.Policy

	Submissions *app.SubmissionService
	Debates     *app.DebateService
}

// Option tweaks the kit before services are wired
type Option func(*Kit)

// WithPolicy overrides the eligibility policy
func WithPolicy(p debate.Policy) Option {
	return func(k *Kit) { k.Policy = p }
}

// WithTTL overrides the challenge TTL
func WithTTL(ttl time.Duration) Option {
	return func(k *Kit) {
		k.Engine = challenge.NewEngineWithRand(ttl, challenge.Noop{}, rand.New(rand.NewSource(1)))
	}
}

// NewKit builds an in-memory arena with a deterministic challenge engine
// and a fake clock starting at a fixed instant
func NewKit(opts ...Option) *Kit {
	store := NewStore()
	clock := NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	policy := debate.DefaultPolicy()
	policy.MinArgumentChars = 10 // keep test fixtures short

	k := &Kit{
		Store:  store,
		Clock:  clock,
		Engine: challenge.NewEngineWithRand(challenge.DefaultTTL, challenge.Noop{}, rand.New(rand.NewSource(1))),
		Policy: policy,
	}
	for _, opt := range opts {
		opt(k)
	}

	k.Submissions = app.NewSubmissionService(
		store, store, store, store, store, store,
		k.Engine, clock, k.Policy,
	)
	k.Debates = app.NewDebateService(store, store, store, store, store, clock, true)
	return k
}

// FakeClock is a manually advanced clock
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock frozen at the given instant
func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

// Now returns the frozen instant
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set jumps the clock to an instant
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

var _ ports.Clock = (*FakeClock)(nil)
