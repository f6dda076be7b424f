package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrExists = errors.New("session_exists")

// ExpireFunc runs after an idle entry has been removed from the registry.
type ExpireFunc[K comparable, V any] func(ctx context.Context, key K, value V)

type entry[V any] struct {
	value    V
	deadline time.Time
}

// Registry holds in-memory game sessions keyed by user or channel. Entries
// that go idle for longer than the ttl are dropped by Sweep. A ttl of zero
// keeps entries until they are deleted.
type Registry[K comparable, V any] struct {
	name     string
	ttl      time.Duration
	onExpire ExpireFunc[K, V]

	mu      sync.Mutex
	entries map[K]*entry[V]

	now func() time.Time
}

func NewRegistry[K comparable, V any](name string, ttl time.Duration, onExpire ExpireFunc[K, V]) *Registry[K, V] {
	return &Registry[K, V]{
		name:     name,
		ttl:      ttl,
		onExpire: onExpire,
		entries:  map[K]*entry[V]{},
		now:      time.Now,
	}
}

// SetClock replaces the time source used for deadlines.
func (r *Registry[K, V]) SetClock(now func() time.Time) {
	r.mu.Lock()
	r.now = now
	r.mu.Unlock()
}

// Create stores value under key. It fails with ErrExists while a live entry
// is present. An entry that is already past its deadline is expired first.
func (r *Registry[K, V]) Create(ctx context.Context, key K, value V) error {
	r.mu.Lock()
	now := r.now()
	var (
		stale    V
		hasStale bool
	)
	if e, ok := r.entries[key]; ok {
		if !r.expired(e, now) {
			r.mu.Unlock()
			return ErrExists
		}
		stale, hasStale = e.value, true
	}
	r.entries[key] = &entry[V]{value: value, deadline: r.deadline(now)}
	r.mu.Unlock()

	if hasStale {
		r.fire(ctx, key, stale)
	}
	return nil
}

// Get returns the live entry for key and pushes its idle deadline forward.
func (r *Registry[K, V]) Get(key K) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero V
	e, ok := r.entries[key]
	if !ok {
		return zero, false
	}
	now := r.now()
	if r.expired(e, now) {
		return zero, false
	}
	e.deadline = r.deadline(now)
	return e.value, true
}

func (r *Registry[K, V]) Delete(key K) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	delete(r.entries, key)
	return e.value, true
}

// DeleteIf removes the entry for key only when match accepts its value, so a
// finished session never removes its successor.
func (r *Registry[K, V]) DeleteIf(key K, match func(V) bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok || !match(e.value) {
		return false
	}
	delete(r.entries, key)
	return true
}

func (r *Registry[K, V]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep removes every entry idle past its deadline and runs the expiry hook
// for each. It returns the number of expired entries.
func (r *Registry[K, V]) Sweep(ctx context.Context, now time.Time) int {
	type victim struct {
		key   K
		value V
	}
	var victims []victim
	r.mu.Lock()
	for k, e := range r.entries {
		if r.expired(e, now) {
			victims = append(victims, victim{key: k, value: e.value})
			delete(r.entries, k)
		}
	}
	r.mu.Unlock()

	for _, v := range victims {
		r.fire(ctx, v.key, v.value)
	}
	if len(victims) > 0 {
		log.Debug().Str("registry", r.name).Int("expired", len(victims)).Msg("session sweep")
	}
	return len(victims)
}

// StartJanitor sweeps on every tick until ctx is cancelled.
func (r *Registry[K, V]) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				_ = r.Sweep(ctx, now)
			}
		}
	}()
}

func (r *Registry[K, V]) expired(e *entry[V], now time.Time) bool {
	return r.ttl > 0 && !now.Before(e.deadline)
}

func (r *Registry[K, V]) deadline(now time.Time) time.Time {
	if r.ttl <= 0 {
		return time.Time{}
	}
	return now.Add(r.ttl)
}

func (r *Registry[K, V]) fire(ctx context.Context, key K, value V) {
	if r.onExpire == nil {
		return
	}
	r.onExpire(ctx, key, value)
}
