package kv

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Locker serializes writers per key. Each key has a gate of weight one;
// Lock acquires gates in sorted key order so multi-key writers cannot deadlock.
type Locker struct {
	mu    sync.Mutex
	gates map[string]*semaphore.Weighted
}

// NewLocker creates a Locker with no gates
func NewLocker() *Locker {
	return &Locker{gates: make(map[string]*semaphore.Weighted)}
}

// Lock blocks until every key is held or ctx is done. The returned func releases them.
func (l *Locker) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = slices.Clone(keys)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	held := make([]*semaphore.Weighted, 0, len(keys))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Release(1)
		}
	}

	for _, key := range keys {
		gate := l.gate(key)
		if err := gate.Acquire(ctx, 1); err != nil {
			release()
			return nil, err
		}
		held = append(held, gate)
	}

	return release, nil
}

func (l *Locker) gate(key string) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()

	g, ok := l.gates[key]
	if !ok {
		g = semaphore.NewWeighted(1)
		l.gates[key] = g
	}
	return g
}
