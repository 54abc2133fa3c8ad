// Package kv provides the string-keyed byte store the quote book persists into.
package kv

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrNotFound is returned by Get when the key has never been written
var ErrNotFound = errors.New("kv: key not found")

// Store is a string-keyed byte store without transactions
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Batcher is implemented by stores that can write several keys all-or-nothing
type Batcher interface {
	SetBatch(ctx context.Context, entries map[string][]byte) error
}

// SetAll writes every entry. Stores implementing Batcher write them atomically,
// other stores get one Set per key in sorted key order.
func SetAll(ctx context.Context, s Store, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}
	if b, ok := s.(Batcher); ok {
		return b.SetBatch(ctx, entries)
	}

	for _, key := range sortedKeys(entries) {
		if err := s.Set(ctx, key, entries[key]); err != nil {
			return fmt.Errorf("failed to set %q: %w", key, err)
		}
	}
	return nil
}

func sortedKeys(entries map[string][]byte) []string {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
