package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/graffic/kwoatle-go/internal/kv"
)

// collections owns the two stored arrays and the write gates in front of them
type collections struct {
	store     kv.Store
	locks     *kv.Locker
	ids       *idSource
	now       func() time.Time
	validator *Validator
	logger    *slog.Logger
}

// lock holds the write gates of the given keys until the returned func is called
func (c *collections) lock(ctx context.Context, keys ...string) (func(), error) {
	unlock, err := c.locks.Lock(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire %v: %w", keys, err)
	}
	return unlock, nil
}

// loadCategories reads the category array. Entries stored without an order
// get their index and the result is densified so backfilled indexes cannot
// collide with stored orders; backfilled reports whether that happened.
func (c *collections) loadCategories(ctx context.Context) (cats []Category, backfilled bool, err error) {
	data, err := c.read(ctx, CategoriesKey)
	if err != nil || data == nil {
		return nil, false, err
	}

	if err := c.decode(CategoriesKey, data, &cats); err != nil {
		return nil, false, err
	}

	// Records written before ordering existed have no order field at all
	var orders []struct {
		Order *int `json:"order"`
	}
	if err := c.decode(CategoriesKey, data, &orders); err != nil {
		return nil, false, err
	}
	for i := range cats {
		if orders[i].Order == nil {
			cats[i].Order = i
			backfilled = true
		}
	}
	if backfilled {
		densifyOrder(cats)
	}

	return cats, backfilled, nil
}

// loadQuotes reads the quote array
func (c *collections) loadQuotes(ctx context.Context) ([]Quote, error) {
	data, err := c.read(ctx, QuotesKey)
	if err != nil || data == nil {
		return nil, err
	}

	var quotes []Quote
	if err := c.decode(QuotesKey, data, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// read returns nil data for a key that has never been written (first run)
func (c *collections) read(ctx context.Context, key string) ([]byte, error) {
	data, err := c.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		c.logger.Error("failed to read collection", "key", key, "error", err)
		return nil, &StorageError{Op: "read", Key: key, Err: err}
	}
	return data, nil
}

func (c *collections) decode(key string, data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		c.logger.Error("stored collection is corrupt", "key", key, "error", err)
		return &StorageError{Op: "decode", Key: key, Err: fmt.Errorf("%w: %v", ErrCorrupt, err)}
	}
	return nil
}

// write persists the given collections all-or-nothing
func (c *collections) write(ctx context.Context, cats []Category, quotes []Quote) error {
	entries := make(map[string][]byte, 2)

	if cats != nil {
		data, err := json.Marshal(cats)
		if err != nil {
			return &StorageError{Op: "encode", Key: CategoriesKey, Err: err}
		}
		entries[CategoriesKey] = data
	}
	if quotes != nil {
		data, err := json.Marshal(quotes)
		if err != nil {
			return &StorageError{Op: "encode", Key: QuotesKey, Err: err}
		}
		entries[QuotesKey] = data
	}

	if err := kv.SetAll(ctx, c.store, entries); err != nil {
		c.logger.Error("failed to write collections", "keys", len(entries), "error", err)
		return &StorageError{Op: "write", Key: keyList(entries), Err: err}
	}
	return nil
}

func keyList(entries map[string][]byte) string {
	switch {
	case len(entries) == 2:
		return CategoriesKey + "+" + QuotesKey
	case entries[CategoriesKey] != nil:
		return CategoriesKey
	default:
		return QuotesKey
	}
}

// nonNil keeps an emptied collection distinguishable from "do not write"
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
