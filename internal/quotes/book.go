// Package quotes implements the quote book: categories and the quotes filed
// under them, persisted as two JSON collections in a key-value store.
package quotes

import (
	"context"
	"log/slog"
	"time"

	"github.com/graffic/kwoatle-go/internal/kv"
)

// Book gives access to both repositories over one store.
// Repositories of the same Book share write gates, so their mutations never interleave.
type Book struct {
	Categories *CategoryRepository
	Quotes     *QuoteRepository

	c *collections
}

// NewBook creates the repositories over store
func NewBook(store kv.Store, logger *slog.Logger) *Book {
	c := &collections{
		store:     store,
		locks:     kv.NewLocker(),
		ids:       newIDSource(time.Now),
		now:       time.Now,
		validator: NewValidator(),
		logger:    logger,
	}

	return &Book{
		Categories: &CategoryRepository{c: c},
		Quotes:     &QuoteRepository{c: c},
		c:          c,
	}
}

// Snapshot is a consistent copy of both collections
type Snapshot struct {
	Categories []Category `json:"categories"`
	Quotes     []Quote    `json:"quotes"`
}

// Snapshot reads both collections while holding their write gates
func (b *Book) Snapshot(ctx context.Context) (*Snapshot, error) {
	unlock, err := b.c.lock(ctx, CategoriesKey, QuotesKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	cats, _, err := b.c.loadCategories(ctx)
	if err != nil {
		return nil, err
	}
	quotes, err := b.c.loadQuotes(ctx)
	if err != nil {
		return nil, err
	}

	sortByOrder(cats)
	return &Snapshot{Categories: nonNil(cats), Quotes: nonNil(quotes)}, nil
}
