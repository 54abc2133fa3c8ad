package quotes

import (
	"context"
	"slices"
)

// QuoteRepository manages the quotes collection and keeps category counts in step
type QuoteRepository struct {
	c *collections
}

// ListByCategory returns the quotes filed under categoryID in stored order
func (r *QuoteRepository) ListByCategory(ctx context.Context, categoryID int64) ([]Quote, error) {
	quotes, err := r.c.loadQuotes(ctx)
	if err != nil {
		return nil, err
	}

	matched := []Quote{}
	for _, q := range quotes {
		if q.CategoryID == categoryID {
			matched = append(matched, q)
		}
	}
	return matched, nil
}

// ListAll returns every stored quote
func (r *QuoteRepository) ListAll(ctx context.Context) ([]Quote, error) {
	quotes, err := r.c.loadQuotes(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(quotes), nil
}

// Get returns the quote with the given id
func (r *QuoteRepository) Get(ctx context.Context, id int64) (Quote, error) {
	quotes, err := r.c.loadQuotes(ctx)
	if err != nil {
		return Quote{}, err
	}

	i := indexOfQuote(quotes, id)
	if i < 0 {
		return Quote{}, &NotFoundError{Entity: "quote", ID: id}
	}
	return quotes[i], nil
}

// Create files a new quote under categoryID and increments the category's count.
// Both collections are written in one batch.
func (r *QuoteRepository) Create(ctx context.Context, categoryID int64, text, author string) (Quote, error) {
	in := normalizeQuote(text, author)
	if err := r.c.validator.Validate(in); err != nil {
		return Quote{}, err
	}

	unlock, err := r.c.lock(ctx, CategoriesKey, QuotesKey)
	if err != nil {
		return Quote{}, err
	}
	defer unlock()

	cats, _, err := r.c.loadCategories(ctx)
	if err != nil {
		return Quote{}, err
	}
	if !adjustCount(cats, categoryID, +1) {
		return Quote{}, &ValidationError{Field: "categoryId", Message: "category does not exist"}
	}

	quotes, err := r.c.loadQuotes(ctx)
	if err != nil {
		return Quote{}, err
	}

	q := Quote{
		ID:         r.c.ids.next(maxQuoteID(quotes)),
		Text:       in.Text,
		Author:     in.Author,
		CategoryID: categoryID,
		DateAdded:  timestamp(r.c.now()),
	}
	quotes = append(quotes, q)

	if err := r.c.write(ctx, cats, quotes); err != nil {
		return Quote{}, err
	}

	r.c.logger.Debug("created quote", "quote_id", q.ID, "category_id", categoryID)
	return q, nil
}

// Update replaces the text and author of a quote; a blank author becomes UnknownAuthor.
// DateAdded and CategoryID never change. An empty text or unknown id reports false.
func (r *QuoteRepository) Update(ctx context.Context, id int64, text, author string) (bool, error) {
	in := normalizeQuote(text, author)
	if in.Text == "" {
		r.c.logger.Debug("ignoring quote update with empty text", "quote_id", id)
		return false, nil
	}

	unlock, err := r.c.lock(ctx, QuotesKey)
	if err != nil {
		return false, err
	}
	defer unlock()

	quotes, err := r.c.loadQuotes(ctx)
	if err != nil {
		return false, err
	}

	i := indexOfQuote(quotes, id)
	if i < 0 {
		r.c.logger.Debug("ignoring update of unknown quote", "quote_id", id)
		return false, nil
	}

	if quotes[i].Text == in.Text && quotes[i].Author == in.Author {
		return true, nil
	}
	quotes[i].Text = in.Text
	quotes[i].Author = in.Author

	if err := r.c.write(ctx, nil, quotes); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes a quote and decrements its category's count, never below zero.
// Unknown ids report false.
func (r *QuoteRepository) Remove(ctx context.Context, id int64) (bool, error) {
	unlock, err := r.c.lock(ctx, CategoriesKey, QuotesKey)
	if err != nil {
		return false, err
	}
	defer unlock()

	quotes, err := r.c.loadQuotes(ctx)
	if err != nil {
		return false, err
	}

	i := indexOfQuote(quotes, id)
	if i < 0 {
		r.c.logger.Debug("ignoring removal of unknown quote", "quote_id", id)
		return false, nil
	}
	categoryID := quotes[i].CategoryID
	quotes = slices.Delete(quotes, i, i+1)

	cats, _, err := r.c.loadCategories(ctx)
	if err != nil {
		return false, err
	}

	// An orphaned quote has no count to decrement
	var touched []Category
	if adjustCount(cats, categoryID, -1) {
		touched = cats
	}

	if err := r.c.write(ctx, touched, nonNil(quotes)); err != nil {
		return false, err
	}

	r.c.logger.Debug("removed quote", "quote_id", id, "category_id", categoryID)
	return true, nil
}

func indexOfQuote(quotes []Quote, id int64) int {
	return slices.IndexFunc(quotes, func(q Quote) bool {
		return q.ID == id
	})
}

func maxQuoteID(quotes []Quote) int64 {
	var m int64
	for _, q := range quotes {
		m = max(m, q.ID)
	}
	return m
}
