package quotes

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// CategoryRepository manages the categories collection
type CategoryRepository struct {
	c *collections
}

// List returns every category sorted by order. Orders missing from stored
// records are backfilled with their index and persisted.
func (r *CategoryRepository) List(ctx context.Context) ([]Category, error) {
	cats, backfilled, err := r.c.loadCategories(ctx)
	if err != nil {
		return nil, err
	}

	if backfilled {
		cats, err = r.backfillOrder(ctx)
		if err != nil {
			return nil, err
		}
	}

	sortByOrder(cats)
	return nonNil(cats), nil
}

// backfillOrder reloads under the write gate so a concurrent writer is not overwritten
func (r *CategoryRepository) backfillOrder(ctx context.Context) ([]Category, error) {
	unlock, err := r.c.lock(ctx, CategoriesKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	cats, backfilled, err := r.c.loadCategories(ctx)
	if err != nil {
		return nil, err
	}
	if !backfilled {
		return cats, nil
	}

	if err := r.c.write(ctx, cats, nil); err != nil {
		return nil, err
	}
	r.c.logger.Info("backfilled category order", "categories", len(cats))
	return cats, nil
}

// Get returns the category with the given id
func (r *CategoryRepository) Get(ctx context.Context, id int64) (Category, error) {
	cats, _, err := r.c.loadCategories(ctx)
	if err != nil {
		return Category{}, err
	}

	i := indexOfCategory(cats, id)
	if i < 0 {
		return Category{}, &NotFoundError{Entity: "category", ID: id}
	}
	return cats[i], nil
}

// Create appends a new category at the end of the display order.
// An empty color selects DefaultColor.
func (r *CategoryRepository) Create(ctx context.Context, title, color string) (Category, error) {
	in := normalizeCategory(title, color)
	if err := r.c.validator.Validate(in); err != nil {
		return Category{}, err
	}

	unlock, err := r.c.lock(ctx, CategoriesKey)
	if err != nil {
		return Category{}, err
	}
	defer unlock()

	cats, _, err := r.c.loadCategories(ctx)
	if err != nil {
		return Category{}, err
	}

	cat := Category{
		ID:             r.c.ids.next(maxCategoryID(cats)),
		Title:          in.Title,
		Color:          in.Color,
		AmountOfQuotes: 0,
		Order:          len(cats),
	}
	cats = append(cats, cat)

	if err := r.c.write(ctx, cats, nil); err != nil {
		return Category{}, err
	}

	r.c.logger.Debug("created category", "category_id", cat.ID, "order", cat.Order)
	return cat, nil
}

// Update replaces the title and color of a category. An empty color keeps the current one.
// An empty title or an unknown id leaves the collection untouched and reports false.
func (r *CategoryRepository) Update(ctx context.Context, id int64, title, color string) (bool, error) {
	in := CategoryInput{
		Title: strings.TrimSpace(title),
		Color: strings.TrimSpace(color),
	}
	if in.Title == "" {
		r.c.logger.Debug("ignoring category update with empty title", "category_id", id)
		return false, nil
	}
	if in.Color != "" {
		if err := r.c.validator.Validate(in); err != nil {
			return false, err
		}
	}

	unlock, err := r.c.lock(ctx, CategoriesKey)
	if err != nil {
		return false, err
	}
	defer unlock()

	cats, _, err := r.c.loadCategories(ctx)
	if err != nil {
		return false, err
	}

	i := indexOfCategory(cats, id)
	if i < 0 {
		r.c.logger.Debug("ignoring update of unknown category", "category_id", id)
		return false, nil
	}

	if in.Color == "" {
		in.Color = cats[i].Color
	}
	if cats[i].Title == in.Title && cats[i].Color == in.Color {
		return true, nil
	}
	cats[i].Title = in.Title
	cats[i].Color = in.Color

	if err := r.c.write(ctx, cats, nil); err != nil {
		return false, err
	}
	return true, nil
}

// Reorder assigns each category the position of its id in ids.
// ids must name every category exactly once; the current order is a no-op.
func (r *CategoryRepository) Reorder(ctx context.Context, ids []int64) error {
	unlock, err := r.c.lock(ctx, CategoriesKey)
	if err != nil {
		return err
	}
	defer unlock()

	cats, backfilled, err := r.c.loadCategories(ctx)
	if err != nil {
		return err
	}

	position, err := positions(cats, ids)
	if err != nil {
		return err
	}

	changed := backfilled
	for i := range cats {
		if p := position[cats[i].ID]; cats[i].Order != p {
			cats[i].Order = p
			changed = true
		}
	}
	if !changed {
		return nil
	}

	sortByOrder(cats)
	if err := r.c.write(ctx, cats, nil); err != nil {
		return err
	}

	r.c.logger.Debug("reordered categories", "categories", len(cats))
	return nil
}

// positions maps each id to its index, rejecting anything but a permutation of cats
func positions(cats []Category, ids []int64) (map[int64]int, error) {
	if len(ids) != len(cats) {
		return nil, &ValidationError{
			Field:   "ids",
			Message: fmt.Sprintf("expected %d category ids, got %d", len(cats), len(ids)),
		}
	}

	position := make(map[int64]int, len(ids))
	for i, id := range ids {
		if indexOfCategory(cats, id) < 0 {
			return nil, &ValidationError{Field: "ids", Message: fmt.Sprintf("category %d does not exist", id)}
		}
		if _, dup := position[id]; dup {
			return nil, &ValidationError{Field: "ids", Message: fmt.Sprintf("category %d listed twice", id)}
		}
		position[id] = i
	}
	return position, nil
}

// Remove deletes a category together with every quote filed under it and
// closes the gap in the display order. Unknown ids report false.
func (r *CategoryRepository) Remove(ctx context.Context, id int64) (bool, error) {
	unlock, err := r.c.lock(ctx, CategoriesKey, QuotesKey)
	if err != nil {
		return false, err
	}
	defer unlock()

	cats, _, err := r.c.loadCategories(ctx)
	if err != nil {
		return false, err
	}

	i := indexOfCategory(cats, id)
	if i < 0 {
		r.c.logger.Debug("ignoring removal of unknown category", "category_id", id)
		return false, nil
	}

	quotes, err := r.c.loadQuotes(ctx)
	if err != nil {
		return false, err
	}

	cats = slices.Delete(cats, i, i+1)
	densifyOrder(cats)

	kept := slices.DeleteFunc(quotes, func(q Quote) bool {
		return q.CategoryID == id
	})
	removed := len(quotes) - len(kept)

	if err := r.c.write(ctx, nonNil(cats), nonNil(kept)); err != nil {
		return false, err
	}

	r.c.logger.Info("removed category", "category_id", id, "quotes_removed", removed)
	return true, nil
}

// IncrementQuoteCount adds delta to the category's quote count, never going below zero.
// Unknown ids report false.
func (r *CategoryRepository) IncrementQuoteCount(ctx context.Context, id int64, delta int) (bool, error) {
	unlock, err := r.c.lock(ctx, CategoriesKey)
	if err != nil {
		return false, err
	}
	defer unlock()

	cats, _, err := r.c.loadCategories(ctx)
	if err != nil {
		return false, err
	}

	if !adjustCount(cats, id, delta) {
		return false, nil
	}

	if err := r.c.write(ctx, cats, nil); err != nil {
		return false, err
	}
	return true, nil
}

// adjustCount applies delta to the matching category, clamped at zero
func adjustCount(cats []Category, id int64, delta int) bool {
	i := indexOfCategory(cats, id)
	if i < 0 {
		return false
	}
	cats[i].AmountOfQuotes = max(cats[i].AmountOfQuotes+delta, 0)
	return true
}

// densifyOrder renumbers orders 0..n-1 keeping the relative order
func densifyOrder(cats []Category) {
	sortByOrder(cats)
	for i := range cats {
		cats[i].Order = i
	}
}

func sortByOrder(cats []Category) {
	slices.SortStableFunc(cats, func(a, b Category) int {
		return a.Order - b.Order
	})
}

func indexOfCategory(cats []Category, id int64) int {
	return slices.IndexFunc(cats, func(c Category) bool {
		return c.ID == id
	})
}

func maxCategoryID(cats []Category) int64 {
	var m int64
	for _, c := range cats {
		m = max(m, c.ID)
	}
	return m
}
