package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/graffic/kwoatle-go/internal/kv"
	"github.com/graffic/kwoatle-go/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCategories_ListEmptyOnFirstRun(t *testing.T) {
	book, store := newTestBook(t)

	cats, err := book.Categories.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, cats)
	assert.Empty(t, cats)

	// Reading never creates the key
	_, err = store.Get(context.Background(), CategoriesKey)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestCategories_Create(t *testing.T) {
	book, store := newTestBook(t)

	cat, err := book.Categories.Create(context.Background(), "Motivation", "#218690")
	require.NoError(t, err)

	assert.Equal(t, testNow.UnixMilli(), cat.ID)
	assert.Equal(t, "Motivation", cat.Title)
	assert.Equal(t, "#218690", cat.Color)
	assert.Equal(t, 0, cat.AmountOfQuotes)
	assert.Equal(t, 0, cat.Order)

	assert.Equal(t, []Category{cat}, storedCategories(t, store))
}

func TestCategories_CreateAppendsAtEnd(t *testing.T) {
	book, _ := newTestBook(t)
	ctx := context.Background()

	var ids []int64
	for i, title := range []string{"Motivation", "Humor", "Stoics"} {
		cat, err := book.Categories.Create(ctx, title, "")
		require.NoError(t, err)
		assert.Equal(t, i, cat.Order)
		ids = append(ids, cat.ID)
	}

	// Ids stay unique even when the clock does not move
	assert.Equal(t, []int64{testNow.UnixMilli(), testNow.UnixMilli() + 1, testNow.UnixMilli() + 2}, ids)

	cats, err := book.Categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 3)
	assert.Equal(t, "Motivation", cats[0].Title)
	assert.Equal(t, "Stoics", cats[2].Title)
}

func TestCategories_CreateTrimsAndDefaultsColor(t *testing.T) {
	book, _ := newTestBook(t)

	cat, err := book.Categories.Create(context.Background(), "  Humor  ", "  ")
	require.NoError(t, err)
	assert.Equal(t, "Humor", cat.Title)
	assert.Equal(t, DefaultColor, cat.Color)
}

func TestCategories_CreateRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		title string
		color string
		field string
	}{
		{name: "empty title", title: "", color: "#218690", field: "title"},
		{name: "blank title", title: "   ", color: "#218690", field: "title"},
		{name: "bad color", title: "Humor", color: "teal", field: "color"},
		{name: "short hex", title: "Humor", color: "#fff", field: "color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book, store := newTestBook(t)

			_, err := book.Categories.Create(context.Background(), tt.title, tt.color)
			require.Error(t, err)
			assert.True(t, IsValidation(err))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)

			// Nothing was persisted
			_, err = store.Get(context.Background(), CategoriesKey)
			assert.ErrorIs(t, err, kv.ErrNotFound)
		})
	}
}

func TestCategories_Get(t *testing.T) {
	book, _ := newTestBook(t)
	ctx := context.Background()

	created, err := book.Categories.Create(ctx, "Motivation", "")
	require.NoError(t, err)

	got, err := book.Categories.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = book.Categories.Get(ctx, 42)
	assert.True(t, IsNotFound(err))
	assert.EqualError(t, err, "category 42 not found")
}

func TestCategories_Update(t *testing.T) {
	book, store := newTestBook(t)
	ctx := context.Background()

	cat, err := book.Categories.Create(ctx, "Motivation", "#218690")
	require.NoError(t, err)

	ok, err := book.Categories.Update(ctx, cat.ID, " Drive ", "#247BA0")
	require.NoError(t, err)
	assert.True(t, ok)

	stored := storedCategories(t, store)
	require.Len(t, stored, 1)
	assert.Equal(t, "Drive", stored[0].Title)
	assert.Equal(t, "#247BA0", stored[0].Color)
	assert.Equal(t, cat.ID, stored[0].ID)
	assert.Equal(t, cat.Order, stored[0].Order)
}

func TestCategories_UpdateEmptyColorKeepsCurrent(t *testing.T) {
	book, store := newTestBook(t)
	ctx := context.Background()

	cat, err := book.Categories.Create(ctx, "Motivation", "#70C1B3")
	require.NoError(t, err)

	ok, err := book.Categories.Update(ctx, cat.ID, "Drive", "")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "#70C1B3", storedCategories(t, store)[0].Color)
}

func TestCategories_UpdateIgnoredCases(t *testing.T) {
	book, store := newTestBook(t)
	ctx := context.Background()

	cat, err := book.Categories.Create(ctx, "Motivation", "")
	require.NoError(t, err)

	// Empty title
	ok, err := book.Categories.Update(ctx, cat.ID, "  ", "#247BA0")
	require.NoError(t, err)
	assert.False(t, ok)

	// Unknown id
	ok, err = book.Categories.Update(ctx, 42, "Humor", "")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []Category{cat}, storedCategories(t, store))
}

func TestCategories_UpdateRejectsBadColor(t *testing.T) {
	book, _ := newTestBook(t)
	ctx := context.Background()

	cat, err := book.Categories.Create(ctx, "Motivation", "")
	require.NoError(t, err)

	_, err = book.Categories.Update(ctx, cat.ID, "Motivation", "red")
	assert.True(t, IsValidation(err))
}

func TestCategories_Reorder(t *testing.T) {
	book, _ := newTestBook(t)
	ctx := context.Background()

	a, err := book.Categories.Create(ctx, "A", "")
	require.NoError(t, err)
	b, err := book.Categories.Create(ctx, "B", "")
	require.NoError(t, err)
	c, err := book.Categories.Create(ctx, "C", "")
	require.NoError(t, err)

	require.NoError(t, book.Categories.Reorder(ctx, []int64{c.ID, a.ID, b.ID}))

	cats, err := book.Categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 3)
	assert.Equal(t, []string{"C", "A", "B"}, []string{cats[0].Title, cats[1].Title, cats[2].Title})
	for i, cat := range cats {
		assert.Equal(t, i, cat.Order)
	}
}

func TestCategories_ReorderRejectsNonPermutation(t *testing.T) {
	book, store := newTestBook(t)
	ctx := context.Background()

	a, err := book.Categories.Create(ctx, "A", "")
	require.NoError(t, err)
	b, err := book.Categories.Create(ctx, "B", "")
	require.NoError(t, err)
	before := storedCategories(t, store)

	tests := []struct {
		name string
		ids  []int64
	}{
		{name: "missing id", ids: []int64{a.ID}},
		{name: "unknown id", ids: []int64{a.ID, 42}},
		{name: "duplicate id", ids: []int64{a.ID, a.ID}},
		{name: "extra id", ids: []int64{a.ID, b.ID, 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := book.Categories.Reorder(ctx, tt.ids)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Equal(t, before, storedCategories(t, store))
		})
	}
}

func TestCategories_RemoveCascadesQuotes(t *testing.T) {
	book, store := newTestBook(t)
	ctx := context.Background()

	motivation, err := book.Categories.Create(ctx, "Motivation", "#218690")
	require.NoError(t, err)
	humor, err := book.Categories.Create(ctx, "Humor", "")
	require.NoError(t, err)

	_, err = book.Quotes.Create(ctx, motivation.ID, "Keep going", "")
	require.NoError(t, err)
	kept, err := book.Quotes.Create(ctx, humor.ID, "A joke", "Someone")
	require.NoError(t, err)

	ok, err := book.Categories.Remove(ctx, motivation.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	cats := storedCategories(t, store)
	require.Len(t, cats, 1)
	assert.Equal(t, humor.ID, cats[0].ID)
	assert.Equal(t, 0, cats[0].Order)

	assert.Equal(t, []Quote{kept}, storedQuotes(t, store))
}

func TestCategories_ReorderToCurrentOrderDoesNotWrite(t *testing.T) {
	data, err := json.Marshal([]Category{
		{ID: 1, Title: "A", Color: DefaultColor, Order: 0},
		{ID: 2, Title: "B", Color: DefaultColor, Order: 1},
	})
	require.NoError(t, err)

	store := new(mockStore)
	store.On("Get", mock.Anything, CategoriesKey).Return(data, nil)

	book := NewBook(store, discardLogger())
	ctx := context.Background()

	before, err := book.Categories.List(ctx)
	require.NoError(t, err)

	require.NoError(t, book.Categories.Reorder(ctx, []int64{1, 2}))

	after, err := book.Categories.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestCategories_RemoveKeepsRelativeOrder(t *testing.T) {
	book, store := newTestBook(t)
	ctx := context.Background()

	ids := map[string]int64{}
	for _, title := range []string{"A", "B", "C", "D"} {
		cat, err := book.Categories.Create(ctx, title, "")
		require.NoError(t, err)
		ids[title] = cat.ID
	}
	require.NoError(t, book.Categories.Reorder(ctx, []int64{ids["D"], ids["B"], ids["A"], ids["C"]}))

	ok, err := book.Categories.Remove(ctx, ids["A"])
	require.NoError(t, err)
	require.True(t, ok)

	_, err = book.Categories.Create(ctx, "E", "")
	require.NoError(t, err)

	cats, err := book.Categories.List(ctx)
	require.NoError(t, err)

	var titles []string
	for i, cat := range cats {
		titles = append(titles, cat.Title)
		assert.Equal(t, i, cat.Order, "category %s", cat.Title)
	}
	assert.Equal(t, []string{"D", "B", "C", "E"}, titles)
	assert.ElementsMatch(t, cats, storedCategories(t, store))
}

func TestCategories_RemoveLastLeavesEmptyArrays(t *testing.T) {
	book, store := newTestBook(t)
	ctx := context.Background()

	cat, err := book.Categories.Create(ctx, "Motivation", "")
	require.NoError(t, err)
	_, err = book.Quotes.Create(ctx, cat.ID, "Keep going", "")
	require.NoError(t, err)

	ok, err := book.Categories.Remove(ctx, cat.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	raw, err := store.Get(ctx, CategoriesKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))

	raw, err = store.Get(ctx, QuotesKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestCategories_RemoveUnknown(t *testing.T) {
	book, _ := newTestBook(t)

	ok, err := book.Categories.Remove(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCategories_IncrementQuoteCount(t *testing.T) {
	book, store := newTestBook(t)
	ctx := context.Background()

	cat, err := book.Categories.Create(ctx, "Motivation", "")
	require.NoError(t, err)

	ok, err := book.Categories.IncrementQuoteCount(ctx, cat.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, storedCategories(t, store)[0].AmountOfQuotes)

	// Never below zero
	ok, err = book.Categories.IncrementQuoteCount(ctx, cat.ID, -5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, storedCategories(t, store)[0].AmountOfQuotes)

	ok, err = book.Categories.IncrementQuoteCount(ctx, 42, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCategories_ListBackfillsMissingOrder(t *testing.T) {
	book, store := newTestBook(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, CategoriesKey, testutils.LoadFixture(t, "legacy_categories.json")))

	cats, err := book.Categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 3)
	for i, cat := range cats {
		assert.Equal(t, i, cat.Order)
	}
	assert.Equal(t, "Motivation", cats[0].Title)
	assert.Equal(t, 2, cats[0].AmountOfQuotes)

	// The backfilled order is persisted
	raw, err := store.Get(ctx, CategoriesKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"order":2`)
}

func TestCategories_ListBackfillsMixedLegacyOrders(t *testing.T) {
	book, store := newTestBook(t)
	ctx := context.Background()

	// B has no order; its index would collide with A's stored order
	require.NoError(t, store.Set(ctx, CategoriesKey, []byte(`[
		{"id": 1, "title": "A", "color": "#218690", "amountOfQuotes": 0, "order": 1},
		{"id": 2, "title": "B", "color": "#218690", "amountOfQuotes": 0},
		{"id": 3, "title": "C", "color": "#218690", "amountOfQuotes": 0, "order": 0}
	]`)))

	cats, err := book.Categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 3)

	assert.Equal(t, []int64{3, 1, 2}, []int64{cats[0].ID, cats[1].ID, cats[2].ID})
	for i, cat := range cats {
		assert.Equal(t, i, cat.Order)
	}

	orders := map[int]bool{}
	for _, cat := range storedCategories(t, store) {
		orders[cat.Order] = true
	}
	assert.Len(t, orders, 3)
}

func TestCategories_ListSortsByOrder(t *testing.T) {
	book, store := newTestBook(t)
	seed(t, store, CategoriesKey, []Category{
		{ID: 1, Title: "Second", Color: DefaultColor, Order: 1},
		{ID: 2, Title: "First", Color: DefaultColor, Order: 0},
	})

	cats, err := book.Categories.List(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "First", cats[0].Title)
	assert.Equal(t, "Second", cats[1].Title)
}

func TestCategories_CorruptCollection(t *testing.T) {
	for _, raw := range []string{"not json", "", `{"id":1}`} {
		t.Run(raw, func(t *testing.T) {
			book, store := newTestBook(t)
			require.NoError(t, store.Set(context.Background(), CategoriesKey, []byte(raw)))

			_, err := book.Categories.List(context.Background())
			require.Error(t, err)
			assert.True(t, IsStorage(err))
			assert.ErrorIs(t, err, ErrCorrupt)

			_, err = book.Categories.Create(context.Background(), "Humor", "")
			assert.True(t, IsStorage(err))
		})
	}
}

func TestCategories_StoreReadFailure(t *testing.T) {
	store := new(mockStore)
	boom := errors.New("disk unavailable")
	store.On("Get", mock.Anything, CategoriesKey).Return(nil, boom)

	book := NewBook(store, discardLogger())

	_, err := book.Categories.List(context.Background())
	require.Error(t, err)
	assert.True(t, IsStorage(err))
	assert.ErrorIs(t, err, boom)

	var serr *StorageError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "read", serr.Op)
	assert.Equal(t, CategoriesKey, serr.Key)
	store.AssertExpectations(t)
}

func TestCategories_StoreWriteFailure(t *testing.T) {
	store := new(mockStore)
	boom := errors.New("disk full")
	store.On("Get", mock.Anything, CategoriesKey).Return(nil, kv.ErrNotFound)
	store.On("Set", mock.Anything, CategoriesKey, mock.Anything).Return(boom)

	book := NewBook(store, discardLogger())

	_, err := book.Categories.Create(context.Background(), "Motivation", "")
	require.Error(t, err)
	assert.True(t, IsStorage(err))
	assert.ErrorIs(t, err, boom)
	store.AssertExpectations(t)
}
