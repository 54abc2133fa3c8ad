package quotes

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/graffic/kwoatle-go/internal/kv"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.March, 5, 14, 30, 15, 123_000_000, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestBook returns a book over a fresh memory store with a fixed clock
func newTestBook(t *testing.T) (*Book, *kv.Memory) {
	t.Helper()
	store := kv.NewMemory()
	return newBookWithClock(store, func() time.Time { return testNow }), store
}

func newBookWithClock(store kv.Store, now func() time.Time) *Book {
	book := NewBook(store, discardLogger())
	book.c.now = now
	book.c.ids = newIDSource(now)
	return book
}

// storedCategories decodes the raw categories value from the store
func storedCategories(t *testing.T, store kv.Store) []Category {
	t.Helper()
	data, err := store.Get(context.Background(), CategoriesKey)
	require.NoError(t, err)

	var cats []Category
	require.NoError(t, json.Unmarshal(data, &cats))
	return cats
}

// storedQuotes decodes the raw quotes value from the store
func storedQuotes(t *testing.T, store kv.Store) []Quote {
	t.Helper()
	data, err := store.Get(context.Background(), QuotesKey)
	require.NoError(t, err)

	var quotes []Quote
	require.NoError(t, json.Unmarshal(data, &quotes))
	return quotes
}

func seed(t *testing.T, store kv.Store, key string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), key, data))
}

// mockStore is a kv.Store without batch support
type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// failingBatchStore wraps a memory store and rejects every batch write
type failingBatchStore struct {
	*kv.Memory
	err error
}

func (s *failingBatchStore) SetBatch(ctx context.Context, entries map[string][]byte) error {
	return s.err
}
