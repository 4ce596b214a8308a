package wordbook

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wordcards/pkg/models"
)

type fakeSource struct {
	books map[string][]models.Entry
	calls []string
	err   error
}

func (f *fakeSource) WordBook(_ context.Context, name string) ([]models.Entry, error) {
	f.calls = append(f.calls, name)
	if f.err != nil {
		return nil, f.err
	}
	entries, ok := f.books[name]
	if !ok {
		return nil, errors.New("status 404")
	}
	return entries, nil
}

func (f *fakeSource) WordBooks(context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []string{"a", "b"}, nil
}

func newSource() *fakeSource {
	return &fakeSource{books: map[string][]models.Entry{
		"a": {{Word: "one"}, {Word: "two"}},
		"b": {{Word: "three"}},
	}}
}

func TestLoadCachesByName(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	src := newSource()
	store := NewStore(src)

	first, err := store.Load(ctx, "a")
	require.NoError(t, err)
	second, err := store.Load(ctx, "a")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"a"}, src.calls)

	name, ok := store.Cached()
	assert.True(t, ok)
	assert.Equal(t, "a", name)
}

func TestLoadOtherNameRefetches(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	src := newSource()
	store := NewStore(src)

	_, err := store.Load(ctx, "a")
	require.NoError(t, err)
	entries, err := store.Load(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "three", entries[0].Word)
	_, err = store.Load(ctx, "a")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "a"}, src.calls)
}

func TestLoadFailureIsFetchError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	src := newSource()
	store := NewStore(src)

	_, err := store.Load(ctx, "a")
	require.NoError(t, err)

	entries, err := store.Load(ctx, "missing")
	assert.Nil(t, entries)
	assert.ErrorIs(t, err, models.ErrFetch)

	var fetchErr *models.FetchError
	require.ErrorAs(t, err, &fetchErr)

	_, ok := store.Cached()
	assert.False(t, ok)

	// a failed load is retried on the next call
	_, _ = store.Load(ctx, "missing")
	assert.Equal(t, []string{"a", "missing", "missing"}, src.calls)
}

func TestInvalidate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	src := newSource()
	store := NewStore(src)

	_, err := store.Load(ctx, "a")
	require.NoError(t, err)
	store.Invalidate()
	_, err = store.Load(ctx, "a")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "a"}, src.calls)
}

func TestBooks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	src := newSource()

	names, err := NewStore(src).Books(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	src.err = errors.New("offline")
	_, err = NewStore(src).Books(ctx)
	assert.ErrorIs(t, err, models.ErrFetch)
}
