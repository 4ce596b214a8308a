package progress

import (
	"context"
	"fmt"

	"github.com/example/wordcards/internal/state"
)

// Tracker keeps the per-book learning cursor: how many entries of a book
// have been answered Known.
type Tracker struct {
	store *state.Store
}

func NewTracker(store *state.Store) *Tracker {
	return &Tracker{store: store}
}

// Get returns the progress of book, 0 when nothing was stored
func (t *Tracker) Get(ctx context.Context, book string) int {
	p := t.store.GetInt(ctx, state.ProgressKey(book), 0)
	if p < 0 {
		return 0
	}
	return p
}

// Advance increments the progress of book and persists it before returning
func (t *Tracker) Advance(ctx context.Context, book string) (int, error) {
	next := t.Get(ctx, book) + 1
	if err := t.store.SetInt(ctx, state.ProgressKey(book), next); err != nil {
		return 0, fmt.Errorf("advance progress (book: %s): %w", book, err)
	}
	return next, nil
}

// Reset starts book over from its first entry
func (t *Tracker) Reset(ctx context.Context, book string) error {
	if err := t.store.Delete(ctx, state.ProgressKey(book)); err != nil {
		return fmt.Errorf("reset progress (book: %s): %w", book, err)
	}
	return nil
}
