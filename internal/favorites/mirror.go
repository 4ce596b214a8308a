package favorites

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/example/wordcards/pkg/models"
)

// Remote is the server side of the favorites set
type Remote interface {
	Favorites(ctx context.Context, q string) ([]models.Favorite, error)
	AddFavorite(ctx context.Context, id int64) error
	RemoveFavorite(ctx context.Context, id int64) error
	Search(ctx context.Context, q string) ([]models.Entry, error)
}

// Mirror is the local copy of the account's favorites, keyed by the
// lower-cased word
type Mirror struct {
	remote Remote
	items  map[string]models.Favorite
	now    func() time.Time
}

func NewMirror(remote Remote) *Mirror {
	return &Mirror{
		remote: remote,
		items:  make(map[string]models.Favorite),
		now:    time.Now,
	}
}

// Refresh replaces the mirror with the server's list. On failure the
// previous mirror is kept and the error is only logged.
func (m *Mirror) Refresh(ctx context.Context) {
	favs, err := m.remote.Favorites(ctx, "")
	if err != nil {
		zap.S().Warnw("refresh favorites", "error", err)
		return
	}

	m.items = lo.SliceToMap(favs, func(f models.Favorite) (string, models.Favorite) {
		return models.WordKey(f.Word), f
	})
}

// Has reports whether word is a favorite, ignoring case
func (m *Mirror) Has(word string) bool {
	_, ok := m.items[models.WordKey(word)]
	return ok
}

// ID returns the server id of a favorite word
func (m *Mirror) ID(word string) (int64, bool) {
	f, ok := m.items[models.WordKey(word)]
	return f.ID, ok
}

// List returns the mirrored favorites ordered by word
func (m *Mirror) List() []models.Favorite {
	favs := lo.Values(m.items)
	sort.Slice(favs, func(i, j int) bool {
		return models.WordKey(favs[i].Word) < models.WordKey(favs[j].Word)
	})
	return favs
}

// Add marks word as a favorite and returns its server id. The id is
// resolved through search; a word the server does not know yields
// models.ErrNotFound. Adding an existing favorite is a no-op.
func (m *Mirror) Add(ctx context.Context, word string) (int64, error) {
	if id, ok := m.ID(word); ok {
		return id, nil
	}

	id, err := m.resolve(ctx, word)
	if err != nil {
		return 0, err
	}
	return m.add(ctx, word, id)
}

// AddEntry is Add for an entry that may already carry its server id
func (m *Mirror) AddEntry(ctx context.Context, e models.Entry) (int64, error) {
	id, ok := e.FavoriteID()
	if !ok {
		return m.Add(ctx, e.Word)
	}
	if existing, ok := m.ID(e.Word); ok {
		return existing, nil
	}
	return m.add(ctx, e.Word, id)
}

func (m *Mirror) add(ctx context.Context, word string, id int64) (int64, error) {
	key := models.WordKey(word)
	added := models.Timestamp{Time: m.now()}
	m.items[key] = models.Favorite{ID: id, Word: word, AddedAt: &added}

	if err := m.remote.AddFavorite(ctx, id); err != nil {
		delete(m.items, key)
		return 0, fmt.Errorf("add favorite (word: %s): %w", word, err)
	}
	return id, nil
}

// Remove unmarks word. Removing a word that is not a favorite is a no-op;
// on server failure the local entry is restored.
func (m *Mirror) Remove(ctx context.Context, word string) error {
	key := models.WordKey(word)
	prev, ok := m.items[key]
	if !ok {
		return nil
	}

	delete(m.items, key)
	if err := m.remote.RemoveFavorite(ctx, prev.ID); err != nil {
		m.items[key] = prev
		return fmt.Errorf("remove favorite (word: %s): %w", word, err)
	}
	return nil
}

// Toggle adds or removes the entry and reports whether it is now a favorite
func (m *Mirror) Toggle(ctx context.Context, e models.Entry) (bool, error) {
	if m.Has(e.Word) {
		return false, m.Remove(ctx, e.Word)
	}
	if _, err := m.AddEntry(ctx, e); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Mirror) resolve(ctx context.Context, word string) (int64, error) {
	q := strings.TrimSpace(word)
	if q == "" {
		return 0, fmt.Errorf("resolve favorite (word: %q): %w", word, models.ErrNotFound)
	}

	entries, err := m.remote.Search(ctx, q)
	if err != nil {
		return 0, &models.FetchError{Op: "resolve favorite " + word, Err: err}
	}

	match, ok := lo.Find(entries, func(e models.Entry) bool {
		return e.ID != nil && strings.EqualFold(strings.TrimSpace(e.Word), q)
	})
	if !ok {
		return 0, fmt.Errorf("resolve favorite (word: %s): %w", word, models.ErrNotFound)
	}
	return *match.ID, nil
}
