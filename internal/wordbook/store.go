package wordbook

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/wordcards/pkg/models"
)

// Source provides word-books by name
type Source interface {
	WordBook(ctx context.Context, name string) ([]models.Entry, error)
	WordBooks(ctx context.Context) ([]string, error)
}

// Store keeps the most recently loaded word-book in memory.
// Only one book is cached: loading another name drops it.
type Store struct {
	source  Source
	name    string
	entries []models.Entry
	loaded  bool
}

func NewStore(source Source) *Store {
	return &Store{source: source}
}

// Load returns the entries of the named book, fetching them unless the
// same book is already cached. Failures are returned as *models.FetchError
// and leave the cache empty.
func (s *Store) Load(ctx context.Context, name string) ([]models.Entry, error) {
	if s.loaded && s.name == name {
		return s.entries, nil
	}
	s.Invalidate()

	entries, err := s.source.WordBook(ctx, name)
	if err != nil {
		return nil, &models.FetchError{Op: "load word book " + name, Err: err}
	}
	if entries == nil {
		entries = []models.Entry{}
	}

	s.name = name
	s.entries = entries
	s.loaded = true
	zap.S().Debugw("word book loaded", "book", name, "entries", len(entries))

	return entries, nil
}

// Cached returns the name of the cached book, if any
func (s *Store) Cached() (string, bool) {
	return s.name, s.loaded
}

func (s *Store) Invalidate() {
	s.name = ""
	s.entries = nil
	s.loaded = false
}

// Books lists the names the source offers
func (s *Store) Books(ctx context.Context) ([]string, error) {
	names, err := s.source.WordBooks(ctx)
	if err != nil {
		return nil, &models.FetchError{Op: "list word books", Err: err}
	}
	return names, nil
}
