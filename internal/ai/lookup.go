package ai

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/wordcards/pkg/models"
)

// DefaultLang is the target language of fallback translations
const DefaultLang = "Chinese"

// Backend is the part of the service API used for lookups
type Backend interface {
	Search(ctx context.Context, q string) ([]models.Entry, error)
	Translate(ctx context.Context, text, lang string) (string, error)
}

// Lookup searches the dictionary and falls back to machine translation
// when the dictionary has nothing for the query
type Lookup struct {
	backend Backend
	lang    string
}

func NewLookup(backend Backend, lang string) *Lookup {
	if lang == "" {
		lang = DefaultLang
	}
	return &Lookup{backend: backend, lang: lang}
}

// Search returns dictionary entries for q. When there are none, the query
// is translated and returned as a single entry without a server id.
func (l *Lookup) Search(ctx context.Context, q string) ([]models.Entry, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}

	entries, err := l.backend.Search(ctx, q)
	if err != nil {
		return nil, &models.FetchError{Op: "search " + q, Err: err}
	}
	if len(entries) > 0 {
		return entries, nil
	}

	translation, err := l.backend.Translate(ctx, q, l.lang)
	if err != nil {
		zap.S().Warnw("translate fallback", "query", q, "error", err)
		return nil, nil
	}
	if translation == "" {
		return nil, nil
	}

	return []models.Entry{{
		Word:         q,
		Translations: []models.Translation{{Translation: translation}},
		Phrases:      []models.Phrase{},
	}}, nil
}

// Translate translates free text; an empty lang uses the lookup's language
func (l *Lookup) Translate(ctx context.Context, text, lang string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	if lang == "" {
		lang = l.lang
	}

	result, err := l.backend.Translate(ctx, text, lang)
	if err != nil {
		return "", fmt.Errorf("translate (lang: %s): %w", lang, err)
	}
	return result, nil
}
