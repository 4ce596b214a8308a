package models

import "strings"

// Translation is one meaning of a word, optionally tagged with a part of speech
type Translation struct {
	Type        string `json:"type,omitempty"`
	Translation string `json:"translation"`
}

// Phrase is a usage example together with its translation
type Phrase struct {
	Phrase      string `json:"phrase"`
	Translation string `json:"translation"`
}

// Entry represents a word-book entry.
// ID is nil for ad-hoc entries built from a machine translation.
type Entry struct {
	ID           *int64        `json:"id,omitempty"`
	Word         string        `json:"word"`
	Translations []Translation `json:"translations"`
	Phrases      []Phrase      `json:"phrases"`
}

// FavoriteID returns the server id of the entry, if it has one
func (e Entry) FavoriteID() (int64, bool) {
	if e.ID == nil {
		return 0, false
	}
	return *e.ID, true
}

// Key is the case-insensitive identity of the entry's word
func (e Entry) Key() string {
	return WordKey(e.Word)
}

// TranslationText joins the translations as "type. translation; ..."
func (e Entry) TranslationText() string {
	parts := make([]string, 0, len(e.Translations))
	for _, t := range e.Translations {
		if t.Type != "" {
			parts = append(parts, t.Type+". "+t.Translation)
			continue
		}
		parts = append(parts, t.Translation)
	}
	return strings.Join(parts, "; ")
}

// WordKey normalizes a word for favorites and stats lookups
func WordKey(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// Int64 returns a pointer to v
func Int64(v int64) *int64 {
	return &v
}
