package models

// Favorite is a word the account marked on the server
type Favorite struct {
	ID           int64         `json:"id"`
	Word         string        `json:"word"`
	Translations []Translation `json:"translations,omitempty"`
	Phrases      []Phrase      `json:"phrases,omitempty"`
	AddedAt      *Timestamp    `json:"added_at,omitempty"`
}
