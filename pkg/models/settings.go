package models

// Settings are the per-account study preferences
type Settings struct {
	DailyCount   int    `json:"daily_count"`
	WordBook     string `json:"word_book"`
	ShuffleStudy bool   `json:"shuffle_study"`
	SpeakOnLoad  bool   `json:"speak_on_load"`
}
