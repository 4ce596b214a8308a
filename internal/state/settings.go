package state

import (
	"context"
	"fmt"

	"github.com/example/wordcards/pkg/models"
)

// Settings reads the study preferences, falling back to defaults;
// defaultBook is used when no word-book was chosen yet.
func (s *Store) Settings(ctx context.Context, defaultBook string) models.Settings {
	return models.Settings{
		DailyCount:   s.DailyCount(ctx),
		WordBook:     s.GetString(ctx, KeyWordBook, defaultBook),
		ShuffleStudy: s.GetBool(ctx, KeyShuffleStudy, false),
		SpeakOnLoad:  s.GetBool(ctx, KeySpeakOnLoad, false),
	}
}

func (s *Store) DailyCount(ctx context.Context) int {
	n := s.GetInt(ctx, KeyDailyCount, DefaultDailyCount)
	if n <= 0 {
		return DefaultDailyCount
	}
	return n
}

func (s *Store) SetDailyCount(ctx context.Context, n int) error {
	if n <= 0 {
		return fmt.Errorf("set daily count (value: %d): %w", n, ErrInvalidSetting)
	}
	return s.SetInt(ctx, KeyDailyCount, n)
}

func (s *Store) SetWordBook(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("set word book: empty name: %w", ErrInvalidSetting)
	}
	return s.SetString(ctx, KeyWordBook, name)
}

func (s *Store) SetShuffleStudy(ctx context.Context, on bool) error {
	return s.SetBool(ctx, KeyShuffleStudy, on)
}

func (s *Store) SetSpeakOnLoad(ctx context.Context, on bool) error {
	return s.SetBool(ctx, KeySpeakOnLoad, on)
}
