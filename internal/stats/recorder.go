package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/example/wordcards/internal/state"
	"github.com/example/wordcards/pkg/models"
	"github.com/example/wordcards/pkg/utils"
)

const schemaVersion = 1

// Recorder aggregates study outcomes and persists them after every answer
type Recorder struct {
	store *state.Store
	now   func() time.Time
}

func NewRecorder(store *state.Store) *Recorder {
	return &Recorder{store: store, now: time.Now}
}

// Snapshot reads the persisted statistics; unreadable parts are empty
func (r *Recorder) Snapshot(ctx context.Context) models.StatsSnapshot {
	var snap models.StatsSnapshot
	if !r.store.GetVersioned(ctx, state.KeyStatsCounts, schemaVersion, &snap.Counts) {
		snap.Counts = models.OutcomeCounts{}
	}
	if !r.store.GetVersioned(ctx, state.KeyStatsWords, schemaVersion, &snap.Words) {
		snap.Words = models.OutcomeWords{}
	}
	if !r.store.GetVersioned(ctx, state.KeyProgressHistory, schemaVersion, &snap.ProgressHistory) {
		snap.ProgressHistory = nil
	}
	return snap
}

// Record adds one answer. Known answers also store progress as today's
// point of the history, replacing an earlier point from the same day.
func (r *Recorder) Record(ctx context.Context, outcome models.Outcome, word string, progress int) error {
	snap := r.Snapshot(ctx)

	switch outcome {
	case models.Unknown:
		snap.Counts.Unknown++
		snap.Words.Unknown = appendUnique(snap.Words.Unknown, word)
	case models.Fuzzy:
		snap.Counts.Fuzzy++
		snap.Words.Fuzzy = appendUnique(snap.Words.Fuzzy, word)
	case models.Known:
		snap.Counts.Known++
		snap.Words.Known = appendUnique(snap.Words.Known, word)
		snap.ProgressHistory = upsertDay(snap.ProgressHistory, models.ProgressPoint{
			Timestamp: r.now(),
			Progress:  progress,
		})
	default:
		return fmt.Errorf("record outcome (outcome: %d): unknown outcome", int(outcome))
	}

	if err := r.save(ctx, snap); err != nil {
		return fmt.Errorf("record outcome (outcome: %s, word: %s): %w", outcome, word, err)
	}
	return nil
}

// Clear resets all statistics
func (r *Recorder) Clear(ctx context.Context) error {
	return r.save(ctx, models.StatsSnapshot{})
}

func (r *Recorder) save(ctx context.Context, snap models.StatsSnapshot) error {
	counts, err := state.EncodeVersioned(schemaVersion, snap.Counts)
	if err != nil {
		return err
	}
	words, err := state.EncodeVersioned(schemaVersion, snap.Words)
	if err != nil {
		return err
	}
	history, err := state.EncodeVersioned(schemaVersion, lo.Ternary(snap.ProgressHistory == nil, []models.ProgressPoint{}, snap.ProgressHistory))
	if err != nil {
		return err
	}

	return r.store.SetMany(ctx, map[string]string{
		state.KeyStatsCounts:     counts,
		state.KeyStatsWords:      words,
		state.KeyProgressHistory: history,
	})
}

func appendUnique(words []string, word string) []string {
	if lo.Contains(words, word) {
		return words
	}
	return append(words, word)
}

// upsertDay replaces the last point when it falls on the same calendar day
func upsertDay(history []models.ProgressPoint, p models.ProgressPoint) []models.ProgressPoint {
	if n := len(history); n > 0 && utils.DatesEqual(p.Timestamp, history[n-1].Timestamp) {
		history[n-1] = p
		return history
	}
	return append(history, p)
}
