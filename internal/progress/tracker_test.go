package progress

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wordcards/internal/state"
)

func TestTrackerAdvance(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := state.NewMemoryBackend()
	tracker := NewTracker(state.New(backend))

	assert.Equal(t, 0, tracker.Get(ctx, "verbs"))

	for want := 1; want <= 3; want++ {
		got, err := tracker.Advance(ctx, "verbs")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	raw, ok, err := backend.Get(ctx, "progress_verbs")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "3", raw)
	assert.Equal(t, 0, tracker.Get(ctx, "nouns"))
}

func TestTrackerReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tracker := NewTracker(state.New(state.NewMemoryBackend()))

	_, err := tracker.Advance(ctx, "verbs")
	require.NoError(t, err)
	require.NoError(t, tracker.Reset(ctx, "verbs"))

	assert.Equal(t, 0, tracker.Get(ctx, "verbs"))
}

func TestTrackerAdvanceFailureKeepsValue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := state.NewMemoryBackend()
	tracker := NewTracker(state.New(backend))

	_, err := tracker.Advance(ctx, "verbs")
	require.NoError(t, err)

	backend.FailWrites = errors.New("read-only")
	_, err = tracker.Advance(ctx, "verbs")
	assert.Error(t, err)
	assert.Equal(t, 1, tracker.Get(ctx, "verbs"))
}
