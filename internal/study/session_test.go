package study

import (
	"context"
	"errors"
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wordcards/internal/progress"
	"github.com/example/wordcards/internal/state"
	"github.com/example/wordcards/internal/stats"
	"github.com/example/wordcards/internal/wordbook"
	"github.com/example/wordcards/pkg/models"
)

type fakeSource struct {
	books map[string][]models.Entry
	err   error
}

func (f *fakeSource) WordBook(_ context.Context, name string) ([]models.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.books[name], nil
}

func (f *fakeSource) WordBooks(context.Context) ([]string, error) {
	return lo.Keys(f.books), nil
}

type fakeFavorites struct{ refreshes int }

func (f *fakeFavorites) Refresh(context.Context) { f.refreshes++ }

type fakeReviewer struct {
	reviews map[int64][]models.Outcome
	err     error
}

func (f *fakeReviewer) Review(_ context.Context, id int64, outcome models.Outcome) error {
	f.reviews[id] = append(f.reviews[id], outcome)
	return f.err
}

type fixture struct {
	backend   *state.MemoryBackend
	store     *state.Store
	source    *fakeSource
	favorites *fakeFavorites
	reviewer  *fakeReviewer
	tracker   *progress.Tracker
	recorder  *stats.Recorder
	now       time.Time
	session   *Session
}

func entries(words ...string) []models.Entry {
	return lo.Map(words, func(w string, _ int) models.Entry {
		return models.Entry{Word: w, Translations: []models.Translation{{Translation: w + "-tr"}}}
	})
}

func words(cards []models.Card) []string {
	return lo.Map(cards, func(c models.Card, _ int) string {
		if c.Mode == models.ModeReversed {
			return c.Entry.Word + "~"
		}
		return c.Entry.Word
	})
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		backend: state.NewMemoryBackend(),
		source: &fakeSource{books: map[string][]models.Entry{
			"abc":   entries("a", "b", "c", "d", "e"),
			"other": entries("x", "y"),
		}},
		favorites: &fakeFavorites{},
		reviewer:  &fakeReviewer{reviews: map[int64][]models.Outcome{}},
		now:       time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local),
	}
	f.store = state.New(f.backend)
	f.tracker = progress.NewTracker(f.store)
	f.recorder = stats.NewRecorder(f.store)
	f.session = f.newSession(1)
	return f
}

func (f *fixture) newSession(seed int64) *Session {
	return New(Deps{
		Books:     wordbook.NewStore(f.source),
		Progress:  f.tracker,
		Favorites: f.favorites,
		Stats:     f.recorder,
		State:     f.store,
		Reviewer:  f.reviewer,
		Rand:      rand.New(rand.NewSource(seed)),
		Now:       func() time.Time { return f.now },
	})
}

func (f *fixture) answer(t *testing.T, outcome models.Outcome) {
	t.Helper()
	require.NoError(t, f.session.Answer(context.Background(), f.session.Index(), outcome))
}

func (f *fixture) done(book string) bool {
	return f.store.GetBool(context.Background(), state.StudyDoneKey(book), false)
}

func TestBeginTakesDailyLimitFromProgress(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.SetInt(ctx, state.ProgressKey("abc"), 1))

	require.NoError(t, f.session.Begin(ctx, "abc", 3))

	assert.Equal(t, StateActive, f.session.State())
	assert.Equal(t, []string{"b", "c", "d"}, words(f.session.Queue()))
	assert.Equal(t, 1, f.favorites.refreshes)

	card, idx, ok := f.session.Current()
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, "b", card.Front())
	assert.False(t, f.session.ShowBack())
}

func TestScenarioKnownUnknownExtend(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.session.Begin(ctx, "abc", 2))
	assert.Equal(t, []string{"a", "b"}, words(f.session.Queue()))

	f.answer(t, models.Known)
	assert.Equal(t, 1, f.tracker.Get(ctx, "abc"))
	assert.Equal(t, 1, f.session.Index())

	f.answer(t, models.Unknown)
	assert.Equal(t, []string{"a", "b", "b"}, words(f.session.Queue()))
	assert.Equal(t, 2, f.session.Index())
	assert.Equal(t, StateActive, f.session.State())

	require.NoError(t, f.session.Extend(ctx, 2))
	assert.Equal(t, []string{"b", "c"}, words(f.session.Queue()))
	assert.Equal(t, 0, f.session.Index())
	assert.Equal(t, 4, f.session.DailyLimit())
	assert.Equal(t, 4, f.store.DailyCount(ctx))
	assert.False(t, f.done("abc"))

	snap := f.recorder.Snapshot(ctx)
	assert.Equal(t, models.OutcomeCounts{Unknown: 1, Known: 1}, snap.Counts)
	require.Len(t, snap.ProgressHistory, 1)
	assert.Equal(t, 1, snap.ProgressHistory[0].Progress)
}

func TestFuzzyInsertsReversedCardNext(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.session.Begin(ctx, "abc", 3))

	f.answer(t, models.Fuzzy)
	assert.Equal(t, []string{"a", "a~", "b", "c"}, words(f.session.Queue()))

	card, _, ok := f.session.Current()
	require.True(t, ok)
	assert.Equal(t, models.ModeReversed, card.Mode)
	assert.Equal(t, "a-tr", card.Front())
	assert.Equal(t, "a", card.Back())
	assert.Equal(t, 0, f.tracker.Get(ctx, "abc"))

	f.answer(t, models.Unknown)
	assert.Equal(t, []string{"a", "a~", "b", "c", "a~"}, words(f.session.Queue()))
}

func TestEveryAnswerClearsShowBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.session.Begin(ctx, "abc", 2))

	for _, outcome := range []models.Outcome{models.Unknown, models.Fuzzy, models.Known} {
		f.session.Flip()
		require.True(t, f.session.ShowBack())
		f.answer(t, outcome)
		assert.False(t, f.session.ShowBack())
	}
}

func TestExhaustionSetsDoneFlag(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.session.Begin(ctx, "abc", 2))

	f.answer(t, models.Known)
	f.answer(t, models.Known)

	assert.Equal(t, StateExhausted, f.session.State())
	assert.True(t, f.session.DoneToday())
	assert.False(t, f.session.NothingDue())
	assert.True(t, f.done("abc"))
	assert.Equal(t, 2, f.tracker.Get(ctx, "abc"))

	assert.ErrorIs(t, f.session.Answer(ctx, 2, models.Known), ErrNotActive)

	// a new sitting the same day stays exhausted with an empty queue
	next := f.newSession(2)
	require.NoError(t, next.Begin(ctx, "abc", 2))
	assert.Equal(t, StateExhausted, next.State())
	assert.Empty(t, next.Queue())
	assert.True(t, next.DoneToday())
	assert.True(t, f.done("abc"))
}

func TestEmptyBookIsNothingDue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.SetInt(ctx, state.ProgressKey("other"), 2))

	require.NoError(t, f.session.Begin(ctx, "other", 5))

	assert.Equal(t, StateExhausted, f.session.State())
	assert.True(t, f.session.NothingDue())
	assert.False(t, f.session.DoneToday())
	assert.False(t, f.done("other"))
}

func TestFetchFailureDegradesToEmptyBook(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.source.err = errors.New("status 500")

	require.NoError(t, f.session.Begin(ctx, "abc", 5))
	assert.True(t, f.session.NothingDue())
}

func TestExtendAfterExhaustion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.session.Begin(ctx, "abc", 1))
	f.answer(t, models.Known)
	require.True(t, f.done("abc"))

	require.NoError(t, f.session.Extend(ctx, 10))

	assert.Equal(t, StateActive, f.session.State())
	assert.Equal(t, []string{"b", "c", "d", "e"}, words(f.session.Queue()))
	assert.False(t, f.done("abc"))
	assert.Equal(t, 11, f.store.DailyCount(ctx))

	assert.Error(t, f.session.Extend(ctx, 0))
	assert.ErrorIs(t, f.newSession(3).Extend(ctx, 5), ErrNotActive)
}

func TestStaleAnswerIsIgnored(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.session.Begin(ctx, "abc", 3))

	f.answer(t, models.Known)
	assert.ErrorIs(t, f.session.Answer(ctx, 0, models.Known), ErrStaleCard)
	assert.Equal(t, 1, f.tracker.Get(ctx, "abc"))
	assert.Equal(t, 1, f.session.Index())

	assert.ErrorIs(t, f.session.Answer(ctx, 1, models.Outcome(5)), ErrInvalidOutcome)
}

func TestCardsFromEarlierSittingAreStale(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.session.Begin(ctx, "abc", 5))
	first := f.session.Sitting()
	require.NoError(t, f.session.Answer(ctx, 0, models.Known))
	require.NoError(t, f.session.CheckCard(first, 1))

	require.NoError(t, f.session.Begin(ctx, "abc", 5))
	second := f.session.Sitting()
	assert.NotEqual(t, first, second)
	require.NoError(t, f.session.Answer(ctx, 0, models.Unknown))

	// index 1 is current again, but it belongs to the new queue
	assert.ErrorIs(t, f.session.CheckCard(first, 1), ErrStaleCard)
	assert.NoError(t, f.session.CheckCard(second, 1))

	require.NoError(t, f.session.Extend(ctx, 2))
	assert.ErrorIs(t, f.session.CheckCard(second, 0), ErrStaleCard)
	assert.NoError(t, f.session.CheckCard(f.session.Sitting(), 0))
}

func TestBeginRejectsNonPositiveLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	assert.ErrorIs(t, f.session.Begin(ctx, "abc", 0), state.ErrInvalidSetting)
	assert.ErrorIs(t, f.session.Begin(ctx, "abc", -1), state.ErrInvalidSetting)
	assert.Equal(t, StateLoading, f.session.State())
	assert.ErrorIs(t, f.session.CheckCard(f.session.Sitting(), 0), ErrNotActive)
}

func TestProgressFailureLeavesQueueUntouched(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.session.Begin(ctx, "abc", 2))

	f.backend.FailWrites = errors.New("read-only")
	assert.Error(t, f.session.Answer(ctx, 0, models.Known))
	assert.Equal(t, 0, f.session.Index())
	assert.Equal(t, StateActive, f.session.State())
}

func TestShuffleIsPermutationOfPending(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.SetShuffleStudy(ctx, true))
	require.NoError(t, f.store.SetInt(ctx, state.ProgressKey("abc"), 1))

	for seed := int64(0); seed < 20; seed++ {
		s := f.newSession(seed)
		require.NoError(t, s.Begin(ctx, "abc", 10))
		assert.ElementsMatch(t, []string{"b", "c", "d", "e"}, words(s.Queue()))

		s = f.newSession(seed)
		require.NoError(t, s.Begin(ctx, "abc", 2))
		got := words(s.Queue())
		assert.Len(t, got, 2)
		assert.Subset(t, []string{"b", "c", "d", "e"}, got)
		assert.Len(t, lo.Uniq(got), 2)
	}

	shuffled := lo.ContainsBy(lo.Range(20), func(seed int) bool {
		s := f.newSession(int64(seed))
		require.NoError(t, s.Begin(ctx, "abc", 10))
		return !slices.Equal([]string{"b", "c", "d", "e"}, words(s.Queue()))
	})
	assert.True(t, shuffled, "no seed changed the book order")

	// the cached book itself is never reordered
	book, err := wordbook.NewStore(f.source).Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "a", book[0].Word)
	assert.Equal(t, "e", book[4].Word)
}

func TestTerminationWithBoundedRequeues(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.session.Begin(ctx, "abc", 5))

	// each entry is missed once, half-remembered once, then known
	seen := map[string]int{}
	steps := 0
	for f.session.State() == StateActive {
		card, _, _ := f.session.Current()
		var outcome models.Outcome
		switch seen[card.Entry.Word] {
		case 0:
			outcome = models.Unknown
		case 1:
			outcome = models.Fuzzy
		default:
			outcome = models.Known
		}
		seen[card.Entry.Word]++
		f.answer(t, outcome)
		steps++
		require.Less(t, steps, 100)
	}

	assert.Equal(t, 15, steps)
	assert.Equal(t, 5, f.tracker.Get(ctx, "abc"))
	assert.True(t, f.session.DoneToday())
}

func TestSwitchBookKeepsPerBookState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.session.Begin(ctx, "abc", 2))
	f.answer(t, models.Known)

	require.NoError(t, f.session.SwitchBook(ctx, "other"))
	assert.Equal(t, "other", f.session.Book())
	assert.Equal(t, []string{"x", "y"}, words(f.session.Queue()))
	assert.Equal(t, "other", f.store.Settings(ctx, "abc").WordBook)

	f.answer(t, models.Known)
	f.answer(t, models.Known)
	assert.True(t, f.done("other"))
	assert.False(t, f.done("abc"))

	require.NoError(t, f.session.SwitchBook(ctx, "abc"))
	assert.Equal(t, []string{"b", "c"}, words(f.session.Queue()))
	assert.Equal(t, 1, f.tracker.Get(ctx, "abc"))
}

func TestRolloverNextDay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.session.Begin(ctx, "abc", 1))
	f.answer(t, models.Known)

	rolled, err := f.session.Rollover(ctx)
	require.NoError(t, err)
	assert.False(t, rolled)
	assert.True(t, f.done("abc"))

	f.now = f.now.Add(24 * time.Hour)
	rolled, err = f.session.Rollover(ctx)
	require.NoError(t, err)
	assert.True(t, rolled)
	assert.False(t, f.done("abc"))

	require.NoError(t, f.session.Begin(ctx, "abc", 1))
	assert.Equal(t, []string{"b"}, words(f.session.Queue()))
}

func TestBeginRollsOverStaleDoneFlag(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.SetBool(ctx, state.StudyDoneKey("abc"), true))
	require.NoError(t, f.store.SetString(ctx, state.StudyDayKey("abc"), "2024-02-28"))

	require.NoError(t, f.session.Begin(ctx, "abc", 2))
	assert.Equal(t, StateActive, f.session.State())
	assert.False(t, f.done("abc"))
}

func TestReviewsArePostedForServerEntries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.source.books["ids"] = []models.Entry{
		{ID: models.Int64(10), Word: "p"},
		{Word: "q"},
	}
	f.reviewer.err = errors.New("offline")

	require.NoError(t, f.session.Begin(ctx, "ids", 2))
	f.answer(t, models.Fuzzy)
	f.answer(t, models.Known)
	f.answer(t, models.Known)

	assert.Equal(t, map[int64][]models.Outcome{10: {models.Fuzzy, models.Known}}, f.reviewer.reviews)
	assert.Equal(t, 2, f.tracker.Get(ctx, "ids"))
	assert.Equal(t, StateExhausted, f.session.State())
}
