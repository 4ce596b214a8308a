package study

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/example/wordcards/internal/state"
	"github.com/example/wordcards/pkg/models"
	"github.com/example/wordcards/pkg/utils"
)

var (
	// ErrStaleCard rejects an answer for a card that is no longer current
	ErrStaleCard = errors.New("card is no longer current")
	// ErrNotActive rejects answers while no card is due
	ErrNotActive = errors.New("study session is not active")
	// ErrInvalidOutcome rejects qualities outside 0..2
	ErrInvalidOutcome = errors.New("invalid outcome")
)

// State is the lifecycle phase of a session
type State int

const (
	StateLoading State = iota
	StateActive
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateExhausted:
		return "exhausted"
	}
	return "loading"
}

type Books interface {
	Load(ctx context.Context, name string) ([]models.Entry, error)
}

type Progress interface {
	Get(ctx context.Context, book string) int
	Advance(ctx context.Context, book string) (int, error)
}

type Favorites interface {
	Refresh(ctx context.Context)
}

type Recorder interface {
	Record(ctx context.Context, outcome models.Outcome, word string, progress int) error
}

// Reviewer receives every answer for entries that have a server id
type Reviewer interface {
	Review(ctx context.Context, id int64, outcome models.Outcome) error
}

// Deps are the collaborators of a session. Reviewer, Rand and Now are optional.
type Deps struct {
	Books     Books
	Progress  Progress
	Favorites Favorites
	Stats     Recorder
	State     *state.Store
	Reviewer  Reviewer
	Rand      *rand.Rand
	Now       func() time.Time
}

// Session turns a word-book into a queue of cards for one study sitting
// and walks it answer by answer. It is not safe for concurrent use; all
// calls must come from the owner's control loop.
type Session struct {
	id   string
	deps Deps
	log  *zap.SugaredLogger

	book       string
	dailyLimit int
	queue      []models.Card
	index      int
	showBack   bool
	state      State
	doneToday  bool
	// sitting changes every time the queue is rebuilt
	sitting int
}

func New(deps Deps) *Session {
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	id := uuid.NewString()
	return &Session{
		id:      id,
		deps:    deps,
		log:     zap.S().With("session", id),
		state:   StateLoading,
		sitting: deps.Rand.Intn(1 << 16),
	}
}

// Begin starts a sitting on book with at most dailyLimit new cards.
// A book that cannot be fetched is studied as an empty book; if the book
// was already finished today the session is exhausted right away.
func (s *Session) Begin(ctx context.Context, book string, dailyLimit int) error {
	if dailyLimit <= 0 {
		return fmt.Errorf("begin session (limit: %d): %w", dailyLimit, state.ErrInvalidSetting)
	}
	s.reset(book, dailyLimit)

	s.deps.Favorites.Refresh(ctx)
	entries := s.loadBook(ctx)

	if _, err := s.Rollover(ctx); err != nil {
		s.log.Warnw("roll over study day", "book", book, "error", err)
	}
	if s.isDone(ctx) {
		s.doneToday = true
		s.state = StateExhausted
		s.log.Infow("book already finished today", "book", book)
		return nil
	}

	p := s.deps.Progress.Get(ctx, book)
	return s.build(ctx, entries, p, dailyLimit)
}

// Answer applies the outcome to the card at index, which must be the
// current card.
func (s *Session) Answer(ctx context.Context, index int, outcome models.Outcome) error {
	if s.state != StateActive {
		return ErrNotActive
	}
	if index != s.index {
		return ErrStaleCard
	}
	if outcome < models.Unknown || outcome > models.Known {
		return fmt.Errorf("answer card (outcome: %d): %w", int(outcome), ErrInvalidOutcome)
	}

	card := s.queue[s.index]
	progress := s.deps.Progress.Get(ctx, s.book)

	switch outcome {
	case models.Unknown:
		s.queue = append(s.queue, card)
	case models.Fuzzy:
		s.queue = slices.Insert(s.queue, s.index+1, models.Card{Entry: card.Entry, Mode: models.ModeReversed})
	case models.Known:
		p, err := s.deps.Progress.Advance(ctx, s.book)
		if err != nil {
			return fmt.Errorf("answer card (word: %s): %w", card.Entry.Word, err)
		}
		progress = p
	}

	if err := s.deps.Stats.Record(ctx, outcome, card.Entry.Word, progress); err != nil {
		s.log.Warnw("record outcome", "word", card.Entry.Word, "outcome", outcome, "error", err)
	}
	s.review(ctx, card.Entry, outcome)

	s.showBack = false
	s.index++
	if s.index >= len(s.queue) {
		s.exhaust(ctx)
	}
	return nil
}

// Extend continues a sitting with n more entries starting at the current
// progress. The daily limit grows by n and the done flag is cleared.
// Cards still pending in the old queue are dropped.
func (s *Session) Extend(ctx context.Context, n int) error {
	if s.book == "" {
		return ErrNotActive
	}
	if n <= 0 {
		return fmt.Errorf("extend session (n: %d): %w", n, state.ErrInvalidSetting)
	}

	s.dailyLimit += n
	if err := s.deps.State.SetDailyCount(ctx, s.dailyLimit); err != nil {
		return fmt.Errorf("extend session: %w", err)
	}

	entries := s.loadBook(ctx)
	p := s.deps.Progress.Get(ctx, s.book)

	s.queue = nil
	s.index = 0
	s.showBack = false
	return s.build(ctx, entries, p, n)
}

// SwitchBook saves name as the chosen book and begins a new sitting on it.
// Progress and the done flag of the previous book are left untouched.
func (s *Session) SwitchBook(ctx context.Context, name string) error {
	if err := s.deps.State.SetWordBook(ctx, name); err != nil {
		return fmt.Errorf("switch book: %w", err)
	}
	limit := s.dailyLimit
	if limit <= 0 {
		limit = s.deps.State.DailyCount(ctx)
	}
	return s.Begin(ctx, name, limit)
}

// Rollover clears a done flag left from an earlier day and reports
// whether it did
func (s *Session) Rollover(ctx context.Context) (bool, error) {
	if s.book == "" || !s.isDone(ctx) {
		return false, nil
	}
	day := s.deps.State.GetString(ctx, state.StudyDayKey(s.book), "")
	if day == utils.DayKey(s.deps.Now()) {
		return false, nil
	}

	if err := s.clearDone(ctx); err != nil {
		return false, err
	}
	s.doneToday = false
	s.log.Infow("study day rolled over", "book", s.book, "finished_on", day)
	return true, nil
}

// Flip toggles between the front and the back of the current card
func (s *Session) Flip() {
	if s.state == StateActive {
		s.showBack = !s.showBack
	}
}

// CheckCard reports whether index in sitting still names the current card.
// Cards shown before the queue was rebuilt are stale even when their index
// matches.
func (s *Session) CheckCard(sitting, index int) error {
	if s.state != StateActive {
		return ErrNotActive
	}
	if sitting != s.sitting || index != s.index {
		return ErrStaleCard
	}
	return nil
}

// Current returns the card due now and its index
func (s *Session) Current() (models.Card, int, bool) {
	if s.state != StateActive {
		return models.Card{}, s.index, false
	}
	return s.queue[s.index], s.index, true
}

func (s *Session) ShowBack() bool  { return s.showBack }
func (s *Session) State() State    { return s.state }
func (s *Session) Index() int      { return s.index }
func (s *Session) Book() string    { return s.book }
func (s *Session) DailyLimit() int { return s.dailyLimit }
func (s *Session) ID() string      { return s.id }
func (s *Session) Sitting() int    { return s.sitting }
func (s *Session) Remaining() int  { return len(s.queue) - s.index }
func (s *Session) Queue() []models.Card {
	return slices.Clone(s.queue)
}

// NothingDue reports an exhausted session that never had a card to show
func (s *Session) NothingDue() bool {
	return s.state == StateExhausted && s.index == 0 && !s.doneToday
}

// DoneToday reports that the book was finished earlier today
func (s *Session) DoneToday() bool {
	return s.state == StateExhausted && (s.index > 0 || s.doneToday)
}

func (s *Session) reset(book string, dailyLimit int) {
	s.sitting++
	s.state = StateLoading
	s.book = book
	s.dailyLimit = dailyLimit
	s.queue = nil
	s.index = 0
	s.showBack = false
	s.doneToday = false
}

func (s *Session) loadBook(ctx context.Context) []models.Entry {
	entries, err := s.deps.Books.Load(ctx, s.book)
	if err != nil {
		s.log.Warnw("load word book, studying an empty book", "book", s.book, "error", err)
		return nil
	}
	return entries
}

// build fills the queue with up to n entries of book[p:], shuffled when
// the account asked for it
func (s *Session) build(ctx context.Context, entries []models.Entry, p, n int) error {
	pending := entries[min(p, len(entries)):]
	if s.deps.State.GetBool(ctx, state.KeyShuffleStudy, false) {
		pending = slices.Clone(pending)
		s.deps.Rand.Shuffle(len(pending), func(i, j int) {
			pending[i], pending[j] = pending[j], pending[i]
		})
	}
	pending = pending[:min(n, len(pending))]

	s.queue = lo.Map(pending, func(e models.Entry, _ int) models.Card {
		return models.Card{Entry: e, Mode: models.ModeNormal}
	})
	s.sitting++
	s.index = 0
	s.showBack = false
	s.doneToday = false

	if err := s.clearDone(ctx); err != nil {
		return fmt.Errorf("begin session (book: %s): %w", s.book, err)
	}

	if len(s.queue) == 0 {
		s.state = StateExhausted
		s.log.Infow("nothing due", "book", s.book, "progress", p)
		return nil
	}
	s.state = StateActive
	s.log.Infow("session started", "book", s.book, "progress", p, "cards", len(s.queue))
	return nil
}

func (s *Session) exhaust(ctx context.Context) {
	s.state = StateExhausted
	if s.index == 0 {
		return
	}

	err := s.deps.State.SetMany(ctx, map[string]string{
		state.StudyDoneKey(s.book): "true",
		state.StudyDayKey(s.book):  utils.DayKey(s.deps.Now()),
	})
	if err != nil {
		s.log.Warnw("save done flag", "book", s.book, "error", err)
	}
	s.log.Infow("session finished", "book", s.book, "answers", s.index)
}

func (s *Session) isDone(ctx context.Context) bool {
	return s.deps.State.GetBool(ctx, state.StudyDoneKey(s.book), false)
}

func (s *Session) clearDone(ctx context.Context) error {
	if err := s.deps.State.Delete(ctx, state.StudyDoneKey(s.book)); err != nil {
		return err
	}
	return s.deps.State.Delete(ctx, state.StudyDayKey(s.book))
}

func (s *Session) review(ctx context.Context, e models.Entry, outcome models.Outcome) {
	if s.deps.Reviewer == nil {
		return
	}
	id, ok := e.FavoriteID()
	if !ok {
		return
	}
	if err := s.deps.Reviewer.Review(ctx, id, outcome); err != nil {
		s.log.Warnw("post review", "word", e.Word, "error", err)
	}
}
