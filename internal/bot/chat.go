package bot

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/example/wordcards/internal/progress"
	"github.com/example/wordcards/internal/state"
	"github.com/example/wordcards/internal/stats"
	"github.com/example/wordcards/internal/study"
	"github.com/example/wordcards/internal/wordbook"
)

// chat is everything the bot keeps for one Telegram chat
type chat struct {
	id       int64
	store    *state.Store
	tracker  *progress.Tracker
	recorder *stats.Recorder
	books    *wordbook.Store
	session  *study.Session
}

func accountFor(chatID int64) string {
	return "chat:" + strconv.FormatInt(chatID, 10)
}

// chatFor returns the chat with the given id, opening its account on
// first contact
func (b *Bot) chatFor(ctx context.Context, id int64) *chat {
	if c, ok := b.chats[id]; ok {
		return c
	}

	store := state.New(b.deps.Accounts(accountFor(id)))
	if store.GetInt(ctx, state.KeyDailyCount, 0) <= 0 {
		if err := store.SetDailyCount(ctx, b.deps.DailyCount); err != nil {
			zap.S().Warnw("seed daily count", "chat", id, "error", err)
		}
	}

	c := &chat{
		id:       id,
		store:    store,
		tracker:  progress.NewTracker(store),
		recorder: stats.NewRecorder(store),
		books:    wordbook.NewStore(b.deps.Books),
	}
	c.session = study.New(study.Deps{
		Books:     c.books,
		Progress:  c.tracker,
		Favorites: b.favorites,
		Stats:     c.recorder,
		State:     store,
		Reviewer:  b.deps.Service,
		Rand:      b.deps.Rand,
		Now:       b.deps.Now,
	})

	b.chats[id] = c
	zap.S().Infow("chat opened", "chat", id, "session", c.session.ID())
	return c
}

func (c *chat) begin(ctx context.Context, defaultBook string) error {
	settings := c.store.Settings(ctx, defaultBook)
	return c.session.Begin(ctx, settings.WordBook, settings.DailyCount)
}
