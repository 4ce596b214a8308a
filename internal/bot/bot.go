package bot

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/example/wordcards/internal/ai"
	"github.com/example/wordcards/internal/favorites"
	"github.com/example/wordcards/internal/state"
	"github.com/example/wordcards/internal/study"
	"github.com/example/wordcards/internal/wordbook"
	"github.com/example/wordcards/pkg/models"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// Sender is the part of the Telegram API the handlers talk to
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Service is the vocabulary backend
type Service interface {
	favorites.Remote
	ai.Backend
	study.Reviewer
	Overview(ctx context.Context, limit int) (models.Overview, error)
	ExportStats(ctx context.Context) (string, error)
}

// Deps are the collaborators of the bot
type Deps struct {
	Service Service
	Books   wordbook.Source
	// Accounts returns the key-value backend of one account scope
	Accounts    func(account string) state.Backend
	DefaultBook string
	DailyCount  int
	Now         func() time.Time
	Rand        *rand.Rand
}

// Bot represents the Telegram bot application
type Bot struct {
	sender    Sender
	deps      Deps
	lookup    *ai.Lookup
	favorites *favorites.Mirror
	chats     map[int64]*chat
	jobs      chan func(ctx context.Context)
}

// New creates a bot that answers through sender
func New(sender Sender, deps Deps) *Bot {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.DailyCount <= 0 {
		deps.DailyCount = state.DefaultDailyCount
	}

	return &Bot{
		sender:    sender,
		deps:      deps,
		lookup:    ai.NewLookup(deps.Service, ""),
		favorites: favorites.NewMirror(deps.Service),
		chats:     make(map[int64]*chat),
		jobs:      make(chan func(ctx context.Context), 16),
	}
}

// Connect authorizes against the Telegram API
func Connect(token string) (*tgbotapi.BotAPI, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	zap.S().Infow("authorized on account", "username", botAPI.Self.UserName)
	return botAPI, nil
}

// Updates opens the long-polling update channel
func Updates(botAPI *tgbotapi.BotAPI) tgbotapi.UpdatesChannel {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	return botAPI.GetUpdatesChan(updateConfig)
}

// Run handles updates and dispatched jobs one at a time until ctx is
// cancelled or the update channel is closed
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	b.favorites.Refresh(ctx)
	zap.S().Info("bot started")

	for {
		select {
		case <-ctx.Done():
			zap.S().Info("bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				zap.S().Info("update channel closed")
				return
			}
			b.handleUpdate(ctx, update)
		case job := <-b.jobs:
			job(ctx)
		}
	}
}

// Dispatch queues job on the update loop. Jobs are dropped while the
// queue is full.
func (b *Bot) Dispatch(job func(ctx context.Context)) {
	select {
	case b.jobs <- job:
	default:
		zap.S().Warn("job queue full, dropping job")
	}
}

// Rollover clears yesterday's done flags of the open sessions and tells
// those chats that new cards are due
func (b *Bot) Rollover(ctx context.Context) {
	for id, c := range b.chats {
		rolled, err := c.session.Rollover(ctx)
		if err != nil {
			zap.S().Warnw("roll over study day", "chat", id, "error", err)
			continue
		}
		if rolled {
			b.send(tgbotapi.NewMessage(id, fmt.Sprintf("🌅 A new day. Cards from %q are waiting: /study", c.session.Book())))
		}
	}
}

// RefreshFavorites reloads the favorites mirror
func (b *Bot) RefreshFavorites(ctx context.Context) {
	b.favorites.Refresh(ctx)
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.CallbackQuery != nil:
		err = b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Chat != nil:
		if update.Message.IsCommand() {
			err = b.handleCommand(ctx, update.Message)
		} else if update.Message.Text != "" {
			err = b.handleSearch(ctx, update.Message.Chat.ID, update.Message.Text)
		}
	default:
		return
	}

	if err != nil {
		zap.S().Errorw("handle update", "update_id", update.UpdateID, "error", err)
		if id := chatID(update); id != 0 {
			b.send(tgbotapi.NewMessage(id, "❌ Something went wrong. Please try again later."))
		}
	}
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.sender.Send(c); err != nil {
		zap.S().Warnw("send message", "error", err)
	}
}

func chatID(update tgbotapi.Update) int64 {
	if update.Message != nil && update.Message.Chat != nil {
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil {
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}
