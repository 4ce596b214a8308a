package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/example/wordcards/internal/study"
	"github.com/example/wordcards/pkg/models"
)

// Telegram limits callback data to 64 bytes
const maxCallbackData = 64

// Constants for callback data
const (
	callbackFlip         = "flip"
	callbackAnswer       = "ans"
	callbackFavorite     = "fav"
	callbackFavoriteWord = "favw"
	callbackMore         = "more"
	callbackBook         = "book"
	callbackStudy        = "study"
	callbackBooks        = "books"
	callbackFavorites    = "favorites"
	callbackStats        = "stats"
	callbackSettings     = "settings"
)

var errBadCallback = errors.New("malformed callback data")

const staleCard = "This card is no longer current"

// callbackData is a parsed inline button payload
type callbackData struct {
	action  string
	sitting int
	index   int
	value   int
	text    string
}

func parseCallback(data string) (callbackData, error) {
	action, rest, _ := strings.Cut(data, ":")
	cb := callbackData{action: action}

	switch action {
	case callbackFlip, callbackFavorite:
		nums, ok := parseInts(rest, 2)
		if !ok {
			return cb, fmt.Errorf("parse callback (data: %s): %w", data, errBadCallback)
		}
		cb.sitting, cb.index = nums[0], nums[1]
	case callbackAnswer:
		nums, ok := parseInts(rest, 3)
		if !ok {
			return cb, fmt.Errorf("parse callback (data: %s): %w", data, errBadCallback)
		}
		cb.sitting, cb.index, cb.value = nums[0], nums[1], nums[2]
	case callbackMore:
		n, err := strconv.Atoi(rest)
		if err != nil || n <= 0 {
			return cb, fmt.Errorf("parse callback (data: %s): %w", data, errBadCallback)
		}
		cb.value = n
	case callbackBook, callbackFavoriteWord:
		if rest == "" {
			return cb, fmt.Errorf("parse callback (data: %s): %w", data, errBadCallback)
		}
		cb.text = rest
	case callbackStudy, callbackBooks, callbackFavorites, callbackStats, callbackSettings:
	default:
		return cb, fmt.Errorf("parse callback (data: %s): %w", data, errBadCallback)
	}
	return cb, nil
}

// parseInts reads exactly n non-negative colon-separated integers
func parseInts(s string, n int) ([]int, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != n {
		return nil, false
	}
	nums := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return nil, false
		}
		nums[i] = v
	}
	return nums, true
}

// handleCallback handles inline button presses
func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback.Message == nil || callback.Message.Chat == nil {
		return nil
	}
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID

	cb, err := parseCallback(callback.Data)
	if err != nil {
		zap.S().Warnw("unknown callback", "chat", chatID, "data", callback.Data)
		b.answerCallback(callback.ID, "⚠️ Unknown action")
		return nil
	}

	c := b.chatFor(ctx, chatID)
	toast := ""

	switch cb.action {
	case callbackFlip:
		if c.session.CheckCard(cb.sitting, cb.index) != nil {
			toast = staleCard
			break
		}
		c.session.Flip()
		err = b.showCard(ctx, c, messageID)
	case callbackAnswer:
		toast, err = b.answerCard(ctx, c, cb, messageID)
	case callbackFavorite:
		toast, err = b.toggleCardFavorite(ctx, c, cb, messageID)
	case callbackFavoriteWord:
		toast, err = b.toggleWordFavorite(ctx, cb.text)
	case callbackMore:
		err = b.extend(ctx, c, cb.value)
	case callbackBook:
		err = b.switchBook(ctx, c, cb.text)
	case callbackStudy:
		err = b.study(ctx, c)
	case callbackBooks:
		err = b.listBooks(ctx, c)
	case callbackFavorites:
		err = b.listFavorites(ctx, chatID)
	case callbackStats:
		err = b.showStats(ctx, c)
	case callbackSettings:
		b.send(tgbotapi.NewMessage(chatID, renderSettings(c.store.Settings(ctx, b.deps.DefaultBook))))
	}

	b.answerCallback(callback.ID, toast)
	return err
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.sender.Request(tgbotapi.NewCallback(id, text)); err != nil {
		zap.S().Debugw("answer callback", "error", err)
	}
}

func (b *Bot) answerCard(ctx context.Context, c *chat, cb callbackData, messageID int) (string, error) {
	outcome, err := models.ParseOutcome(cb.value)
	if err != nil {
		return "⚠️ Unknown answer", nil
	}
	if c.session.CheckCard(cb.sitting, cb.index) != nil {
		return staleCard, nil
	}

	err = c.session.Answer(ctx, cb.index, outcome)
	switch {
	case errors.Is(err, study.ErrStaleCard), errors.Is(err, study.ErrNotActive):
		return staleCard, nil
	case err != nil:
		return "", err
	}
	return "", b.showCard(ctx, c, messageID)
}

func (b *Bot) toggleCardFavorite(ctx context.Context, c *chat, cb callbackData, messageID int) (string, error) {
	if c.session.CheckCard(cb.sitting, cb.index) != nil {
		return staleCard, nil
	}
	card, _, _ := c.session.Current()

	added, err := b.favorites.Toggle(ctx, card.Entry)
	if err != nil {
		return favoriteFailure(err), nil
	}
	if err := b.showCard(ctx, c, messageID); err != nil {
		return "", err
	}
	if added {
		return "★ Added to favorites", nil
	}
	return "☆ Removed from favorites", nil
}

func (b *Bot) toggleWordFavorite(ctx context.Context, word string) (string, error) {
	if b.favorites.Has(word) {
		if err := b.favorites.Remove(ctx, word); err != nil {
			return favoriteFailure(err), nil
		}
		return "☆ Removed from favorites", nil
	}
	if _, err := b.favorites.Add(ctx, word); err != nil {
		return favoriteFailure(err), nil
	}
	return "★ Added to favorites", nil
}

func favoriteFailure(err error) string {
	if errors.Is(err, models.ErrNotFound) {
		return "This word is not in the dictionary"
	}
	zap.S().Warnw("toggle favorite", "error", err)
	return "⚠️ Favorites are unavailable right now"
}
