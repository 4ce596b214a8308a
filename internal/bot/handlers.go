package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/wordcards/internal/state"
)

const overviewLimit = 10

// handleCommand handles bot commands
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	args := strings.TrimSpace(message.CommandArguments())

	var err error
	switch message.Command() {
	case "start":
		err = b.handleStart(ctx, chatID)
	case "help":
		b.send(tgbotapi.NewMessage(chatID, helpText))
	case "study":
		err = b.study(ctx, b.chatFor(ctx, chatID))
	case "books":
		err = b.listBooks(ctx, b.chatFor(ctx, chatID))
	case "book":
		err = b.handleBook(ctx, chatID, args)
	case "more":
		err = b.handleMore(ctx, chatID, args)
	case "search":
		err = b.handleSearch(ctx, chatID, args)
	case "translate":
		err = b.handleTranslate(ctx, chatID, args)
	case "favorites":
		err = b.listFavorites(ctx, chatID)
	case "stats":
		err = b.showStats(ctx, b.chatFor(ctx, chatID))
	case "overview":
		err = b.handleOverview(ctx, chatID)
	case "export":
		err = b.handleExport(ctx, chatID)
	case "settings":
		err = b.handleSettings(ctx, chatID, args)
	default:
		b.send(tgbotapi.NewMessage(chatID, "Unknown command. Use /help to see what I can do."))
	}
	return err
}

const helpText = `📚 Word cards

/study - study today's cards
/books - choose a word book
/book <name> - switch to a word book
/more <n> - study n more cards today
/search <word> - look a word up
/translate [lang] <text> - translate text
/favorites - list favorite words
/stats - your statistics
/overview - review summary from the server
/export - download statistics as CSV
/settings - show or change settings`

func (b *Bot) handleStart(ctx context.Context, chatID int64) error {
	c := b.chatFor(ctx, chatID)
	settings := c.store.Settings(ctx, b.deps.DefaultBook)

	text := fmt.Sprintf("👋 Welcome! You are studying %q, %d new cards a day.\n\n%s",
		settings.WordBook, settings.DailyCount, helpText)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard(MainMenuButtons())
	b.send(msg)
	return nil
}

func (b *Bot) study(ctx context.Context, c *chat) error {
	if err := c.begin(ctx, b.deps.DefaultBook); err != nil {
		return err
	}
	return b.showCard(ctx, c, 0)
}

// showCard shows the session's current card, or what to do next when the
// session has none. A non-zero messageID edits that message in place.
func (b *Bot) showCard(_ context.Context, c *chat, messageID int) error {
	s := c.session

	card, index, ok := s.Current()
	if !ok {
		text, keyboard := renderExhausted(s)
		if messageID != 0 {
			edit := tgbotapi.NewEditMessageText(c.id, messageID, text)
			edit.ReplyMarkup = keyboard
			b.send(edit)
			return nil
		}
		msg := tgbotapi.NewMessage(c.id, text)
		if keyboard != nil {
			msg.ReplyMarkup = *keyboard
		}
		b.send(msg)
		return nil
	}

	text, keyboard := renderCard(card, s.Sitting(), index, s.ShowBack(), b.favorites.Has(card.Entry.Word), s.Remaining())
	if messageID != 0 {
		b.send(tgbotapi.NewEditMessageTextAndMarkup(c.id, messageID, text, keyboard))
		return nil
	}
	msg := tgbotapi.NewMessage(c.id, text)
	msg.ReplyMarkup = keyboard
	b.send(msg)
	return nil
}

func (b *Bot) extend(ctx context.Context, c *chat, n int) error {
	if c.session.Book() == "" {
		if err := c.begin(ctx, b.deps.DefaultBook); err != nil {
			return err
		}
	}
	if err := c.session.Extend(ctx, n); err != nil {
		return err
	}
	return b.showCard(ctx, c, 0)
}

func (b *Bot) switchBook(ctx context.Context, c *chat, name string) error {
	if err := c.session.SwitchBook(ctx, name); err != nil {
		return err
	}
	b.send(tgbotapi.NewMessage(c.id, fmt.Sprintf("📖 Now studying %q", name)))
	return b.showCard(ctx, c, 0)
}

func (b *Bot) listBooks(ctx context.Context, c *chat) error {
	books, err := c.books.Books(ctx)
	if err != nil {
		b.send(tgbotapi.NewMessage(c.id, "⚠️ Word books are unavailable right now."))
		return nil
	}

	current := c.store.Settings(ctx, b.deps.DefaultBook).WordBook
	text, keyboard := renderBooks(books, current)
	msg := tgbotapi.NewMessage(c.id, text)
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}
	b.send(msg)
	return nil
}

func (b *Bot) handleBook(ctx context.Context, chatID int64, name string) error {
	if name == "" {
		b.send(tgbotapi.NewMessage(chatID, "Please name a word book: /book <name>"))
		return nil
	}
	return b.switchBook(ctx, b.chatFor(ctx, chatID), name)
}

func (b *Bot) handleMore(ctx context.Context, chatID int64, args string) error {
	n := 5
	if args != "" {
		v, err := strconv.Atoi(args)
		if err != nil || v <= 0 {
			b.send(tgbotapi.NewMessage(chatID, "Please give a positive number: /more <n>"))
			return nil
		}
		n = v
	}
	return b.extend(ctx, b.chatFor(ctx, chatID), n)
}

func (b *Bot) handleSearch(ctx context.Context, chatID int64, q string) error {
	q = strings.TrimSpace(q)
	if q == "" {
		b.send(tgbotapi.NewMessage(chatID, "Please give a word: /search <word>"))
		return nil
	}

	entries, err := b.lookup.Search(ctx, q)
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, "⚠️ Search is unavailable right now."))
		return nil
	}

	text, keyboard := renderEntries(entries, b.favorites.Has)
	msg := tgbotapi.NewMessage(chatID, text)
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}
	b.send(msg)
	return nil
}

func (b *Bot) handleTranslate(ctx context.Context, chatID int64, args string) error {
	lang, text := splitTranslateArgs(args)
	if text == "" {
		b.send(tgbotapi.NewMessage(chatID, "Please give some text: /translate [lang] <text>"))
		return nil
	}

	result, err := b.lookup.Translate(ctx, text, lang)
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, "⚠️ Translation is unavailable right now."))
		return nil
	}
	b.send(tgbotapi.NewMessage(chatID, "🌐 "+result))
	return nil
}

// splitTranslateArgs reads "<lang> <text>"; a single word is text in the
// default language
func splitTranslateArgs(args string) (string, string) {
	fields := strings.Fields(args)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return "", fields[0]
	}
	return fields[0], strings.Join(fields[1:], " ")
}

func (b *Bot) listFavorites(ctx context.Context, chatID int64) error {
	b.favorites.Refresh(ctx)
	b.send(tgbotapi.NewMessage(chatID, renderFavorites(b.favorites.List())))
	return nil
}

func (b *Bot) showStats(ctx context.Context, c *chat) error {
	b.send(tgbotapi.NewMessage(c.id, renderStats(c.recorder.Snapshot(ctx))))
	return nil
}

func (b *Bot) handleOverview(ctx context.Context, chatID int64) error {
	overview, err := b.deps.Service.Overview(ctx, overviewLimit)
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, "⚠️ The overview is unavailable right now."))
		return nil
	}
	b.send(tgbotapi.NewMessage(chatID, renderOverview(overview)))
	return nil
}

func (b *Bot) handleExport(ctx context.Context, chatID int64) error {
	csv, err := b.deps.Service.ExportStats(ctx)
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, "⚠️ The export is unavailable right now."))
		return nil
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "stats-" + b.deps.Now().Format("20060102") + ".csv",
		Bytes: []byte(csv),
	})
	b.send(doc)
	return nil
}

func (b *Bot) handleSettings(ctx context.Context, chatID int64, args string) error {
	c := b.chatFor(ctx, chatID)
	fields := strings.Fields(strings.ToLower(args))

	if len(fields) == 2 {
		var err error
		switch fields[0] {
		case "daily":
			// a non-number parses as 0 and is rejected
			n, _ := strconv.Atoi(fields[1])
			err = c.store.SetDailyCount(ctx, n)
		case "shuffle", "speak":
			on, ok := parseOnOff(fields[1])
			if !ok {
				err = fmt.Errorf("set %s (value: %s): %w", fields[0], fields[1], state.ErrInvalidSetting)
			} else if fields[0] == "shuffle" {
				err = c.store.SetShuffleStudy(ctx, on)
			} else {
				err = c.store.SetSpeakOnLoad(ctx, on)
			}
		default:
			err = state.ErrInvalidSetting
		}

		if errors.Is(err, state.ErrInvalidSetting) {
			b.send(tgbotapi.NewMessage(chatID, "⚠️ Invalid setting. Use /settings daily <n>, /settings shuffle on|off or /settings speak on|off"))
			return nil
		}
		if err != nil {
			return err
		}
	} else if len(fields) != 0 {
		b.send(tgbotapi.NewMessage(chatID, "⚠️ Invalid setting. Use /settings daily <n>, /settings shuffle on|off or /settings speak on|off"))
		return nil
	}

	b.send(tgbotapi.NewMessage(chatID, renderSettings(c.store.Settings(ctx, b.deps.DefaultBook))))
	return nil
}

func parseOnOff(s string) (bool, bool) {
	switch s {
	case "on", "true", "yes":
		return true, true
	case "off", "false", "no":
		return false, true
	}
	return false, false
}
