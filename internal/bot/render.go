package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/wordcards/internal/study"
	"github.com/example/wordcards/pkg/models"
)

const timeLayout = "2006-01-02 15:04"

// MainMenuButtons is the keyboard shown by /start
func MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{{Text: "📚 Study", CallbackData: callbackStudy}, {Text: "📖 Books", CallbackData: callbackBooks}},
		{{Text: "⭐ Favorites", CallbackData: callbackFavorites}, {Text: "📊 Statistics", CallbackData: callbackStats}},
		{{Text: "⚙️ Settings", CallbackData: callbackSettings}},
	}
}

// renderCard renders the current card and its buttons. The buttons name
// the sitting and the card index so presses on older messages are stale.
func renderCard(card models.Card, sitting, index int, showBack, favorite bool, remaining int) (string, tgbotapi.InlineKeyboardMarkup) {
	var text strings.Builder
	if card.Mode == models.ModeReversed {
		text.WriteString("🔁 ")
	}
	text.WriteString(card.Front())
	if showBack {
		text.WriteString("\n\n")
		text.WriteString(card.Back())
	}
	fmt.Fprintf(&text, "\n\n%d left", remaining)

	flip := "👀 Show answer"
	if showBack {
		flip = "🙈 Hide answer"
	}
	star := "☆ Favorite"
	if favorite {
		star = "★ Favorite"
	}

	keyboard := createKeyboard([][]MenuButton{
		{{Text: flip, CallbackData: fmt.Sprintf("%s:%d:%d", callbackFlip, sitting, index)}},
		{
			{Text: "❌ Don't know", CallbackData: answerData(sitting, index, models.Unknown)},
			{Text: "🤔 Fuzzy", CallbackData: answerData(sitting, index, models.Fuzzy)},
			{Text: "✅ Know", CallbackData: answerData(sitting, index, models.Known)},
		},
		{{Text: star, CallbackData: fmt.Sprintf("%s:%d:%d", callbackFavorite, sitting, index)}},
	})
	return text.String(), keyboard
}

func answerData(sitting, index int, outcome models.Outcome) string {
	return fmt.Sprintf("%s:%d:%d:%d", callbackAnswer, sitting, index, int(outcome))
}

// renderExhausted describes a session with no card to show. The second
// result is false when there is nothing to extend.
func renderExhausted(s *study.Session) (string, *tgbotapi.InlineKeyboardMarkup) {
	if s.NothingDue() {
		return fmt.Sprintf("🎉 Nothing due in %q. Pick another book with /books.", s.Book()), nil
	}

	text := fmt.Sprintf("✅ You are done with %q for today.\nWant more cards?", s.Book())
	keyboard := createKeyboard([][]MenuButton{{
		{Text: "+5", CallbackData: callbackMore + ":5"},
		{Text: "+10", CallbackData: callbackMore + ":10"},
	}})
	return text, &keyboard
}

func renderBooks(books []string, current string) (string, *tgbotapi.InlineKeyboardMarkup) {
	if len(books) == 0 {
		return "No word books available.", nil
	}

	var rows [][]MenuButton
	for _, name := range books {
		label := name
		if name == current {
			label = "✔️ " + name
		}
		data := callbackBook + ":" + name
		if len(data) > maxCallbackData {
			continue
		}
		rows = append(rows, []MenuButton{{Text: label, CallbackData: data}})
	}
	keyboard := createKeyboard(rows)
	return "📖 Choose a word book:", &keyboard
}

func renderEntries(entries []models.Entry, isFavorite func(string) bool) (string, *tgbotapi.InlineKeyboardMarkup) {
	if len(entries) == 0 {
		return "Nothing found.", nil
	}

	var text strings.Builder
	var rows [][]MenuButton
	for i, e := range entries {
		if i > 0 {
			text.WriteString("\n\n")
		}
		marker := ""
		if isFavorite(e.Word) {
			marker = " ★"
		}
		fmt.Fprintf(&text, "%s%s\n%s", e.Word, marker, models.Card{Entry: e}.Back())

		if _, ok := e.FavoriteID(); !ok {
			continue
		}
		data := callbackFavoriteWord + ":" + e.Word
		if len(data) > maxCallbackData {
			continue
		}
		label := "☆ " + e.Word
		if marker != "" {
			label = "★ " + e.Word
		}
		rows = append(rows, []MenuButton{{Text: label, CallbackData: data}})
	}

	if len(rows) == 0 {
		return text.String(), nil
	}
	keyboard := createKeyboard(rows)
	return text.String(), &keyboard
}

func renderFavorites(favs []models.Favorite) string {
	if len(favs) == 0 {
		return "⭐ No favorites yet. Tap ☆ on a card to add one."
	}

	var text strings.Builder
	fmt.Fprintf(&text, "⭐ Favorites (%d):\n", len(favs))
	for _, f := range favs {
		fmt.Fprintf(&text, "\n• %s", f.Word)
		if tr := (models.Entry{Translations: f.Translations}).TranslationText(); tr != "" {
			fmt.Fprintf(&text, " - %s", tr)
		}
	}
	return text.String()
}

func renderStats(snap models.StatsSnapshot) string {
	var text strings.Builder
	text.WriteString("📊 Statistics\n\n")
	fmt.Fprintf(&text, "✅ Known: %d (%d words)\n", snap.Counts.Known, len(snap.Words.Known))
	fmt.Fprintf(&text, "🤔 Fuzzy: %d (%d words)\n", snap.Counts.Fuzzy, len(snap.Words.Fuzzy))
	fmt.Fprintf(&text, "❌ Unknown: %d (%d words)\n", snap.Counts.Unknown, len(snap.Words.Unknown))

	history := snap.ProgressHistory
	if len(history) > 7 {
		history = history[len(history)-7:]
	}
	if len(history) > 0 {
		text.WriteString("\nProgress:\n")
		for _, p := range history {
			fmt.Fprintf(&text, "%s  %d\n", p.Timestamp.Format("2006-01-02"), p.Progress)
		}
	}
	return strings.TrimRight(text.String(), "\n")
}

func renderOverview(o models.Overview) string {
	text := fmt.Sprintf("🗂 Reviewed: %d\n⏰ Due now: %d", o.Reviewed, o.Due)
	if o.NextDue != nil {
		text += "\n📅 Next review: " + o.NextDue.Local().Format(timeLayout)
	}
	return text
}

func renderSettings(s models.Settings) string {
	return fmt.Sprintf("⚙️ Settings\n\n"+
		"Word book: %s\n"+
		"Cards per day: %d\n"+
		"Shuffle: %s\n"+
		"Speak on load: %s\n\n"+
		"Change with /settings daily <n>, /settings shuffle on|off, /settings speak on|off",
		s.WordBook, s.DailyCount, onOff(s.ShuffleStudy), onOff(s.SpeakOnLoad))
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
