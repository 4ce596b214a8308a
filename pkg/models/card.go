package models

import "strings"

// CardMode selects which side of an entry is shown first
type CardMode int

const (
	// ModeNormal shows the word and asks for the translation
	ModeNormal CardMode = iota
	// ModeReversed shows the translation and asks for the word
	ModeReversed
)

func (m CardMode) String() string {
	if m == ModeReversed {
		return "reversed"
	}
	return "normal"
}

// Card is one presentation of an entry in a study queue
type Card struct {
	Entry Entry
	Mode  CardMode
}

// Front returns the text shown before the card is flipped
func (c Card) Front() string {
	if c.Mode == ModeReversed {
		return c.Entry.TranslationText()
	}
	return c.Entry.Word
}

// Back returns the text revealed after flipping
func (c Card) Back() string {
	if c.Mode == ModeReversed {
		return c.Entry.Word
	}

	var b strings.Builder
	b.WriteString(c.Entry.TranslationText())
	for _, p := range c.Entry.Phrases {
		b.WriteString("\n• ")
		b.WriteString(p.Phrase)
		if p.Translation != "" {
			b.WriteString(" - ")
			b.WriteString(p.Translation)
		}
	}
	return b.String()
}
