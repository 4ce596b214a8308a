package models

import "fmt"

// Outcome is the learner's self-assessment for a card
type Outcome int

const (
	Unknown Outcome = iota
	Fuzzy
	Known
)

// ParseOutcome converts the 0/1/2 quality scale into an Outcome
func ParseOutcome(q int) (Outcome, error) {
	switch Outcome(q) {
	case Unknown, Fuzzy, Known:
		return Outcome(q), nil
	}
	return 0, fmt.Errorf("parse outcome (quality: %d): out of range", q)
}

// ReviewQuality maps the outcome onto the server's review scale
func (o Outcome) ReviewQuality() int {
	switch o {
	case Fuzzy:
		return 3
	case Known:
		return 5
	default:
		return 1
	}
}

func (o Outcome) String() string {
	switch o {
	case Unknown:
		return "unknown"
	case Fuzzy:
		return "fuzzy"
	case Known:
		return "known"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}
