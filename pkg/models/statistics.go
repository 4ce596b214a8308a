package models

import "time"

// OutcomeCounts holds the number of answers per outcome
type OutcomeCounts struct {
	Unknown int `json:"unknown"`
	Fuzzy   int `json:"fuzzy"`
	Known   int `json:"known"`
}

// OutcomeWords holds the distinct words answered with each outcome, in first-seen order
type OutcomeWords struct {
	Unknown []string `json:"unknown"`
	Fuzzy   []string `json:"fuzzy"`
	Known   []string `json:"known"`
}

// ProgressPoint is the progress value reached on a given day
type ProgressPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Progress  int       `json:"progress"`
}

// StatsSnapshot aggregates study outcomes for an account
type StatsSnapshot struct {
	Counts          OutcomeCounts   `json:"counts"`
	Words           OutcomeWords    `json:"words"`
	ProgressHistory []ProgressPoint `json:"progress_history"`
}

// Overview is the server-side review summary
type Overview struct {
	Reviewed int        `json:"reviewed"`
	Due      int        `json:"due"`
	NextDue  *Timestamp `json:"next_due"`
}
