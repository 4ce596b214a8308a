package utils

import "time"

const dayLayout = "2006-01-02"

func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DatesEqual reports whether both instants fall on the same calendar day in t1's location
func DatesEqual(t1, t2 time.Time) bool {
	return StartOfDay(t1).Equal(StartOfDay(t2.In(t1.Location())))
}

// DayKey formats the calendar day of t, e.g. "2024-03-01"
func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}
