package state

// Persisted keys. Book-scoped keys are built with the helpers below.
const (
	KeyDailyCount      = "dailyCount"
	KeyWordBook        = "wordBook"
	KeyStatsCounts     = "statsCounts"
	KeyStatsWords      = "statsWords"
	KeyProgressHistory = "progressHistory"
	KeyShuffleStudy    = "shuffleStudy"
	KeySpeakOnLoad     = "speakOnLoad"

	progressPrefix  = "progress_"
	studyDonePrefix = "study_done_"
	studyDayPrefix  = "study_day_"
)

// DefaultDailyCount is the session size when none was saved
const DefaultDailyCount = 5

func ProgressKey(book string) string {
	return progressPrefix + book
}

func StudyDoneKey(book string) string {
	return studyDonePrefix + book
}

func StudyDayKey(book string) string {
	return studyDayPrefix + book
}
