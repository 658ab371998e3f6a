package app

import (
	"time"

	"verbiverse-quiz/internal/domain"
)

const day = 24 * time.Hour

// ApplyCompletion folds a completed session into prior stats and returns the updated copy.
// The session must carry a score.
func ApplyCompletion(prev domain.UserStats, session *domain.QuizSession, now time.Time) domain.UserStats {
	next := prev.Clone()
	score := 0
	if session.Score != nil {
		score = *session.Score
	}

	next.TotalQuizzes = prev.TotalQuizzes + 1
	next.CompletedQuizzes = prev.CompletedQuizzes + 1
	next.AverageScore = runningMean(prev.AverageScore, prev.CompletedQuizzes, score)
	next.TotalTimeSpent = prev.TotalTimeSpent + session.TotalTimeSpent()

	pair := next.LanguagePairStats[session.LanguagePair]
	pair.AverageScore = runningMean(pair.AverageScore, pair.Attempts, score)
	pair.Attempts++
	if score > pair.BestScore {
		pair.BestScore = score
	}
	next.LanguagePairStats[session.LanguagePair] = pair

	next.StreakDays = nextStreak(prev.StreakDays, prev.LastQuizDate, now)
	last := now
	next.LastQuizDate = &last
	return next
}

// ApplyAbandon counts an abandoned attempt; nothing else changes.
func ApplyAbandon(prev domain.UserStats) domain.UserStats {
	next := prev.Clone()
	next.TotalQuizzes++
	return next
}

func runningMean(avg float64, n int, value int) float64 {
	return (avg*float64(n) + float64(value)) / float64(n+1)
}

// nextStreak measures the gap in whole elapsed days, not calendar days: two quizzes
// 23h59m apart on different dates are a 0-day gap and leave the streak unchanged.
func nextStreak(streak int, last *time.Time, now time.Time) int {
	if last == nil {
		return 1
	}
	gap := int(now.Sub(*last) / day)
	switch {
	case gap == 1:
		return streak + 1
	case gap > 1:
		return 1
	default:
		return streak
	}
}
