package domain

import "time"

const (
	// QuestionsPerBatch is the fixed number of prompts in every batch and session.
	QuestionsPerBatch = 5
	// HistoryLimit caps the number of completed sessions kept per address.
	HistoryLimit = 50
	// MaxScore is the upper bound of a quiz score (percentage).
	MaxScore = 100
)

// Difficulty grades a question or batch.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is one translation prompt as published in a batch file.
type Question struct {
	ID                 int        `json:"id"`
	SourceText         string     `json:"sourceText"`
	CorrectTranslation string     `json:"correctTranslation"`
	TargetLanguage     string     `json:"targetLanguage"`
	Difficulty         Difficulty `json:"difficulty"`
}

// Batch is a fixed-size set of questions addressed by a numeric ID.
type Batch struct {
	BatchID      int        `json:"batchId"`
	Questions    []Question `json:"questions"`
	CreatedAt    time.Time  `json:"createdAt"`
	Difficulty   Difficulty `json:"difficulty"`
	LanguagePair string     `json:"languagePair"`
}

// Valid reports whether the batch honours the fixed batch size.
func (b Batch) Valid() bool {
	return len(b.Questions) == QuestionsPerBatch
}

// SessionStatus is the lifecycle state of a quiz session.
type SessionStatus string

const (
	StatusInProgress SessionStatus = "in-progress"
	StatusCompleted  SessionStatus = "completed"
	StatusAbandoned  SessionStatus = "abandoned"
)

// QuizQuestion is the session-bound copy of a prompt and the user's answer to it.
type QuizQuestion struct {
	ID             string `json:"id"`
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"`
	UserAnswer     string `json:"userAnswer"`
	TimeSpent      int64  `json:"timeSpent"` // milliseconds
	IsCorrect      *bool  `json:"isCorrect,omitempty"`
}

// QuizSession is one attempt at a batch.
type QuizSession struct {
	ID                   string         `json:"id"`
	LanguagePair         string         `json:"languagePair"`
	BatchID              int            `json:"batchId"`
	StartTime            time.Time      `json:"startTime"`
	EndTime              *time.Time     `json:"endTime,omitempty"`
	Questions            []QuizQuestion `json:"questions"`
	CurrentQuestionIndex int            `json:"currentQuestionIndex"`
	Score                *int           `json:"score,omitempty"`
	Status               SessionStatus  `json:"status"`
}

// Clone returns a deep copy so callers never share mutable state with the session owner.
func (s *QuizSession) Clone() *QuizSession {
	if s == nil {
		return nil
	}
	out := *s
	out.Questions = make([]QuizQuestion, len(s.Questions))
	for i, q := range s.Questions {
		if q.IsCorrect != nil {
			v := *q.IsCorrect
			q.IsCorrect = &v
		}
		out.Questions[i] = q
	}
	if s.EndTime != nil {
		t := *s.EndTime
		out.EndTime = &t
	}
	if s.Score != nil {
		v := *s.Score
		out.Score = &v
	}
	return &out
}

// Answers returns the user answers in question order.
func (s *QuizSession) Answers() []string {
	answers := make([]string, len(s.Questions))
	for i, q := range s.Questions {
		answers[i] = q.UserAnswer
	}
	return answers
}

// TotalTimeSpent sums the per-question time in milliseconds.
func (s *QuizSession) TotalTimeSpent() int64 {
	var total int64
	for _, q := range s.Questions {
		total += q.TimeSpent
	}
	return total
}

// PairStats aggregates attempts for one language pair.
type PairStats struct {
	Attempts     int     `json:"attempts"`
	AverageScore float64 `json:"averageScore"`
	BestScore    int     `json:"bestScore"`
}

// UserStats is the cumulative progress of one wallet address.
type UserStats struct {
	TotalQuizzes      int                  `json:"totalQuizzes"`
	CompletedQuizzes  int                  `json:"completedQuizzes"`
	AverageScore      float64              `json:"averageScore"`
	TotalTimeSpent    int64                `json:"totalTimeSpent"`
	LanguagePairStats map[string]PairStats `json:"languagePairStats"`
	StreakDays        int                  `json:"streakDays"`
	LastQuizDate      *time.Time           `json:"lastQuizDate,omitempty"`
}

// NewUserStats returns empty stats with an initialized pair map.
func NewUserStats() UserStats {
	return UserStats{LanguagePairStats: make(map[string]PairStats)}
}

// Clone deep-copies the stats.
func (u UserStats) Clone() UserStats {
	out := u
	out.LanguagePairStats = make(map[string]PairStats, len(u.LanguagePairStats))
	for k, v := range u.LanguagePairStats {
		out.LanguagePairStats[k] = v
	}
	if u.LastQuizDate != nil {
		t := *u.LastQuizDate
		out.LastQuizDate = &t
	}
	return out
}

// Submission is an answer set recorded on the ledger.
type Submission struct {
	ID        uint64                    `json:"id"`
	User      string                    `json:"user"`
	BatchID   int                       `json:"batchId"`
	Score     int                       `json:"score"`
	Timestamp time.Time                 `json:"timestamp"`
	Answers   [QuestionsPerBatch]string `json:"answers"`
}

// Snapshot is a consistent view of one address's quiz state.
type Snapshot struct {
	Address string       `json:"address"`
	Session *QuizSession `json:"session"`
	Stats   UserStats    `json:"stats"`
}
