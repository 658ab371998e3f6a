package app

import (
	"strings"

	"verbiverse-quiz/internal/domain"
)

// ViewMode is the top-level screen shown to the user.
type ViewMode string

const (
	ModeHome    ViewMode = "home"
	ModeQuiz    ViewMode = "quiz"
	ModeResults ViewMode = "results"
	ModeHistory ViewMode = "history"
)

// ViewController switches screens on explicit user actions only. It holds no session
// state of its own; Render checks the requested mode against the session it is given.
type ViewController struct {
	mode ViewMode
}

// NewViewController starts on the home screen.
func NewViewController() *ViewController {
	return &ViewController{mode: ModeHome}
}

// Mode is the requested mode, before any fallback.
func (v *ViewController) Mode() ViewMode {
	return v.mode
}

// StartQuiz switches to the quiz screen.
func (v *ViewController) StartQuiz() {
	v.mode = ModeQuiz
}

// Exit leaves the quiz screen for home.
func (v *ViewController) Exit() {
	v.mode = ModeHome
}

// Complete shows the results screen; it is refused unless the session is completed.
func (v *ViewController) Complete(session *domain.QuizSession) bool {
	if session == nil || session.Status != domain.StatusCompleted {
		return false
	}
	v.mode = ModeResults
	return true
}

// ViewHistory switches to the history screen.
func (v *ViewController) ViewHistory() {
	v.mode = ModeHistory
}

// GoHome returns to the home screen from anywhere.
func (v *ViewController) GoHome() {
	v.mode = ModeHome
}

// Render resolves the screen to draw. A quiz screen without a session or questions and a
// results screen without a completed session both fall back to home.
func (v *ViewController) Render(session *domain.QuizSession) ViewMode {
	switch v.mode {
	case ModeResults:
		if session != nil && session.Status == domain.StatusCompleted {
			return ModeResults
		}
	case ModeHistory:
		return ModeHistory
	case ModeQuiz:
		if session != nil && len(session.Questions) > 0 {
			return ModeQuiz
		}
	}
	return ModeHome
}

// CanAdvance reports whether the current answer allows moving on.
func CanAdvance(answer string) bool {
	return strings.TrimSpace(answer) != ""
}

// NextIndex returns the following question index, or false on the last question.
func NextIndex(session *domain.QuizSession) (int, bool) {
	if session == nil || session.CurrentQuestionIndex >= len(session.Questions)-1 {
		return 0, false
	}
	return session.CurrentQuestionIndex + 1, true
}

// PreviousIndex returns the preceding question index, or false on the first question.
func PreviousIndex(session *domain.QuizSession) (int, bool) {
	if session == nil || session.CurrentQuestionIndex <= 0 {
		return 0, false
	}
	return session.CurrentQuestionIndex - 1, true
}

// IsLastQuestion reports whether the session shows its final prompt.
func IsLastQuestion(session *domain.QuizSession) bool {
	return session != nil && session.CurrentQuestionIndex == len(session.Questions)-1
}
