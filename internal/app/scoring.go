package app

import (
	"math"
	"strings"
	"unicode"

	"verbiverse-quiz/internal/domain"
)

// ignoredPunctuation is stripped before answers are compared.
const ignoredPunctuation = ".,!?¡¿;:"

// Normalize lowercases text, strips trivial punctuation and collapses whitespace.
// Accents are kept: "adios" and "adiós" stay different.
func Normalize(text string) string {
	stripped := strings.Map(func(r rune) rune {
		if strings.ContainsRune(ignoredPunctuation, r) {
			return -1
		}
		return unicode.ToLower(r)
	}, text)
	return strings.Join(strings.Fields(stripped), " ")
}

// IsCorrect reports whether the answer matches the reference after normalization.
func IsCorrect(userAnswer, referenceAnswer string) bool {
	return Normalize(userAnswer) == Normalize(referenceAnswer)
}

// ScoreBatch returns the percentage of answers matching their question's reference translation.
func ScoreBatch(questions []domain.Question, answers []string) (int, error) {
	if len(questions) != len(answers) {
		return 0, domain.ErrLengthMismatch
	}
	if len(questions) == 0 {
		return 0, nil
	}

	correct := 0
	for i, q := range questions {
		if IsCorrect(answers[i], q.CorrectTranslation) {
			correct++
		}
	}
	return int(math.Round(float64(correct) / float64(len(questions)) * 100)), nil
}

// MarkAnswers records per-question correctness on a session copy for the results view.
func MarkAnswers(session *domain.QuizSession, questions []domain.Question) error {
	if len(session.Questions) != len(questions) {
		return domain.ErrLengthMismatch
	}
	for i := range session.Questions {
		ok := IsCorrect(session.Questions[i].UserAnswer, questions[i].CorrectTranslation)
		session.Questions[i].IsCorrect = &ok
	}
	return nil
}
