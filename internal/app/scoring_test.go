package app

import (
	"errors"
	"testing"

	"verbiverse-quiz/internal/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "lowercase and trim", in: "  Hola  ", want: "hola"},
		{name: "strips punctuation", in: "¡Hola, amigo!", want: "hola amigo"},
		{name: "inverted question marks", in: "¿Cómo estás?", want: "cómo estás"},
		{name: "semicolon and colon", in: "uno; dos: tres.", want: "uno dos tres"},
		{name: "collapses whitespace", in: "muchas \t  gracias\n", want: "muchas gracias"},
		{name: "punctuation only", in: " .,!? ", want: ""},
		{name: "keeps accents", in: "Adiós", want: "adiós"},
		{name: "keeps other symbols", in: "it's-ok", want: "it's-ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Fatalf("Normalize(%q) = %q want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"", "Hola,", "  ¿Dónde   vives? ", "A . B", "x y", "¡¡  !!", "Me encanta aprender idiomas"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestIsCorrect(t *testing.T) {
	tests := []struct {
		user, ref string
		want      bool
	}{
		{"Hola,", "hola", true},
		{"Hola amigo", "Hola  amigo", true},
		{"Adios", "Adiós", false},
		{"muchas gracias", "Muchas gracias", true},
		{"gracias", "Muchas gracias", false},
		{"", "", true},
	}
	for _, tt := range tests {
		if got := IsCorrect(tt.user, tt.ref); got != tt.want {
			t.Fatalf("IsCorrect(%q, %q) = %v want %v", tt.user, tt.ref, got, tt.want)
		}
	}
}

func TestScoreBatch(t *testing.T) {
	questions := domain.FallbackBatch(1).Questions
	answers := []string{
		"hola cómo estás",
		"¿como te llamas?", // missing accent
		"¿Dónde vives?",
		"Me encanta aprender idiomas!",
		"gracias",
	}

	score, err := ScoreBatch(questions, answers)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if score != 60 {
		t.Fatalf("expected 60, got %d", score)
	}
}

func TestScoreBatchRounding(t *testing.T) {
	questions := domain.FallbackBatch(1).Questions[:3]
	score, err := ScoreBatch(questions, []string{questions[0].CorrectTranslation, questions[1].CorrectTranslation, "x"})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if score != 67 {
		t.Fatalf("expected 67, got %d", score)
	}
}

func TestScoreBatchLengthMismatch(t *testing.T) {
	questions := domain.FallbackBatch(1).Questions
	if _, err := ScoreBatch(questions, []string{"a", "b"}); !errors.Is(err, domain.ErrLengthMismatch) {
		t.Fatalf("expected length mismatch, got %v", err)
	}
}

func TestMarkAnswers(t *testing.T) {
	questions := domain.FallbackBatch(2).Questions
	session := &domain.QuizSession{Questions: make([]domain.QuizQuestion, len(questions))}
	session.Questions[0].UserAnswer = "el clima está hermoso hoy."

	if err := MarkAnswers(session, questions); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if session.Questions[0].IsCorrect == nil || !*session.Questions[0].IsCorrect {
		t.Fatalf("expected first answer correct")
	}
	if session.Questions[1].IsCorrect == nil || *session.Questions[1].IsCorrect {
		t.Fatalf("expected empty answer incorrect")
	}
}
