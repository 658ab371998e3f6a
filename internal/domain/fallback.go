package domain

import (
	"fmt"
	"time"
)

// FallbackLanguagePair labels every offline batch.
const FallbackLanguagePair = "English → Spanish"

// fallbackCreatedAt keeps offline batches byte-for-byte reproducible.
var fallbackCreatedAt = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

var fallbackSets = map[int][]Question{
	1: {
		{ID: 1, SourceText: "Hello, how are you?", CorrectTranslation: "Hola, ¿cómo estás?", TargetLanguage: "Spanish", Difficulty: DifficultyEasy},
		{ID: 2, SourceText: "What is your name?", CorrectTranslation: "¿Cómo te llamas?", TargetLanguage: "Spanish", Difficulty: DifficultyEasy},
		{ID: 3, SourceText: "Where do you live?", CorrectTranslation: "¿Dónde vives?", TargetLanguage: "Spanish", Difficulty: DifficultyEasy},
		{ID: 4, SourceText: "I love learning languages", CorrectTranslation: "Me encanta aprender idiomas", TargetLanguage: "Spanish", Difficulty: DifficultyEasy},
		{ID: 5, SourceText: "Thank you very much", CorrectTranslation: "Muchas gracias", TargetLanguage: "Spanish", Difficulty: DifficultyEasy},
	},
	2: {
		{ID: 6, SourceText: "The weather is beautiful today", CorrectTranslation: "El clima está hermoso hoy", TargetLanguage: "Spanish", Difficulty: DifficultyMedium},
		{ID: 7, SourceText: "I would like to order food", CorrectTranslation: "Me gustaría pedir comida", TargetLanguage: "Spanish", Difficulty: DifficultyMedium},
		{ID: 8, SourceText: "Can you help me please?", CorrectTranslation: "¿Puedes ayudarme por favor?", TargetLanguage: "Spanish", Difficulty: DifficultyMedium},
		{ID: 9, SourceText: "The book is on the table", CorrectTranslation: "El libro está sobre la mesa", TargetLanguage: "Spanish", Difficulty: DifficultyMedium},
		{ID: 10, SourceText: "I am learning Spanish", CorrectTranslation: "Estoy aprendiendo español", TargetLanguage: "Spanish", Difficulty: DifficultyMedium},
	},
}

// FallbackBatch builds the offline batch for batchID. It is pure: the same ID always
// yields the same content.
func FallbackBatch(batchID int) Batch {
	questions := fallbackQuestions(batchID)
	return Batch{
		BatchID:      batchID,
		Questions:    questions,
		CreatedAt:    fallbackCreatedAt,
		Difficulty:   DifficultyMedium,
		LanguagePair: FallbackLanguagePair,
	}
}

func fallbackQuestions(batchID int) []Question {
	if set, ok := fallbackSets[batchID]; ok {
		return append([]Question(nil), set...)
	}

	base := fallbackSets[1]
	questions := make([]Question, len(base))
	for i, q := range base {
		q.ID = (batchID-1)*QuestionsPerBatch + i + 1
		q.SourceText = fmt.Sprintf("%s (Batch %d)", q.SourceText, batchID)
		q.Difficulty = fallbackDifficulty(batchID)
		questions[i] = q
	}
	return questions
}

func fallbackDifficulty(batchID int) Difficulty {
	switch {
	case batchID <= 3:
		return DifficultyEasy
	case batchID <= 7:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}
