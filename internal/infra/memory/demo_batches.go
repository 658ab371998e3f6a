package memory

import (
	"time"

	"verbiverse-quiz/internal/domain"
)

var demoCreatedAt = time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

// DemoBatches returns the bundled batches used when running without IPFS or a database.
func DemoBatches() map[int]domain.Batch {
	return map[int]domain.Batch{
		1: demoBatch(1, domain.DifficultyEasy, [][2]string{
			{"Hello", "Hola"},
			{"Goodbye", "Adiós"},
			{"Thank you", "Gracias"},
			{"Good morning", "Buenos días"},
			{"How are you?", "¿Cómo estás?"},
		}),
		2: demoBatch(2, domain.DifficultyEasy, [][2]string{
			{"I love you", "Te amo"},
			{"What is your name?", "¿Cómo te llamas?"},
			{"Please", "Por favor"},
			{"Yes", "Sí"},
			{"No", "No"},
		}),
		3: demoBatch(3, domain.DifficultyMedium, [][2]string{
			{"Where is the bathroom?", "¿Dónde está el baño?"},
			{"I don't understand", "No entiendo"},
			{"How much does it cost?", "¿Cuánto cuesta?"},
			{"Can you help me?", "¿Puedes ayudarme?"},
			{"I am hungry", "Tengo hambre"},
		}),
	}
}

func demoBatch(id int, difficulty domain.Difficulty, pairs [][2]string) domain.Batch {
	questions := make([]domain.Question, len(pairs))
	for i, p := range pairs {
		questions[i] = domain.Question{
			ID:                 i + 1,
			SourceText:         p[0],
			CorrectTranslation: p[1],
			TargetLanguage:     "es",
			Difficulty:         difficulty,
		}
	}
	return domain.Batch{
		BatchID:      id,
		Questions:    questions,
		CreatedAt:    demoCreatedAt,
		Difficulty:   difficulty,
		LanguagePair: "en-es",
	}
}
