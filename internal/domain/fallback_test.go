package domain

import (
	"reflect"
	"strconv"
	"strings"
	"testing"
)

func TestFallbackBatchIsDeterministic(t *testing.T) {
	for _, id := range []int{1, 2, 5, 10} {
		a := FallbackBatch(id)
		b := FallbackBatch(id)
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("batch %d differs between calls", id)
		}
		if !a.Valid() {
			t.Fatalf("batch %d has %d questions", id, len(a.Questions))
		}
	}
}

func TestFallbackBatchDerivedSets(t *testing.T) {
	tests := []struct {
		id     int
		diff   Difficulty
		firstQ int
	}{
		{id: 3, diff: DifficultyEasy, firstQ: 11},
		{id: 6, diff: DifficultyMedium, firstQ: 26},
		{id: 9, diff: DifficultyHard, firstQ: 41},
	}
	for _, tt := range tests {
		batch := FallbackBatch(tt.id)
		if batch.Questions[0].ID != tt.firstQ {
			t.Fatalf("batch %d first id = %d want %d", tt.id, batch.Questions[0].ID, tt.firstQ)
		}
		for _, q := range batch.Questions {
			if q.Difficulty != tt.diff {
				t.Fatalf("batch %d difficulty = %s want %s", tt.id, q.Difficulty, tt.diff)
			}
			if !strings.HasSuffix(q.SourceText, "(Batch "+strconv.Itoa(tt.id)+")") {
				t.Fatalf("batch %d source text %q missing suffix", tt.id, q.SourceText)
			}
		}
	}
}

func TestFallbackBatchDoesNotShareSets(t *testing.T) {
	batch := FallbackBatch(1)
	batch.Questions[0].SourceText = "mutated"
	if FallbackBatch(1).Questions[0].SourceText == "mutated" {
		t.Fatalf("fallback set was mutated through a returned batch")
	}
}
