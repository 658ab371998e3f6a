package memory

import (
	"context"
	"testing"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore(NewProgressStore())

	session := store.GetOrCreate("0xabc")
	if session == nil {
		t.Fatalf("expected session")
	}
	if again := store.GetOrCreate("0xabc"); again != session {
		t.Fatalf("expected the same state for the same address")
	}
	if _, ok := store.Get("0xabc"); !ok {
		t.Fatalf("expected session present")
	}

	store.DeleteIfIdle("0xabc")
	if _, ok := store.Get("0xabc"); ok {
		t.Fatalf("expected session removed when idle")
	}
}

func TestSessionStoreKeepsActiveQuiz(t *testing.T) {
	store := NewSessionStore(NewProgressStore())
	progress := store.GetOrCreate("0xabc")
	if _, err := progress.StartQuiz(context.Background(), "English → Spanish", 1, DemoBatches()[1].Questions); err != nil {
		t.Fatalf("start quiz: %v", err)
	}

	store.DeleteIfIdle("0xabc")
	if _, ok := store.Get("0xabc"); !ok {
		t.Fatalf("expected in-progress session to survive")
	}
}

func TestSessionStoreSeparatesAddresses(t *testing.T) {
	store := NewSessionStore(NewProgressStore())
	a := store.GetOrCreate("0xaaa")
	b := store.GetOrCreate("0xbbb")
	if a == b {
		t.Fatalf("expected distinct state per address")
	}
	if a.Address() != "0xaaa" || b.Address() != "0xbbb" {
		t.Fatalf("unexpected addresses %s %s", a.Address(), b.Address())
	}
}

func TestSessionStoreIsActive(t *testing.T) {
	store := NewSessionStore(NewProgressStore())
	ctx := context.Background()

	if active, _ := store.IsActive(ctx, "0xabc"); active {
		t.Fatalf("expected inactive before use")
	}
	_ = store.GetOrCreate("0xabc")
	if active, _ := store.IsActive(ctx, "0xabc"); !active {
		t.Fatalf("expected active after use")
	}
	store.DeleteIfIdle("0xabc")
	if active, _ := store.IsActive(ctx, "0xabc"); active {
		t.Fatalf("expected inactive after idle release")
	}
}
