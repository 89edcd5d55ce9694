package memory

import (
	"testing"

	"sentence-practice-service/internal/app"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	session := app.NewSession("s1", sampleSet(), "u1", false, nil)
	store.Put(session)

	got, ok := store.Get("s1")
	if !ok || got.ID() != "s1" {
		t.Fatalf("expected stored session, got ok=%v", ok)
	}

	store.Delete("s1")
	if _, ok := store.Get("s1"); ok {
		t.Fatalf("expected session removed")
	}
}
