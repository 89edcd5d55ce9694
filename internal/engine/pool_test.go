package engine

import (
	"reflect"
	"testing"
)

func TestPlaceWordMatch(t *testing.T) {
	pool := []string{"fox", "the", "quick"}
	placed := []string{}

	result := PlaceWord(pool, placed, "the", "the")
	if !result.IsMatch {
		t.Fatalf("expected match")
	}
	if !reflect.DeepEqual(result.Placed, []string{"the"}) {
		t.Fatalf("expected placed [the], got %v", result.Placed)
	}
	if !reflect.DeepEqual(result.Pool, []string{"fox", "quick"}) {
		t.Fatalf("expected pool [fox quick], got %v", result.Pool)
	}
	// Inputs must be untouched.
	if len(pool) != 3 || len(placed) != 0 {
		t.Fatalf("inputs mutated: pool=%v placed=%v", pool, placed)
	}
}

func TestPlaceWordMismatchLeavesInputs(t *testing.T) {
	pool := []string{"fox", "the", "quick"}
	placed := []string{"a"}

	result := PlaceWord(pool, placed, "the", "fox")
	if result.IsMatch {
		t.Fatalf("expected mismatch")
	}
	if !reflect.DeepEqual(result.Pool, pool) || !reflect.DeepEqual(result.Placed, placed) {
		t.Fatalf("mismatch must not change pool or placed, got pool=%v placed=%v", result.Pool, result.Placed)
	}
}

func TestPlaceWordTrimsWhitespace(t *testing.T) {
	result := PlaceWord([]string{" the "}, nil, "the", "  the")
	if !result.IsMatch {
		t.Fatalf("expected trimmed comparison to match")
	}
	if len(result.Pool) != 0 {
		t.Fatalf("expected pool emptied, got %v", result.Pool)
	}
}

func TestPlaceWordRemovesFirstDuplicateOnly(t *testing.T) {
	pool := []string{"la", "casa", "la", "es"}

	result := PlaceWord(pool, nil, "la", "la")
	if !result.IsMatch {
		t.Fatalf("expected match")
	}
	if !reflect.DeepEqual(result.Pool, []string{"casa", "la", "es"}) {
		t.Fatalf("expected first duplicate removed, got %v", result.Pool)
	}
}
