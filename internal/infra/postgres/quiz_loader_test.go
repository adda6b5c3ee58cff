package postgres

import "testing"

func TestOptionColumnsRoundTrip(t *testing.T) {
	cols := optionColumns([]string{"London", "Rome"})
	if cols[0] == nil || *cols[0] != "London" || cols[1] == nil || *cols[1] != "Rome" || cols[2] != nil {
		t.Fatalf("unexpected columns: %v", cols)
	}

	got := incorrectAnswers(cols[:])
	if len(got) != 2 || got[0] != "London" || got[1] != "Rome" {
		t.Fatalf("unexpected answers: %v", got)
	}
}

func TestOptionColumnsDropsOverflowAndBlanks(t *testing.T) {
	cols := optionColumns([]string{"a", "b", "c", "d"})
	if *cols[2] != "c" {
		t.Fatalf("expected third column c, got %q", *cols[2])
	}
	empty := ""
	if got := incorrectAnswers([]*string{nil, &empty, cols[0]}); len(got) != 1 || got[0] != "a" {
		t.Fatalf("expected only a, got %v", got)
	}
	if nullable("") != nil || *nullable("x") != "x" {
		t.Fatalf("nullable mismatch")
	}
}
