package round

import (
	"errors"
	"testing"
)

func TestCompareFirstRun(t *testing.T) {
	t.Parallel()

	current := Entry{Date: "2024-01-15", Invitations: 150, MinScore: 410}
	out, err := Compare(nil, current)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if !out.Changed {
		t.Fatal("nil previous must count as changed")
	}
	if out.Previous != nil {
		t.Fatalf("expected nil previous in outcome, got %v", out.Previous)
	}
	if out.Current != current {
		t.Fatalf("outcome current = %v, want %v", out.Current, current)
	}
}

func TestCompareDateIsTheOnlyKey(t *testing.T) {
	t.Parallel()

	t.Run("same date, different counts", func(t *testing.T) {
		prev := &Entry{Date: "2024-01-15", Invitations: 100, MinScore: 400}
		out, err := Compare(prev, Entry{Date: "2024-01-15", Invitations: 9999, MinScore: 999})
		if err != nil {
			t.Fatalf("Compare() error = %v", err)
		}
		if out.Changed {
			t.Fatal("count/score differences under the same date are not a change")
		}
	})

	t.Run("different date", func(t *testing.T) {
		prev := &Entry{Date: "2024-01-14", Invitations: 100, MinScore: 400}
		out, err := Compare(prev, Entry{Date: "2024-01-15", Invitations: 100, MinScore: 400})
		if err != nil {
			t.Fatalf("Compare() error = %v", err)
		}
		if !out.Changed {
			t.Fatal("a new date is a change")
		}
		if out.Previous == nil || out.Previous.Date != "2024-01-14" {
			t.Fatalf("outcome previous = %v", out.Previous)
		}
	})
}

func TestCompareDeterministic(t *testing.T) {
	t.Parallel()

	prev := &Entry{Date: "2024-01-14", Invitations: 100, MinScore: 400}
	current := Entry{Date: "2024-01-15", Invitations: 150, MinScore: 410}
	first, err := Compare(prev, current)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	for range 10 {
		again, err := Compare(prev, current)
		if err != nil {
			t.Fatalf("Compare() error = %v", err)
		}
		if again != first {
			t.Fatalf("Compare is not deterministic: %v vs %v", again, first)
		}
	}
}

func TestCompareRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	valid := Entry{Date: "2024-01-15", Invitations: 150, MinScore: 410}

	t.Run("invalid previous", func(t *testing.T) {
		bad := &Entry{Date: "", Invitations: 100, MinScore: 400}
		_, err := Compare(bad, valid)
		assertComparisonError(t, err, "previous")
	})

	t.Run("invalid current", func(t *testing.T) {
		_, err := Compare(&valid, Entry{Date: "2024-01-15", Invitations: -1, MinScore: 410})
		assertComparisonError(t, err, "current")
	})
}

func assertComparisonError(t *testing.T, err error, side string) {
	t.Helper()
	var cerr *ComparisonError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *ComparisonError, got %v", err)
	}
	if cerr.Side != side {
		t.Fatalf("error names side %q, want %q", cerr.Side, side)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("comparison error should wrap the validation failure, got %v", err)
	}
}
