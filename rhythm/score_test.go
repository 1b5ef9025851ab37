package rhythm

import (
	"errors"
	"math"
	"testing"
)

func TestIntervalScorerWorkedSequence(t *testing.T) {
	// 120 BPM quarter notes: expected interval 0.5 s. Intervals 0.50,
	// 0.02, 1.08 classify green, red, red for 1/3 accuracy.
	scorer, err := NewIntervalScorer(120, PatternQuarter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report := scorer.Score([]float64{0.00, 0.50, 0.52, 1.60})
	if report.Insufficient {
		t.Fatalf("unexpected insufficient report: %s", report.Reason)
	}

	want := 100.0 / 3.0
	if math.Abs(report.Accuracy-want) > 1e-9 {
		t.Fatalf("accuracy %v, want %v", report.Accuracy, want)
	}

	if len(report.Notes) != 4 {
		t.Fatalf("expected 4 note entries, got %d", len(report.Notes))
	}
	if report.Notes[0].Tier != TierNone {
		t.Fatalf("first onset must be TierNone, got %s", report.Notes[0].Tier)
	}

	wantTiers := []Tier{TierNone, TierGreen, TierRed, TierRed}
	wantErrors := []float64{0, 0, 480, 580}
	for i, note := range report.Notes {
		if note.Tier != wantTiers[i] {
			t.Fatalf("note %d: tier %s, want %s", i, note.Tier, wantTiers[i])
		}
		if i > 0 && math.Abs(note.ErrorMs-wantErrors[i]) > 1e-6 {
			t.Fatalf("note %d: error %v ms, want %v", i, note.ErrorMs, wantErrors[i])
		}
	}
}

func TestIntervalScorerYellowTier(t *testing.T) {
	scorer, err := NewIntervalScorer(120, PatternQuarter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Interval 0.55: 50 ms error lands in the yellow band for half credit
	report := scorer.Score([]float64{0.0, 0.55})
	if report.Notes[1].Tier != TierYellow {
		t.Fatalf("expected yellow, got %s", report.Notes[1].Tier)
	}
	if math.Abs(report.Accuracy-50.0) > 1e-9 {
		t.Fatalf("accuracy %v, want 50", report.Accuracy)
	}
}

func TestIntervalScorerSortsOnsets(t *testing.T) {
	scorer, err := NewIntervalScorer(120, PatternQuarter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Same take, unsorted: results must match the sorted case
	report := scorer.Score([]float64{1.0, 0.0, 0.5})
	if report.Insufficient {
		t.Fatalf("unexpected insufficient report: %s", report.Reason)
	}
	if math.Abs(report.Accuracy-100.0) > 1e-9 {
		t.Fatalf("accuracy %v, want 100", report.Accuracy)
	}
}

func TestIntervalScorerInsufficientData(t *testing.T) {
	scorer, err := NewIntervalScorer(120, PatternQuarter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, onsets := range [][]float64{nil, {}, {0.5}} {
		report := scorer.Score(onsets)
		if !report.Insufficient {
			t.Fatalf("expected insufficient report for %d onsets", len(onsets))
		}
		if report.Accuracy != 0 {
			t.Fatalf("insufficient report must not carry an accuracy, got %v", report.Accuracy)
		}
	}
}

func TestIntervalScorerInvalidArguments(t *testing.T) {
	if _, err := NewIntervalScorer(0, PatternQuarter); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for zero tempo, got %v", err)
	}
	if _, err := NewIntervalScorer(120, Pattern("nope")); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for bad pattern, got %v", err)
	}
}

func TestFixedGridScorerWorkedSequence(t *testing.T) {
	// Expected beats [0, 0.5, 1.0], adjusted onsets [0.01, 0.52, 1.06]:
	// errors 10, 20, 60 ms classify green, green, red for 2/3 accuracy
	scorer := NewFixedGridScorer([]float64{0.0, 0.5, 1.0})

	report := scorer.Score([]float64{0.01, 0.52, 1.06})
	if report.Insufficient {
		t.Fatalf("unexpected insufficient report: %s", report.Reason)
	}

	want := 200.0 / 3.0
	if math.Abs(report.Accuracy-want) > 1e-9 {
		t.Fatalf("accuracy %v, want %v", report.Accuracy, want)
	}

	wantTiers := []Tier{TierGreen, TierGreen, TierRed}
	wantErrors := []float64{10, 20, 60}
	for i, note := range report.Notes {
		if note.Tier != wantTiers[i] {
			t.Fatalf("note %d: tier %s, want %s", i, note.Tier, wantTiers[i])
		}
		if math.Abs(note.ErrorMs-wantErrors[i]) > 1e-6 {
			t.Fatalf("note %d: error %v ms, want %v", i, note.ErrorMs, wantErrors[i])
		}
	}
}

func TestFixedGridScorerYellowTier(t *testing.T) {
	scorer := NewFixedGridScorer([]float64{0.0, 0.5})

	report := scorer.Score([]float64{0.04})
	if report.Notes[0].Tier != TierYellow {
		t.Fatalf("expected yellow for 40 ms error, got %s", report.Notes[0].Tier)
	}
	// Yellow earns no credit in fixed-grid mode
	if report.Accuracy != 0 {
		t.Fatalf("accuracy %v, want 0", report.Accuracy)
	}
}

func TestFixedGridScorerInsufficientData(t *testing.T) {
	scorer := NewFixedGridScorer([]float64{0.0, 0.5})
	report := scorer.Score(nil)
	if !report.Insufficient {
		t.Fatal("expected insufficient report for no onsets")
	}

	empty := NewFixedGridScorer(nil)
	report = empty.Score([]float64{0.1})
	if !report.Insufficient {
		t.Fatal("expected insufficient report for empty grid")
	}
}

func TestScorerModes(t *testing.T) {
	fixed := NewFixedGridScorer(nil)
	if fixed.Mode() != ModeFixedGrid {
		t.Fatalf("unexpected mode %s", fixed.Mode())
	}

	interval, err := NewIntervalScorer(120, PatternQuarter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if interval.Mode() != ModeInterval {
		t.Fatalf("unexpected mode %s", interval.Mode())
	}
	if interval.ExpectedInterval() != 0.5 {
		t.Fatalf("expected interval 0.5, got %v", interval.ExpectedInterval())
	}
}
