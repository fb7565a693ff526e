package scoring_test

import (
	"testing"

	"github.com/jonesrussell/seo-auditor/internal/scoring"
)

func TestScore_DeductionsAndBands(t *testing.T) {
	// Base 90, 2 critical, 5 high, no bonuses: 90 - 10 - 10 = 70.
	got := scoring.Score(scoring.Input{
		Base:          90,
		CriticalCount: 2,
		HighCount:     5,
	})

	if got.Score != 70 {
		t.Errorf("Score = %d, want 70", got.Score)
	}
	if got.Status != scoring.StatusNeedsWork {
		t.Errorf("Status = %q, want needs-work", got.Status)
	}
	if got.CriticalPenalty != 10 || got.HighPenalty != 10 {
		t.Errorf("penalties = %d/%d, want 10/10", got.CriticalPenalty, got.HighPenalty)
	}
}

func TestScore_BonusesClampAt100(t *testing.T) {
	// Base 98 with both bonuses: raw 108, clamped to 100.
	got := scoring.Score(scoring.Input{
		Base:             98,
		SitemapPresent:   true,
		MetricsConnected: true,
	})

	if got.Raw != 108 {
		t.Errorf("Raw = %d, want 108", got.Raw)
	}
	if got.Score != 100 {
		t.Errorf("Score = %d, want 100", got.Score)
	}
	if got.Status != scoring.StatusExcellent {
		t.Errorf("Status = %q, want excellent", got.Status)
	}
}

func TestScore_ClampsAtZero(t *testing.T) {
	got := scoring.Score(scoring.Input{
		Base:          100,
		CriticalCount: 50,
	})

	if got.Raw != -150 {
		t.Errorf("Raw = %d, want -150", got.Raw)
	}
	if got.Score != 0 {
		t.Errorf("Score = %d, want 0", got.Score)
	}
	if got.Status != scoring.StatusCritical {
		t.Errorf("Status = %q, want critical", got.Status)
	}
}

func TestScore_AlwaysWithinBounds(t *testing.T) {
	// Property: the final score stays in [0,100] for any count magnitudes.
	for critical := 0; critical <= 1000; critical += 37 {
		for high := 0; high <= 1000; high += 41 {
			got := scoring.Score(scoring.Input{
				Base:             scoring.BaseScore,
				CriticalCount:    critical,
				HighCount:        high,
				SitemapPresent:   critical%2 == 0,
				MetricsConnected: high%2 == 0,
			})
			if got.Score < 0 || got.Score > 100 {
				t.Fatalf("Score(%d critical, %d high) = %d, out of [0,100]",
					critical, high, got.Score)
			}
		}
	}
}

func TestStatusFor_BandBoundaries(t *testing.T) {
	testCases := []struct {
		score int
		want  string
	}{
		{0, scoring.StatusCritical},
		{40, scoring.StatusCritical},
		{41, scoring.StatusNeedsWork},
		{70, scoring.StatusNeedsWork},
		{71, scoring.StatusGood},
		{85, scoring.StatusGood},
		{86, scoring.StatusExcellent},
		{100, scoring.StatusExcellent},
	}

	for _, tc := range testCases {
		if got := scoring.StatusFor(tc.score); got != tc.want {
			t.Errorf("StatusFor(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
