// Package scoring converts audit issue counts and account signals into
// a 0-100 health score with a transparent breakdown.
package scoring

// Deduction and bonus weights.
const (
	criticalPenaltyPer = 5
	highPenaltyPer     = 2
	sitemapBonus       = 5
	metricsBonus       = 5
)

// BaseScore is the starting score when no prior signal exists.
const BaseScore = 100

// Score bounds.
const (
	minScore = 0
	maxScore = 100
)

// Status band upper bounds (all bounds inclusive on the low end).
const (
	criticalBandMax  = 40
	needsWorkBandMax = 70
	goodBandMax      = 85
)

// Status labels derived from the final score.
const (
	StatusCritical  = "critical"
	StatusNeedsWork = "needs-work"
	StatusGood      = "good"
	StatusExcellent = "excellent"
)

// Input carries everything the scoring formula consumes.
type Input struct {
	// Base is the starting score: BaseScore when no prior signal
	// exists, or the raw issue-derived score from the check pipeline.
	Base             int  `json:"base"`
	CriticalCount    int  `json:"critical_count"`
	HighCount        int  `json:"high_count"`
	SitemapPresent   bool `json:"sitemap_present"`
	MetricsConnected bool `json:"metrics_connected"`
}

// Breakdown is the final score plus every term that produced it, for
// display and auditability. Raw may legitimately fall outside [0,100]
// before clamping.
type Breakdown struct {
	Base            int    `json:"base"`
	CriticalPenalty int    `json:"critical_penalty"`
	HighPenalty     int    `json:"high_penalty"`
	SitemapBonus    int    `json:"sitemap_bonus"`
	MetricsBonus    int    `json:"metrics_bonus"`
	Raw             int    `json:"raw"`
	Score           int    `json:"score"`
	Status          string `json:"status"`
}

// Score applies the deterministic formula:
// base - 5*critical - 2*high + sitemap bonus + metrics bonus,
// clamped to [0,100].
func Score(in Input) Breakdown {
	b := Breakdown{
		Base:            in.Base,
		CriticalPenalty: criticalPenaltyPer * in.CriticalCount,
		HighPenalty:     highPenaltyPer * in.HighCount,
	}
	if in.SitemapPresent {
		b.SitemapBonus = sitemapBonus
	}
	if in.MetricsConnected {
		b.MetricsBonus = metricsBonus
	}

	b.Raw = b.Base - b.CriticalPenalty - b.HighPenalty + b.SitemapBonus + b.MetricsBonus
	b.Score = clamp(b.Raw)
	b.Status = StatusFor(b.Score)
	return b
}

// StatusFor maps a final score to its status band.
func StatusFor(score int) string {
	switch {
	case score <= criticalBandMax:
		return StatusCritical
	case score <= needsWorkBandMax:
		return StatusNeedsWork
	case score <= goodBandMax:
		return StatusGood
	default:
		return StatusExcellent
	}
}

func clamp(v int) int {
	if v < minScore {
		return minScore
	}
	if v > maxScore {
		return maxScore
	}
	return v
}
