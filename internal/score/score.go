// Package score maps a violation tally to a page health score in [0,100]
// and derives the optimization tier from it.
package score

import (
	"math"

	"github.com/nao1215/pagescore/internal/model"
)

// Default penalty per issue, by severity.
const (
	DefaultCriticalWeight = 18
	DefaultSeriousWeight  = 12
	DefaultModerateWeight = 7
	DefaultMinorWeight    = 4
)

const (
	// MaxScore is the upper bound of the scale. Pages never reach it.
	MaxScore = 100

	// MinScore is the lower bound of the scale.
	MinScore = 0

	// NoViolationScore is the score of a page with zero issues. 100 is kept
	// as an unreachable ceiling.
	NoViolationScore = 98

	// OptimisedThreshold is the lowest score of an optimised page.
	OptimisedThreshold = 90

	// NeedsImprovementThreshold is the lowest score of a page that is not critical.
	NeedsImprovementThreshold = 60
)

// Weights is the penalty subtracted per issue of each severity.
// Negative weights are treated as zero.
type Weights struct {
	Critical float64 `yaml:"critical" json:"critical"`
	Serious  float64 `yaml:"serious" json:"serious"`
	Moderate float64 `yaml:"moderate" json:"moderate"`
	Minor    float64 `yaml:"minor" json:"minor"`
}

// DefaultWeights returns the canonical weight table.
func DefaultWeights() Weights {
	return Weights{
		Critical: DefaultCriticalWeight,
		Serious:  DefaultSeriousWeight,
		Moderate: DefaultModerateWeight,
		Minor:    DefaultMinorWeight,
	}
}

// Calculate returns 100 minus the weighted issue counts, rounded to the
// nearest integer and clamped to [0,100]. A tally with no issues scores
// NoViolationScore.
func Calculate(t model.ViolationTally, w Weights) int {
	if t.Critical+t.Serious+t.Moderate+t.Minor == 0 {
		return NoViolationScore
	}

	penalty := penaltyFor(t.Critical, w.Critical) +
		penaltyFor(t.Serious, w.Serious) +
		penaltyFor(t.Moderate, w.Moderate) +
		penaltyFor(t.Minor, w.Minor)

	raw := math.Round(MaxScore - penalty)
	switch {
	case raw < MinScore:
		return MinScore
	case raw > MaxScore:
		return MaxScore
	default:
		return int(raw)
	}
}

// Tier derives the optimization tier. A page is optimised only when it
// scores at least OptimisedThreshold and has no critical issue.
func Tier(score, critical int) model.OptimizationTier {
	switch {
	case score >= OptimisedThreshold && critical == 0:
		return model.TierOptimised
	case score >= NeedsImprovementThreshold:
		return model.TierNeedsImprovement
	default:
		return model.TierCritical
	}
}

func penaltyFor(count int, weight float64) float64 {
	if count <= 0 || weight <= 0 || math.IsNaN(weight) {
		return 0
	}
	return float64(count) * weight
}
