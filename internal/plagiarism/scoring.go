package plagiarism

import "fmt"

// Level is a coarse similarity risk tier.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

const (
	lowDescription    = "Low similarity detected. The documents appear to be mostly different."
	mediumDescription = "Moderate similarity detected. The documents share some common phrases and content."
	highDescription   = "High similarity detected. The documents contain significant matching content that may indicate plagiarism."
)

// Classification pairs a tier with its human-readable description.
type Classification struct {
	Level       Level  `json:"level"`
	Description string `json:"description"`
}

// Thresholds holds the lower bound (inclusive) of the medium and high tiers.
type Thresholds struct {
	Medium float64
	High   float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Medium: 0.3,
		High:   0.6,
	}
}

func (t Thresholds) Validate() error {
	if t.Medium < 0 || t.High > 1 {
		return fmt.Errorf("thresholds must lie within [0, 1], got medium=%v high=%v", t.Medium, t.High)
	}
	if t.Medium > t.High {
		return fmt.Errorf("medium threshold %v exceeds high threshold %v", t.Medium, t.High)
	}
	return nil
}

// Classify maps a score to exactly one tier. Each tier is closed on its
// lower bound and open on its upper bound.
func (t Thresholds) Classify(score float64) Classification {
	if score < t.Medium {
		return Classification{Level: LevelLow, Description: lowDescription}
	} else if score < t.High {
		return Classification{Level: LevelMedium, Description: mediumDescription}
	}
	return Classification{Level: LevelHigh, Description: highDescription}
}

// Classify maps a score to a tier using the default thresholds.
func Classify(score float64) Classification {
	return DefaultThresholds().Classify(score)
}

// Jaccard returns |a ∩ b| / |a ∪ b|. Two empty sets score 0: nothing to
// compare counts as no similarity.
func Jaccard(a, b *NgramSet) float64 {
	if a.Len() == 0 && b.Len() == 0 {
		return 0.0
	}

	// Iterate the smaller set for the intersection count
	small, large := a, b
	if small.Len() > large.Len() {
		small, large = large, small
	}

	shared := 0
	for _, ngram := range small.items {
		if large.Contains(ngram) {
			shared++
		}
	}

	union := a.Len() + b.Len() - shared
	return float64(shared) / float64(union)
}
