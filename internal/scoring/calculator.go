package scoring

import (
	"math"

	threat "github.com/vigilz/homebase/internal/domain/threat"
)

// Round2 rounds a score to two decimal places. Scores are rounded exactly
// twice in an event's lifetime: after the initial calculation and after the
// audio-adjusted recalculation, never per bonus.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Weights is the additive detection weight table.
type Weights struct {
	// BasePerson is the base weight for a "person" label.
	BasePerson float64
	// WeaponBonus is added when a weapon is present.
	WeaponBonus float64
	// MaskBonus is added when the subject wears a mask.
	MaskBonus float64
	// HoodieBonus is added when the subject wears a hoodie.
	HoodieBonus float64
	// PoseBonus is added when the pose is crouch or prone.
	PoseBonus float64
}

// Calculator maps detection attributes to a threat score.
type Calculator struct {
	// weights is the immutable weight table loaded at startup.
	weights Weights
}

// NewCalculator creates a calculator over the provided weight table.
func NewCalculator(weights Weights) *Calculator {
	return &Calculator{weights: weights}
}

// Score computes the additive threat score for the given attributes,
// rounded to two decimals. Missing attributes contribute zero.
//
// Detector confidence deliberately does not feed the score; raw confidence
// does not translate to threat without per-site tuning. Should that change,
// the weight table is the place to extend.
func (c *Calculator) Score(attrs threat.Attributes) float64 {
	var score float64

	if attrs.Label == "person" {
		score += c.weights.BasePerson
	}

	if attrs.Weapon {
		score += c.weights.WeaponBonus
	}

	if attrs.Mask {
		score += c.weights.MaskBonus
	}

	if attrs.Hoodie {
		score += c.weights.HoodieBonus
	}

	if attrs.Pose == "crouch" || attrs.Pose == "prone" {
		score += c.weights.PoseBonus
	}

	return Round2(score)
}
