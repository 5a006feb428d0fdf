package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"

	threat "github.com/vigilz/homebase/internal/domain/threat"
)

// testWeights mirrors the stock weight table.
func testWeights() Weights {
	return Weights{
		BasePerson:  0.2,
		WeaponBonus: 0.5,
		MaskBonus:   0.1,
		HoodieBonus: 0.1,
		PoseBonus:   0.15,
	}
}

// TestCalculatorScore covers the additive weight table.
func TestCalculatorScore(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(testWeights())

	cases := []struct {
		name  string
		attrs threat.Attributes
		want  float64
	}{
		{"empty attributes", threat.Attributes{}, 0},
		{"non-person label", threat.Attributes{Label: "cat"}, 0},
		{"person only", threat.Attributes{Label: "person"}, 0.2},
		{"person with weapon", threat.Attributes{Label: "person", Weapon: true}, 0.7},
		{"weapon without person", threat.Attributes{Label: "car", Weapon: true}, 0.5},
		{"masked hooded person", threat.Attributes{Label: "person", Mask: true, Hoodie: true}, 0.4},
		{"crouching person", threat.Attributes{Label: "person", Pose: "crouch"}, 0.35},
		{"prone person", threat.Attributes{Label: "person", Pose: "prone"}, 0.35},
		{"standing person", threat.Attributes{Label: "person", Pose: "standing"}, 0.2},
		{
			"everything at once",
			threat.Attributes{Label: "person", Weapon: true, Mask: true, Hoodie: true, Pose: "prone"},
			1.05,
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.InDelta(t, tc.want, calc.Score(tc.attrs), 1e-9)
		})
	}
}

// TestCalculatorScoreIsRounded checks the two-decimal boundary rounding.
func TestCalculatorScoreIsRounded(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(Weights{BasePerson: 0.1, MaskBonus: 0.015})
	score := calc.Score(threat.Attributes{Label: "person", Mask: true})
	require.InDelta(t, 0.12, score, 1e-9)
}

// TestRound2 checks rounding at the half-cent boundary.
func TestRound2(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 0.7, Round2(0.7000000001), 1e-9)
	require.InDelta(t, 0.13, Round2(0.125), 1e-9)
	require.InDelta(t, -0.13, Round2(-0.125), 1e-9)
}
