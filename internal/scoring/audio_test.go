package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"

	threat "github.com/vigilz/homebase/internal/domain/threat"
)

// testAdjuster mirrors the stock audio weights and keyword sets.
func testAdjuster() *Adjuster {
	return NewAdjuster(
		AudioWeights{
			NegativeTone:   0.3,
			ThreatKeyword:  0.2,
			CalmDelivery:   -0.2,
			EvasiveSilence: 0.1,
		},
		[]string{"help", "police", "intruder", "attack"},
		[]string{"delivery"},
	)
}

// TestAdjust covers the audio adjustment rules and their interactions.
func TestAdjust(t *testing.T) {
	t.Parallel()

	adjuster := testAdjuster()

	cases := []struct {
		name   string
		base   float64
		result threat.AudioResult
		want   float64
	}{
		{
			"negative tone",
			0.7,
			threat.AudioResult{Transcript: "go away", Tone: threat.ToneNegative},
			1.0,
		},
		{
			"threat keyword",
			0.5,
			threat.AudioResult{Transcript: "I will call the police", Tone: threat.ToneNeutral},
			0.7,
		},
		{
			"negative tone and threat keyword stack",
			0.5,
			threat.AudioResult{Transcript: "this is an attack", Tone: threat.ToneNegative},
			1.0,
		},
		{
			"calm delivery lowers score",
			0.5,
			threat.AudioResult{Transcript: "package delivery for you", Tone: threat.ToneNeutral},
			0.3,
		},
		{
			"calm marker ignored on negative tone",
			0.5,
			threat.AudioResult{Transcript: "delivery, now open up", Tone: threat.ToneNegative},
			0.8,
		},
		{
			"evasive silence",
			0.5,
			threat.AudioResult{Transcript: "", Tone: threat.ToneNeutral},
			0.6,
		},
		{
			"whitespace transcript counts as silence",
			0.5,
			threat.AudioResult{Transcript: "   ", Tone: threat.ToneNeutral},
			0.6,
		},
		{
			"silent tone without neutral gets nothing",
			0.5,
			threat.AudioResult{Transcript: "", Tone: threat.ToneSilent},
			0.5,
		},
		{
			"unknown tone with harmless transcript",
			0.5,
			threat.AudioResult{Transcript: "hello there", Tone: threat.ToneUnknown},
			0.5,
		},
		{
			"keyword matching is case-insensitive",
			0.5,
			threat.AudioResult{Transcript: "HELP ME", Tone: threat.ToneNeutral},
			0.7,
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.InDelta(t, tc.want, adjuster.Adjust(tc.base, &tc.result), 1e-9)
		})
	}
}

// TestAdjustRoundsOnce verifies the result is rounded once at the boundary,
// not per rule.
func TestAdjustRoundsOnce(t *testing.T) {
	t.Parallel()

	adjuster := NewAdjuster(AudioWeights{NegativeTone: 0.104, ThreatKeyword: 0.104}, []string{"attack"}, nil)
	got := adjuster.Adjust(0.5, &threat.AudioResult{Transcript: "attack", Tone: threat.ToneNegative})

	// 0.5 + 0.104 + 0.104 = 0.708 -> 0.71; per-rule rounding would yield 0.70.
	require.InDelta(t, 0.71, got, 1e-9)
}
