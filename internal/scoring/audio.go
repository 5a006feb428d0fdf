package scoring

import (
	"strings"

	threat "github.com/vigilz/homebase/internal/domain/threat"
)

// AudioWeights is the additive audio-adjustment weight table.
// CalmDelivery is configured negative so a calm explanation lowers the score.
type AudioWeights struct {
	// NegativeTone is added when the reply tone is negative.
	NegativeTone float64
	// ThreatKeyword is added when the transcript contains a threat keyword.
	ThreatKeyword float64
	// CalmDelivery is added when a calm marker is present and the tone is
	// not negative.
	CalmDelivery float64
	// EvasiveSilence is added when the transcript is blank and the tone is
	// neutral.
	EvasiveSilence float64
}

// Adjuster recomputes a threat score from the result of a voice challenge.
type Adjuster struct {
	// weights is the immutable audio weight table loaded at startup.
	weights AudioWeights
	// threatKeywords are substring-matched against the lowercased transcript.
	threatKeywords []string
	// calmMarkers are substring-matched against the lowercased transcript.
	calmMarkers []string
}

// NewAdjuster creates an adjuster over the provided weights and keyword sets.
func NewAdjuster(weights AudioWeights, threatKeywords, calmMarkers []string) *Adjuster {
	return &Adjuster{
		weights:        weights,
		threatKeywords: threatKeywords,
		calmMarkers:    calmMarkers,
	}
}

// Adjust applies the audio rules to the stored base score and returns the
// new score rounded to two decimals. All rules are additive; only the
// calm-delivery rule carries a guard (it does not apply on a negative tone,
// while the negative-tone and threat-keyword bonuses still can apply
// together with it otherwise).
func (a *Adjuster) Adjust(base float64, result *threat.AudioResult) float64 {
	score := base
	transcript := strings.ToLower(result.Transcript)

	if result.Tone == threat.ToneNegative {
		score += a.weights.NegativeTone
	}

	if containsAny(transcript, a.threatKeywords) {
		score += a.weights.ThreatKeyword
	}

	if containsAny(transcript, a.calmMarkers) && result.Tone != threat.ToneNegative {
		score += a.weights.CalmDelivery
	}

	if strings.TrimSpace(transcript) == "" && result.Tone == threat.ToneNeutral {
		score += a.weights.EvasiveSilence
	}

	return Round2(score)
}

// containsAny reports whether s contains any of the given substrings.
func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}

	return false
}
