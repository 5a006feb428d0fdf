package threat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDecodeDetection parses a full Frigate-style event and keeps the raw
// subject payload for replay.
func TestDecodeDetection(t *testing.T) {
	t.Parallel()

	payload := []byte(`{
		"id": "1691234567.123-abc",
		"type": "new",
		"after": {
			"label": "person",
			"attributes": {
				"weapon": true,
				"clothing": {"mask": true, "hoodie": false},
				"pose": "crouch"
			}
		}
	}`)

	event, err := DecodeDetection(payload)
	require.NoError(t, err)
	require.Equal(t, "1691234567.123-abc", event.ID)
	require.Equal(t, KindNew, event.Kind)
	require.True(t, event.Actionable())
	require.Equal(t, Attributes{
		Label:  "person",
		Weapon: true,
		Mask:   true,
		Pose:   "crouch",
	}, event.Attributes)
	require.JSONEq(t, `{
		"label": "person",
		"attributes": {
			"weapon": true,
			"clothing": {"mask": true, "hoodie": false},
			"pose": "crouch"
		}
	}`, string(event.Raw))
}

// TestDecodeDetectionLegacyWeaponLocation accepts the weapon flag under "extras".
func TestDecodeDetectionLegacyWeaponLocation(t *testing.T) {
	t.Parallel()

	event, err := DecodeDetection([]byte(`{"id": "e1", "type": "new", "after": {"label": "person", "extras": {"weapon": true}}}`))
	require.NoError(t, err)
	require.True(t, event.Attributes.Weapon)
}

// TestDecodeDetectionMalformed rejects undecodable payloads.
func TestDecodeDetectionMalformed(t *testing.T) {
	t.Parallel()

	_, err := DecodeDetection([]byte(`{not json`))
	require.Error(t, err)

	_, err = DecodeDetection([]byte(`{"id": "e1", "type": "new", "after": 42}`))
	require.Error(t, err)
}

// TestActionable covers the lifecycle kinds.
func TestActionable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		event DetectionEvent
		want  bool
	}{
		{"new", DetectionEvent{Kind: KindNew}, true},
		{"update significant", DetectionEvent{Kind: KindUpdate, SignificantChange: true}, true},
		{"update insignificant", DetectionEvent{Kind: KindUpdate}, false},
		{"end", DetectionEvent{Kind: KindEnd}, false},
		{"unknown kind", DetectionEvent{Kind: EventKind("bogus")}, false},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, tc.event.Actionable())
		})
	}
}

// TestDecodeAudioResult parses an audio result and normalises the tone.
func TestDecodeAudioResult(t *testing.T) {
	t.Parallel()

	payload := []byte(`{
		"id": "e1",
		"transcript": "I have a package delivery",
		"tone": "Neutral",
		"matched_keywords": ["delivery"],
		"prompt_played": "who_is_there.wav",
		"timestamp": 1691234572.5
	}`)

	result, err := DecodeAudioResult(payload)
	require.NoError(t, err)
	require.Equal(t, "e1", result.ID)
	require.Equal(t, ToneNeutral, result.Tone)
	require.Equal(t, []string{"delivery"}, result.MatchedKeywords)
	require.Equal(t, "who_is_there.wav", result.PromptPlayed)
}

// TestDecodeAudioResultToneFallback maps missing or bogus tones to neutral.
func TestDecodeAudioResultToneFallback(t *testing.T) {
	t.Parallel()

	result, err := DecodeAudioResult([]byte(`{"id": "e1", "transcript": ""}`))
	require.NoError(t, err)
	require.Equal(t, ToneNeutral, result.Tone)

	result, err = DecodeAudioResult([]byte(`{"id": "e1", "tone": "angry-ish"}`))
	require.NoError(t, err)
	require.Equal(t, ToneNeutral, result.Tone)
}

// TestVerdictString covers the verdict names.
func TestVerdictString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "drop", VerdictDrop.String())
	require.Equal(t, "inquiry", VerdictInquiry.String())
	require.Equal(t, "alarm", VerdictAlarm.String())
	require.Equal(t, "unknown", Verdict(99).String())
}
