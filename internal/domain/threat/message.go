package threat

import (
	"encoding/json"
	"fmt"
	"strings"
)

// detectionMessage is the wire form of a detection event.
// Frigate-style events carry the subject snapshot in "after".
type detectionMessage struct {
	ID                string          `json:"id"`
	Type              string          `json:"type"`
	SignificantChange bool            `json:"significant_change"`
	After             json.RawMessage `json:"after"`
}

// subjectPayload is the wire form of the subject snapshot.
// The weapon flag historically appeared under "extras" before detectors
// started reporting it under "attributes"; both locations are honoured.
type subjectPayload struct {
	Label      string `json:"label"`
	Attributes struct {
		Weapon   bool `json:"weapon"`
		Clothing struct {
			Mask   bool `json:"mask"`
			Hoodie bool `json:"hoodie"`
		} `json:"clothing"`
		Pose string `json:"pose"`
	} `json:"attributes"`
	Extras struct {
		Weapon bool `json:"weapon"`
	} `json:"extras"`
}

// audioResultMessage is the wire form of an audio analysis result.
type audioResultMessage struct {
	ID              string   `json:"id"`
	Transcript      string   `json:"transcript"`
	Tone            string   `json:"tone"`
	MatchedKeywords []string `json:"matched_keywords"`
	PromptPlayed    string   `json:"prompt_played"`
	Timestamp       float64  `json:"timestamp"`
}

// DecodeDetection parses a detection event payload.
// The subject snapshot is kept verbatim in Raw for later replay in alerts.
func DecodeDetection(payload []byte) (*DetectionEvent, error) {
	var msg detectionMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("decode detection event: %w", err)
	}

	event := &DetectionEvent{
		ID:                msg.ID,
		Kind:              EventKind(msg.Type),
		SignificantChange: msg.SignificantChange,
		Raw:               msg.After,
	}

	if len(msg.After) == 0 {
		return event, nil
	}

	var subject subjectPayload
	if err := json.Unmarshal(msg.After, &subject); err != nil {
		return nil, fmt.Errorf("decode detection subject: %w", err)
	}

	event.Attributes = Attributes{
		Label:  subject.Label,
		Weapon: subject.Attributes.Weapon || subject.Extras.Weapon,
		Mask:   subject.Attributes.Clothing.Mask,
		Hoodie: subject.Attributes.Clothing.Hoodie,
		Pose:   subject.Attributes.Pose,
	}

	return event, nil
}

// DecodeAudioResult parses an audio analysis result payload.
// An absent or unrecognised tone is treated as neutral, matching the
// audio service's own default.
func DecodeAudioResult(payload []byte) (*AudioResult, error) {
	var msg audioResultMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("decode audio result: %w", err)
	}

	tone := Tone(strings.ToLower(strings.TrimSpace(msg.Tone)))
	switch tone {
	case ToneNegative, ToneNeutral, ToneSilent, ToneUnknown:
	default:
		tone = ToneNeutral
	}

	return &AudioResult{
		ID:              msg.ID,
		Transcript:      msg.Transcript,
		Tone:            tone,
		MatchedKeywords: msg.MatchedKeywords,
		PromptPlayed:    msg.PromptPlayed,
		Timestamp:       msg.Timestamp,
	}, nil
}
