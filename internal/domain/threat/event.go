package threat

import (
	"encoding/json"
	"time"
)

// EventKind classifies a detection event within its upstream lifecycle.
type EventKind string

const (
	// KindNew marks the first event for a tracked subject.
	KindNew EventKind = "new"
	// KindUpdate marks a follow-up event for an already tracked subject.
	KindUpdate EventKind = "update"
	// KindEnd marks the end of tracking for a subject.
	KindEnd EventKind = "end"
)

// Attributes is the scored view of a detection payload.
// Missing attributes are zero values and contribute nothing to the score.
type Attributes struct {
	// Label is the detected object class, e.g. "person".
	Label string
	// Weapon indicates a weapon was detected alongside the subject.
	Weapon bool
	// Mask indicates the subject appears to wear a mask.
	Mask bool
	// Hoodie indicates the subject appears to wear a hoodie.
	Hoodie bool
	// Pose is the detected body pose label, e.g. "crouch".
	Pose string
}

// DetectionEvent is a sensor-originated record describing a subject.
type DetectionEvent struct {
	// ID is the externally assigned event identifier.
	ID string
	// Kind is the lifecycle stage of the event.
	Kind EventKind
	// SignificantChange marks an update event worth rescoring.
	SignificantChange bool
	// Attributes is the parsed view used for scoring.
	Attributes Attributes
	// Raw is the original subject payload, kept verbatim so alerts can
	// replay exactly what the detector reported.
	Raw json.RawMessage
}

// Actionable reports whether the event should be scored: only new events
// and updates flagged as significant are processed.
func (e *DetectionEvent) Actionable() bool {
	return e.Kind == KindNew || (e.Kind == KindUpdate && e.SignificantChange)
}

// Tone classifies the vocal tone of an audio reply.
type Tone string

const (
	// ToneNegative marks a hostile or distressed reply.
	ToneNegative Tone = "negative"
	// ToneNeutral marks a reply with no notable tone.
	ToneNeutral Tone = "neutral"
	// ToneSilent marks a reply with no speech at all.
	ToneSilent Tone = "silent"
	// ToneUnknown marks a reply the audio service could not classify.
	ToneUnknown Tone = "unknown"
)

// AudioResult is the outcome of a supplementary voice challenge.
type AudioResult struct {
	// ID matches the detection event the challenge was issued for.
	ID string
	// Transcript is the transcribed reply, possibly empty.
	Transcript string
	// Tone is the classified vocal tone.
	Tone Tone
	// MatchedKeywords are the keywords the audio service recognised.
	MatchedKeywords []string
	// PromptPlayed names the audio prompt the service played.
	PromptPlayed string
	// Timestamp is the Unix time the result was produced.
	Timestamp float64
}

// Verdict is the correlator's decision for an event.
type Verdict int

const (
	// VerdictDrop means the event needs no further action.
	VerdictDrop Verdict = iota
	// VerdictInquiry means a supplementary audio challenge is requested.
	VerdictInquiry
	// VerdictAlarm means the alarm is raised.
	VerdictAlarm
)

// AlarmState records the most recent alarm decision. It is persisted so a
// scorer restart does not silently release an asserted relay.
type AlarmState struct {
	// Active reports whether the alarm relay is asserted.
	Active bool `json:"active"`
	// AlertID is the identifier of the alert that raised the alarm.
	AlertID string `json:"alert_id"`
	// EventID is the detection event the alarm was raised for.
	EventID string `json:"event_id"`
	// FinalScore is the threat score that crossed the alarm threshold.
	FinalScore float64 `json:"final_score"`
	// Timestamp is when the alarm was raised.
	Timestamp time.Time `json:"timestamp"`
}

// String returns the lowercase verdict name.
func (v Verdict) String() string {
	switch v {
	case VerdictDrop:
		return "drop"
	case VerdictInquiry:
		return "inquiry"
	case VerdictAlarm:
		return "alarm"
	default:
		return "unknown"
	}
}
