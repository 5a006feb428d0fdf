package dispatch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/vigilz/homebase/internal/actuator"
	"github.com/vigilz/homebase/internal/bus"
	"github.com/vigilz/homebase/internal/domain/threat"
	"github.com/vigilz/homebase/internal/logger"
)

// Journal persists the latest alarm decision.
type Journal interface {
	Save(ctx context.Context, state *threat.AlarmState) error
}

// alertReason is the fixed reason string carried by every alert.
const alertReason = "Threat score exceeded threshold."

// alertMessage is the wire form of an alarm alert.
type alertMessage struct {
	AlertID           string          `json:"alert_id"`
	EventID           string          `json:"event_id"`
	FinalScore        float64         `json:"final_score"`
	Reason            string          `json:"reason"`
	Timestamp         float64         `json:"timestamp"`
	OriginalEventData json.RawMessage `json:"original_event_data"`
}

// Dispatcher turns an alarm verdict into an alert publish and a relay signal.
// The alert publish is the authoritative record of the decision; the relay
// is best-effort and its failures are only logged.
type Dispatcher struct {
	// publisher sends alerts to the alert topic.
	publisher bus.Publisher
	// relay asserts the physical alarm signal.
	relay actuator.Actuator
	// alertTopic is the fixed topic alerts are published to.
	alertTopic string
	// journal persists the latest alarm decision, may be nil.
	journal Journal
}

// New wires a dispatcher from its collaborators. A nil journal disables
// alarm state persistence.
func New(publisher bus.Publisher, relay actuator.Actuator, alertTopic string, journal Journal) *Dispatcher {
	return &Dispatcher{
		publisher:  publisher,
		relay:      relay,
		alertTopic: alertTopic,
		journal:    journal,
	}
}

// Dispatch publishes the alert and asserts the relay.
// Nothing here escalates: a failed publish is surfaced via logs and the
// relay stays best-effort, so the correlator remains available for the
// next message either way.
func (d *Dispatcher) Dispatch(ctx context.Context, eventID string, finalScore float64, originalData json.RawMessage) {
	logger.WarnKV(ctx, "ALARM TRIGGERED", "id", eventID, "score", finalScore)

	alert := alertMessage{
		AlertID:           uuid.NewString(),
		EventID:           eventID,
		FinalScore:        finalScore,
		Reason:            alertReason,
		Timestamp:         float64(time.Now().UnixNano()) / float64(time.Second),
		OriginalEventData: originalData,
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		logger.ErrorKV(ctx, "Failed to encode alert", "id", eventID, "error", err)
	} else if err := d.publisher.Publish(ctx, d.alertTopic, payload); err != nil {
		logger.ErrorKV(ctx, "Failed to publish alert", "id", eventID, "topic", d.alertTopic, "error", err)
	}

	if err := d.relay.SetAlarmState(ctx, true); err != nil {
		logger.ErrorKV(ctx, "Failed to assert alarm relay", "id", eventID, "error", err)
	}

	if d.journal == nil {
		return
	}

	journalState := &threat.AlarmState{
		Active:     true,
		AlertID:    alert.AlertID,
		EventID:    eventID,
		FinalScore: finalScore,
		Timestamp:  time.Now().UTC(),
	}
	if err := d.journal.Save(ctx, journalState); err != nil {
		logger.ErrorKV(ctx, "Failed to persist alarm state", "id", eventID, "error", err)
	}
}
