package correlator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vigilz/homebase/internal/bus"
	"github.com/vigilz/homebase/internal/domain/threat"
	"github.com/vigilz/homebase/internal/logger"
	"github.com/vigilz/homebase/internal/metrics"
	"github.com/vigilz/homebase/internal/pending"
	"github.com/vigilz/homebase/internal/scoring"
)

// Dispatcher raises the alarm for an event. Implemented by dispatch.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, eventID string, finalScore float64, originalData json.RawMessage)
}

// Config holds the correlator thresholds, topics and queue sizing.
// All values are loaded once at startup and never change afterwards.
type Config struct {
	// AlarmThreshold is the score at or above which the alarm is raised.
	AlarmThreshold float64
	// InquiryThreshold is the score at or above which an audio inquiry
	// is requested.
	InquiryThreshold float64
	// InquiryTopicBase is the base topic for inquiry requests; the event
	// id is appended as the final segment.
	InquiryTopicBase string
	// PendingTTL is how long an event may wait for its audio verdict.
	PendingTTL time.Duration
	// Lanes is the number of serialisation lanes; zero picks the default.
	Lanes int
	// LaneDepth is the per-lane queue depth; zero picks the default.
	LaneDepth int
}

const (
	// defaultLanes spreads unrelated ids while keeping the pool small.
	defaultLanes = 4
	// defaultLaneDepth bounds the per-lane backlog.
	defaultLaneDepth = 64
)

// inquiryRequest is the wire form of an audio inquiry request.
type inquiryRequest struct {
	EventID      string  `json:"event_id"`
	CurrentScore float64 `json:"current_score"`
	Timestamp    float64 `json:"timestamp"`
}

// Correlator is the event-correlation state machine. It receives detection
// events and audio results, scores them, and decides between dropping the
// event, requesting an audio inquiry, and raising the alarm.
type Correlator struct {
	// cfg holds the immutable thresholds and topics.
	cfg Config
	// calc computes the initial threat score.
	calc *scoring.Calculator
	// adjuster folds audio results into a stored score.
	adjuster *scoring.Adjuster
	// store is the table of events awaiting an audio verdict.
	store *pending.Store
	// publisher sends inquiry requests.
	publisher bus.Publisher
	// dispatcher raises the alarm.
	dispatcher Dispatcher
	// lanes serialise processing per event id.
	lanes *lanePool
}

// New wires the correlator from its collaborators.
func New(
	cfg Config,
	calc *scoring.Calculator,
	adjuster *scoring.Adjuster,
	store *pending.Store,
	publisher bus.Publisher,
	dispatcher Dispatcher,
) *Correlator {
	if cfg.Lanes <= 0 {
		cfg.Lanes = defaultLanes
	}

	if cfg.LaneDepth <= 0 {
		cfg.LaneDepth = defaultLaneDepth
	}

	return &Correlator{
		cfg:        cfg,
		calc:       calc,
		adjuster:   adjuster,
		store:      store,
		publisher:  publisher,
		dispatcher: dispatcher,
		lanes:      newLanePool(cfg.Lanes, cfg.LaneDepth),
	}
}

// Start launches the serialisation lanes.
func (c *Correlator) Start(ctx context.Context) {
	c.lanes.start(ctx)
}

// Close stops accepting messages and drains queued work.
func (c *Correlator) Close() {
	c.lanes.close()
}

// OnDetectionMessage is the bus handler for detection events. It decodes and
// validates the payload, then hands processing to the event's lane.
func (c *Correlator) OnDetectionMessage(ctx context.Context, topic string, payload []byte) {
	event, err := threat.DecodeDetection(payload)
	if err != nil {
		logger.WarnKV(ctx, "Dropping undecodable detection event", "topic", topic, "error", err)
		metrics.DroppedMessagesTotal.WithLabelValues(metrics.ReasonMalformed).Inc()

		return
	}

	// Only new events and significant updates are scored; everything else
	// is upstream noise.
	if !event.Actionable() {
		logger.DebugKV(ctx, "Ignoring non-actionable detection event", "id", event.ID, "kind", event.Kind)

		return
	}

	if event.ID == "" {
		logger.Warn(ctx, "Detection event received without an id, skipping")
		metrics.DroppedMessagesTotal.WithLabelValues(metrics.ReasonMissingID).Inc()

		return
	}

	if !c.lanes.submit(event.ID, func(laneCtx context.Context) {
		c.handleDetection(laneCtx, event)
	}) {
		logger.WarnKV(ctx, "Detection event dropped, lane unavailable", "id", event.ID)
		metrics.DroppedMessagesTotal.WithLabelValues(metrics.ReasonBackpressure).Inc()
	}
}

// OnAudioMessage is the bus handler for audio results. It decodes and
// validates the payload, then hands processing to the event's lane.
func (c *Correlator) OnAudioMessage(ctx context.Context, topic string, payload []byte) {
	result, err := threat.DecodeAudioResult(payload)
	if err != nil {
		logger.WarnKV(ctx, "Dropping undecodable audio result", "topic", topic, "error", err)
		metrics.DroppedMessagesTotal.WithLabelValues(metrics.ReasonMalformed).Inc()

		return
	}

	if result.ID == "" {
		logger.Warn(ctx, "Audio result received without an event id, skipping")
		metrics.DroppedMessagesTotal.WithLabelValues(metrics.ReasonMissingID).Inc()

		return
	}

	if !c.lanes.submit(result.ID, func(laneCtx context.Context) {
		c.handleAudioResult(laneCtx, result)
	}) {
		logger.WarnKV(ctx, "Audio result dropped, lane unavailable", "id", result.ID)
		metrics.DroppedMessagesTotal.WithLabelValues(metrics.ReasonBackpressure).Inc()
	}
}

// handleDetection runs the detection transition of the state machine.
func (c *Correlator) handleDetection(ctx context.Context, event *threat.DetectionEvent) {
	c.sweepExpired(ctx)

	// A second detection for an id already awaiting its audio verdict is
	// duplicate upstream delivery: no rescoring, no overwrite.
	if _, found := c.store.Get(event.ID); found {
		logger.InfoKV(ctx, "Event already pending audio inquiry, ignoring", "id", event.ID)
		metrics.DroppedMessagesTotal.WithLabelValues(metrics.ReasonDuplicateInFlight).Inc()

		return
	}

	score := c.calc.Score(event.Attributes)
	logger.InfoKV(ctx, "Scored detection event", "id", event.ID, "score", score)

	switch {
	case score >= c.cfg.AlarmThreshold:
		// Immediate alarm: no audio step, no pending entry.
		metrics.DetectionsTotal.WithLabelValues(threat.VerdictAlarm.String()).Inc()
		c.dispatcher.Dispatch(ctx, event.ID, score, event.Raw)
	case score >= c.cfg.InquiryThreshold:
		metrics.DetectionsTotal.WithLabelValues(threat.VerdictInquiry.String()).Inc()
		c.requestInquiry(ctx, event, score)
	default:
		logger.InfoKV(ctx, "Score below inquiry threshold, no action", "id", event.ID, "score", score)
		metrics.DetectionsTotal.WithLabelValues(threat.VerdictDrop.String()).Inc()
	}
}

// requestInquiry publishes an inquiry request and records the pending entry.
// The entry is stored only after a successful publish: if the audio service
// never hears the request, a verdict would never arrive and the entry would
// just wait out its ttl.
func (c *Correlator) requestInquiry(ctx context.Context, event *threat.DetectionEvent, score float64) {
	now := time.Now()

	payload, err := json.Marshal(inquiryRequest{
		EventID:      event.ID,
		CurrentScore: score,
		Timestamp:    unixSeconds(now),
	})
	if err != nil {
		logger.ErrorKV(ctx, "Failed to encode inquiry request", "id", event.ID, "error", err)

		return
	}

	topic := bus.Join(c.cfg.InquiryTopicBase, event.ID)
	if err := c.publisher.Publish(ctx, topic, payload); err != nil {
		logger.ErrorKV(ctx, "Failed to publish inquiry request", "id", event.ID, "topic", topic, "error", err)

		return
	}

	logger.InfoKV(ctx, "Audio inquiry requested", "id", event.ID, "topic", topic, "score", score)

	err = c.store.Put(&pending.Entry{
		ID:          event.ID,
		Score:       score,
		CreatedAt:   now,
		InitialData: event.Raw,
	})
	if err != nil {
		// Per-id lanes make this unreachable, but the store defends itself.
		logger.ErrorKV(ctx, "Failed to store pending entry", "id", event.ID, "error", err)

		return
	}

	metrics.PendingEntries.Set(float64(c.store.Len()))
}

// handleAudioResult runs the audio transition of the state machine.
// The audio step is one-shot: the pending entry is removed regardless of
// the verdict.
func (c *Correlator) handleAudioResult(ctx context.Context, result *threat.AudioResult) {
	entry, found := c.store.Get(result.ID)
	if !found {
		// Unknown, already resolved, or expired. Also covers duplicate
		// delivery of an already-processed result.
		logger.WarnKV(ctx, "Audio result for unknown or timed-out event, ignoring", "id", result.ID)
		metrics.DroppedMessagesTotal.WithLabelValues(metrics.ReasonUnknownID).Inc()

		return
	}

	newScore := c.adjuster.Adjust(entry.Score, result)
	logger.InfoKV(ctx, "Rescored event after audio analysis",
		"id", result.ID, "base_score", entry.Score, "new_score", newScore, "tone", result.Tone)

	if newScore >= c.cfg.AlarmThreshold {
		metrics.AudioResultsTotal.WithLabelValues(threat.VerdictAlarm.String()).Inc()
		c.dispatcher.Dispatch(ctx, result.ID, newScore, entry.InitialData)
	} else {
		logger.InfoKV(ctx, "Score after audio below alarm threshold, no alarm", "id", result.ID, "score", newScore)
		metrics.AudioResultsTotal.WithLabelValues(threat.VerdictDrop.String()).Inc()
	}

	c.store.Delete(result.ID)
	metrics.PendingEntries.Set(float64(c.store.Len()))
}

// sweepExpired lazily removes pending entries past their ttl. Sweeping only
// happens here, before each detection event: with no detection traffic,
// stale entries outlive their deadline until the next event arrives.
func (c *Correlator) sweepExpired(ctx context.Context) {
	removed := c.store.SweepExpired(time.Now(), c.cfg.PendingTTL)
	if len(removed) == 0 {
		return
	}

	for _, id := range removed {
		logger.InfoKV(ctx, "Event timed out waiting for audio response, removed", "id", id)
	}

	metrics.ExpiredEntriesTotal.Add(float64(len(removed)))
	metrics.PendingEntries.Set(float64(c.store.Len()))
}

// unixSeconds renders a timestamp as fractional Unix seconds, the format
// the other Homebase services expect.
func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
