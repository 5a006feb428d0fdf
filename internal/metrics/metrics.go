package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//nolint:gochecknoglobals // Prometheus instruments are registered once per process.
var (
	// DetectionsTotal counts processed detection events by verdict.
	DetectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homebase_detections_total",
		Help: "Detection events processed, partitioned by verdict.",
	}, []string{"verdict"})

	// AudioResultsTotal counts processed audio results by verdict.
	AudioResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homebase_audio_results_total",
		Help: "Audio challenge results processed, partitioned by verdict.",
	}, []string{"verdict"})

	// DroppedMessagesTotal counts inbound messages dropped before scoring.
	DroppedMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homebase_dropped_messages_total",
		Help: "Inbound messages dropped without a state change, partitioned by reason.",
	}, []string{"reason"})

	// ExpiredEntriesTotal counts pending entries removed by the expiry sweep.
	ExpiredEntriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "homebase_expired_pending_total",
		Help: "Pending entries removed because no audio result arrived in time.",
	})

	// PendingEntries tracks the current size of the correlation table.
	PendingEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "homebase_pending_entries",
		Help: "Events currently awaiting an audio verdict.",
	})
)

// Drop reasons used with DroppedMessagesTotal.
const (
	ReasonMalformed         = "malformed"
	ReasonMissingID         = "missing_id"
	ReasonDuplicateInFlight = "duplicate_in_flight"
	ReasonUnknownID         = "unknown_id"
	ReasonBackpressure      = "backpressure"
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
