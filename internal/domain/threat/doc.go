// Package threat defines the domain model of the scorer: detection events,
// audio challenge results, verdicts and the wire decoding for both inbound
// message kinds.
package threat
