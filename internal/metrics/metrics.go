package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	LabelOutcome    = "outcome"
	LabelResolution = "resolution"
	LabelMethod     = "method"
	LabelRoute      = "route"
	LabelStatus     = "status"
)

// Share payload metrics
var (
	PayloadEncodes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrappymart_payload_encodes_total",
			Help: "Share payload encodes by outcome (ok, empty, missing_list)",
		},
		[]string{LabelOutcome},
	)

	IntakeOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrappymart_intake_total",
			Help: "Inbound share links by outcome (imported, pending, ignored, rejected)",
		},
		[]string{LabelOutcome},
	)

	PendingResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrappymart_pending_import_resolutions_total",
			Help: "Pending import resolutions (overwrite, new, cancel)",
		},
		[]string{LabelResolution},
	)
)

// Storage and preset metrics
var (
	PersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scrappymart_persist_failures_total",
			Help: "State writes that failed and were absorbed",
		},
	)

	PresetFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrappymart_preset_fetches_total",
			Help: "Preset catalog requests by outcome (hit, ok, error)",
		},
		[]string{LabelOutcome},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrappymart_http_requests_total",
			Help: "HTTP requests by method, route pattern and status",
		},
		[]string{LabelMethod, LabelRoute, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scrappymart_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{LabelMethod, LabelRoute},
	)
)

// Live update metrics
var (
	WSClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scrappymart_ws_clients",
			Help: "Connected live-update clients",
		},
	)

	WSDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scrappymart_ws_dropped_messages_total",
			Help: "Broadcasts dropped because a client buffer was full",
		},
	)
)
