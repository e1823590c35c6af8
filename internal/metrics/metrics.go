package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// API metrics
var (
	// APIRequestsTotal counts API requests.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procurement_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	// APIRequestDuration observes API latency in seconds.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "procurement_api_request_duration_seconds",
			Help:    "API request latency distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Approval engine metrics
var (
	// ApprovalPendingGauge tracks steps currently awaiting a decision.
	// Recomputed as a snapshot by each overtime scan rather than mutated
	// per transition, so it self-corrects after restarts.
	ApprovalPendingGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "procurement_approval_steps_pending",
			Help: "Number of approval steps awaiting a decision",
		},
	)

	// ApprovalDecisionsTotal counts step decisions by outcome and origin.
	// origin is "manual" for human actors and "system" for the overtime
	// resolver.
	ApprovalDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procurement_approval_decisions_total",
			Help: "Total number of approval step decisions",
		},
		[]string{"outcome", "origin"},
	)

	// ApprovalOvertimeTotal counts overtime resolutions by action taken.
	ApprovalOvertimeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procurement_approval_overtime_total",
			Help: "Total number of overtime resolutions",
		},
		[]string{"action"},
	)

	// DocumentsSubmittedTotal counts documents entering the approval flow.
	DocumentsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procurement_documents_submitted_total",
			Help: "Total number of documents submitted for approval",
		},
		[]string{"document_type"},
	)
)
