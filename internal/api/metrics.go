package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scorecard_sessions_created_total",
		Help: "Scorecard sessions created, by input format.",
	}, []string{"format"})

	loadFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scorecard_load_failures_total",
		Help: "Scorecard uploads that could not be loaded, by reason.",
	}, []string{"reason"})

	itemEdits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scorecard_item_edits_total",
		Help: "Accepted item edits, by edited field.",
	}, []string{"field"})

	exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scorecard_exports_total",
		Help: "CSV exports served, by kind.",
	}, []string{"kind"})

	aggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scorecard_aggregation_duration_seconds",
		Help:    "Time spent re-aggregating a session.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})
)
