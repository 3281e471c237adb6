package overlay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decodeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taxava",
		Subsystem: "overlay",
		Name:      "decode_failures_total",
		Help:      "Stored overlay documents or records that failed to decode and were discarded.",
	}, []string{"key", "reason"})

	schemaDrift = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taxava",
		Subsystem: "overlay",
		Name:      "schema_drift_total",
		Help:      "Stored records missing fields of the current schema.",
	}, []string{"key"})

	casConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taxava",
		Subsystem: "overlay",
		Name:      "cas_conflicts_total",
		Help:      "Compare-and-swap writes that lost to a concurrent writer and were retried.",
	}, []string{"key"})
)
