package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "kodipresence"

// Kodi polling metrics
var (
	// KodiFetchTotal counts completed fetches per endpoint ("info", "length") and status ("success", "failed").
	KodiFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kodi_fetch_total",
			Help:      "Total number of Kodi fetches, after retries.",
		},
		[]string{"endpoint", "status"},
	)

	// KodiFetchRetriesTotal counts individual failed attempts that triggered a backoff.
	KodiFetchRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kodi_fetch_retries_total",
			Help:      "Total number of failed Kodi fetch attempts.",
		},
		[]string{"endpoint"},
	)

	// PlayerReachable is 1 when the last Kodi poll succeeded.
	PlayerReachable = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "kodi_reachable",
			Help:      "Whether the last Kodi poll succeeded (1) or not (0).",
		},
	)
)

// Presence publishing metrics
var (
	// PublishTotal counts publisher calls per action ("update", "clear") and status ("success", "error", "skipped").
	PublishTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "presence_publish_total",
			Help:      "Total number of presence publish attempts.",
		},
		[]string{"action", "status"},
	)

	// ReconnectsTotal counts reconnects to the Discord client after a closed pipe.
	ReconnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "presence_reconnects_total",
			Help:      "Total number of reconnects to the Discord client.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		KodiFetchTotal,
		KodiFetchRetriesTotal,
		PlayerReachable,
		PublishTotal,
		ReconnectsTotal,
	)
}
