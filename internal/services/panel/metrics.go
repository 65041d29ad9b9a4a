package panel

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	modeForeground = "foreground"
	modeBackground = "background"

	resultOK    = "ok"
	resultError = "error"
)

var (
	refreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panel_refresh_total",
			Help: "Refresh cycles partitioned by mode and result",
		},
		[]string{"mode", "result"},
	)

	refreshDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "panel_refresh_duration_seconds",
			Help:    "Duration of refresh cycles in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	liveControllers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "panel_live_controllers",
			Help: "Number of synchronization controllers currently held by sessions",
		},
	)

	writeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panel_writes_total",
			Help: "Writes to the remote store partitioned by record kind, operation and result",
		},
		[]string{"source", "op", "result"},
	)
)

func modeLabel(background bool) string {
	if background {
		return modeBackground
	}
	return modeForeground
}
