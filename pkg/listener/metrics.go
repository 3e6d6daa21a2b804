package listener

import "github.com/prometheus/client_golang/prometheus"

// Drop reasons.
const (
	reasonEmpty  = "empty"
	reasonDecode = "decode"
	reasonPanic  = "panic"
)

var (
	dispatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lyricgetter",
			Subsystem: "listener",
			Name:      "dispatched_total",
			Help:      "Lyric events decoded and dispatched to a listener",
		},
		[]string{"type"},
	)

	droppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lyricgetter",
			Subsystem: "listener",
			Name:      "dropped_total",
			Help:      "Broadcasts dropped before or during dispatch",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(dispatchedTotal, droppedTotal)
}
