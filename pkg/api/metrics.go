package api

import "github.com/prometheus/client_golang/prometheus"

const (
	resultOK       = "ok"
	resultTooLarge = "too_large"
	resultError    = "error"
)

var publishedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "lyricgetter",
		Subsystem: "api",
		Name:      "published_total",
		Help:      "Lyric events handed to the channel transport",
	},
	[]string{"type", "result"},
)

func init() {
	prometheus.MustRegister(publishedTotal)
}
