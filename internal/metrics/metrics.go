package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Evaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "evaluations_total", Help: "Evaluations by outcome"},
		[]string{"outcome"},
	)
	Signals = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_total", Help: "Signals emitted by successful evaluations"},
		[]string{"signal"},
	)
	SourceFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "source_fetch_total", Help: "Price source lookups by result"},
		[]string{"source", "result"},
	)
)

func init() {
	prometheus.MustRegister(Evaluations, Signals, SourceFetches)
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
