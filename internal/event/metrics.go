package event

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	events      *prometheus.CounterVec
	dropped     *prometheus.CounterVec
	subscribers *prometheus.GaugeVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "titledeed_events_published_total",
			Help: "Events delivered to subscribers, by type.",
		}, []string{"type"}),
		dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "titledeed_events_dropped_total",
			Help: "Events dropped because a queue was full.",
		}, []string{"type", "queue"}),
		subscribers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "titledeed_event_subscribers",
			Help: "Active subscribers, by type.",
		}, []string{"type"}),
	}
}
