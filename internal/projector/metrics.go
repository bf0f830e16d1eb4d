package projector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slotscope_events_applied_total",
		Help: "Events applied to the entity store, by source kind and event",
	}, []string{"kind", "event"})

	eventsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slotscope_events_skipped_total",
		Help: "Events not applied, by reason and event",
	}, []string{"reason", "event"})

	sourcesDiscovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slotscope_sources_discovered_total",
		Help: "Contracts registered at runtime from discovery events, by kind",
	}, []string{"kind"})
)
