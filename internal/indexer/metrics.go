package indexer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var lastBlock = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "slotscope_indexer_last_block",
	Help: "Last block fully applied by the chain follower.",
})
