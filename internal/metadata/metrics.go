package metadata

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var callFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "slotscope_metadata_call_failures_total",
	Help: "Metadata reads that reverted or failed, by field",
}, []string{"field"})
