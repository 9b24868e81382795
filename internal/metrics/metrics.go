package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gateway-level counters and gauges, registered on the default registry and
// served by the /metrics route.
var (
	FetchCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "windhager_fetch_cycles_total",
		Help: "Completed fetch cycles against the device.",
	})
	FetchDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "windhager_fetch_duration_seconds",
		Help: "Duration of the most recent fetch cycle.",
	})
	AbsentOIDs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "windhager_absent_oids",
		Help: "OIDs that degraded to absent in the most recent snapshot.",
	})
	WriteCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "windhager_write_commands_total",
		Help: "Write commands issued to the device, by result.",
	}, []string{"result"})
)
