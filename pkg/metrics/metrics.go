package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	registerOnce sync.Once

	ConfigMapCreates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: "security_scan_config",
			Name:      "creates_total",
			Help:      "Default security scan config maps created, by result",
		},
		[]string{"cluster", "result"},
	)

	ConfigMapSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: "security_scan_config",
			Name:      "saves_total",
			Help:      "Security scan config map updates, by result",
		},
		[]string{"cluster", "result"},
	)

	ValidationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: "security_scan_config",
			Name:      "validation_failures_total",
			Help:      "Security scan configs rejected by validation",
		},
		[]string{"cluster"},
	)

	ScanLaunches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: "security_scan",
			Name:      "launches_total",
			Help:      "Security scan launch attempts, by result",
		},
		[]string{"cluster", "result"},
	)
)

// Register adds the collectors to r. It is safe to call more than once.
func Register(r prometheus.Registerer) {
	registerOnce.Do(func() {
		r.MustRegister(ConfigMapCreates, ConfigMapSaves, ValidationFailures, ScanLaunches)
	})
}

func Result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
