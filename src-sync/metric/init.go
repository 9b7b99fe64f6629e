package metric

import (
	"log/slog"
	"time"

	"syncal/src-sync/utils"

	"github.com/prometheus/client_golang/prometheus"
)

// newGauge creates and registers a gauge, tolerating a restart that left
// the collector registered.
func newGauge(name, help string) prometheus.Gauge {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	if err := prometheus.Register(gauge); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			slog.Error("can't register "+name+" metric", "error", err)
			return gauge
		}
	}
	slog.Debug(name + " metric registered")
	gauge.Set(0)
	return gauge
}

func unregisterGauge(gauge prometheus.Gauge, name string) {
	switch prometheus.Unregister(gauge) {
	case true:
		slog.Debug(name + " metric unregistered")
	case false:
		slog.Warn(name + " metric not registered")
	}
}

// latencyGauge mirrors a latency channel into a gauge. The gauge is
// cleared again after a quiet interval and unregistered on graceful
// shutdown.
func latencyGauge(as *utils.AppState, name, help string, source <-chan float64, clearInterval time.Duration) {
	gauge := newGauge(name, help)
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		clearTicker := time.NewTicker(clearInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				unregisterGauge(gauge, name)
				return
			case latency := <-source:
				gauge.Set(latency)
				clearTicker.Reset(clearInterval)
			case <-clearTicker.C:
				gauge.Set(0)
			}
		}
	}()
}

// polledGauge samples a probe on every tick until graceful shutdown.
func polledGauge(as *utils.AppState, name, help string, probe func() (float64, error), interval time.Duration) {
	gauge := newGauge(name, help)
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				unregisterGauge(gauge, name)
				return
			case <-ticker.C:
				value, err := probe()
				if err != nil {
					slog.Error("can't collect "+name+" metric", "error", err)
					continue
				}
				gauge.Set(value)
			}
		}
	}()
}

func Init(as *utils.AppState) {
	tickerInterval := as.Config.GetMetricCollectionInterval()
	clearTickerInterval := as.Config.GetMetricCollectionInterval() * 2

	polledGauge(as,
		"syncal_database_empty_read_microsec",
		"The latency of an empty database read in microseconds",
		func() (float64, error) {
			latency, err := database(as)
			if err != nil {
				return 0, err
			}
			return float64(latency.Microseconds()), nil
		},
		tickerInterval)
	latencyGauge(as,
		"syncal_database_read_microsec",
		"The latency of a database read in microseconds",
		as.MetricChans.DatabaseRead,
		clearTickerInterval)
	latencyGauge(as,
		"syncal_database_write_microsec",
		"The latency of a database write in microseconds",
		as.MetricChans.DatabaseWrite,
		clearTickerInterval)
}
