package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for values the codec drops on purpose. Every increment has a
// matching slog.Warn with the detail.
var (
	DroppedDateSets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "syncal_dropped_date_sets_total",
		Help: "Recurrence/exception date sets dropped during mapping",
	})
	DroppedAttendees = promauto.NewCounter(prometheus.CounterOpts{
		Name: "syncal_dropped_attendees_total",
		Help: "Attendees dropped during mapping",
	})
	DroppedProperties = promauto.NewCounter(prometheus.CounterOpts{
		Name: "syncal_dropped_properties_total",
		Help: "Unknown properties dropped during mapping",
	})
	DroppedExceptions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "syncal_dropped_exceptions_total",
		Help: "Exception events dropped during mapping",
	})
)
