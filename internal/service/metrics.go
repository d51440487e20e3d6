package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aufwind_point_bookings_total",
		Help: "Point transactions booked.",
	})

	periodsRolledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aufwind_periods_rolled_total",
		Help: "Billing periods closed by the roll engine.",
	})
)
