package tracker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registeredHabits = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "habits_registered_total",
			Help: "Number of habits currently in the registry",
		},
	)

	ledgerDays = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "habits_ledger_days",
			Help: "Number of dates with a day record",
		},
	)

	habitToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habits_toggles_total",
			Help: "Habit toggles by resulting state",
		},
		[]string{"state"},
	)

	persistWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habits_persist_writes_total",
			Help: "Storage writes by namespace and result",
		},
		[]string{"namespace", "result"},
	)
)
