package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "maze_attempts_recorded_total",
		Help: "Completed runs committed to the attempt ledger, by level.",
	}, []string{"level"})

	submitFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "maze_submit_failures_total",
		Help: "Result submissions rolled back because of a storage error.",
	})

	achievementsGranted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "maze_achievements_granted_total",
		Help: "New achievement grants, by code.",
	}, []string{"code"})

	levelAdvances = promauto.NewCounter(prometheus.CounterOpts{
		Name: "maze_level_advances_total",
		Help: "Calls to advance a player's unlocked level.",
	})

	gateDenials = promauto.NewCounter(prometheus.CounterOpts{
		Name: "maze_level_gate_denials_total",
		Help: "Level entries refused because the level is still locked.",
	})
)
