package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	writeConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "org_write_conflicts_total",
		Help: "Writes rejected by integrity checks or store constraints, by kind.",
	}, []string{"kind"})

	requestNumberCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "org_request_number_collisions_total",
		Help: "Request number candidates discarded because they already existed.",
	})

	workflowTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "org_change_request_transitions_total",
		Help: "Change request status transitions, by target status.",
	}, []string{"to"})

	notificationRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "org_notifications_recorded_total",
		Help: "Admin notification records handed to the sink, by outcome.",
	}, []string{"outcome"})
)

func recordWriteConflict(kind string)   { writeConflicts.WithLabelValues(kind).Inc() }
func recordNumberCollision()            { requestNumberCollisions.Inc() }
func recordTransition(to string)        { workflowTransitions.WithLabelValues(to).Inc() }
func recordNotification(outcome string) { notificationRecords.WithLabelValues(outcome).Inc() }
