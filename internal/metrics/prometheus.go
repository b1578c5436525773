package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClaimsTotal counts claim attempts by outcome (won, conflict, not_found, error).
	ClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_claims_total",
			Help: "Total number of job claim attempts",
		},
		[]string{"result"},
	)

	// JobsCreated counts jobs entering the Requested state.
	JobsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_jobs_created_total",
			Help: "Total number of jobs created",
		},
	)

	// HubSubscribers tracks the number of live event stream subscribers.
	HubSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatch_hub_subscribers",
			Help: "Number of currently connected event subscribers",
		},
	)

	// HubEventsTotal counts events fanned out locally by type.
	HubEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_hub_events_total",
			Help: "Total number of events delivered through the hub",
		},
		[]string{"type"},
	)

	// HubEvictions counts subscribers dropped because their queue was full.
	HubEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_hub_evictions_total",
			Help: "Total number of slow subscribers evicted from the hub",
		},
	)

	// RelayMessages counts relay traffic by direction (out, in) and result.
	RelayMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_relay_messages_total",
			Help: "Total number of events relayed through the message broker",
		},
		[]string{"direction", "result"},
	)

	// ProvidersOnline is refreshed by housekeeping.
	ProvidersOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatch_providers_online",
			Help: "Number of providers currently online",
		},
	)

	// PaymentTasksTotal counts simulated payment confirmations by outcome.
	PaymentTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_payment_tasks_total",
			Help: "Total number of scheduled payment confirmations",
		},
		[]string{"status"},
	)

	// WorkersActive tracks the number of currently busy pool workers.
	WorkersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatch_workers_active",
			Help: "Number of currently active worker goroutines",
		},
	)

	// HTTPRequestsTotal counts handled requests by route template, method and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"path", "method", "code"},
	)
)
