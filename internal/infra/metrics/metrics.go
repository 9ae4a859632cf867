// Package metrics provides Prometheus metrics for EcoPlus.
// Counters and histograms for engagement (badges, activity, quizzes),
// HTTP traffic, and the real-time hub.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Engagement ─────────────────────────────────────────────────────────────

// BadgesAwarded counts badges granted, by badge name.
var BadgesAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ecoplus",
	Name:      "badges_awarded_total",
	Help:      "Total badges awarded.",
}, []string{"badge"})

// BadgeEvaluationFailures counts evaluations absorbed because of store errors.
var BadgeEvaluationFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ecoplus",
	Name:      "badge_evaluation_failures_total",
	Help:      "Badge evaluations that failed and returned no badges.",
})

// ActivityPings counts activity heartbeats.
var ActivityPings = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ecoplus",
	Name:      "activity_pings_total",
	Help:      "Total activity log pings.",
})

// QuizAnswers counts verified quiz answers by outcome.
var QuizAnswers = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ecoplus",
	Name:      "quiz_answers_total",
	Help:      "Total quiz answers verified.",
}, []string{"correct"})

// JourneysLogged counts logged journeys by transport type.
var JourneysLogged = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ecoplus",
	Name:      "journeys_logged_total",
	Help:      "Total journeys logged.",
}, []string{"transport"})

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPRequestDuration tracks request latency by route pattern and status.
var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "ecoplus",
	Name:      "http_request_duration_seconds",
	Help:      "HTTP request duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route", "status"})

// ─── Real-time ──────────────────────────────────────────────────────────────

// RealtimeClients tracks connected websocket clients.
var RealtimeClients = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "ecoplus",
	Name:      "realtime_clients",
	Help:      "Number of connected websocket clients.",
})

// RealtimeDropped counts messages dropped for slow clients.
var RealtimeDropped = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ecoplus",
	Name:      "realtime_dropped_total",
	Help:      "Messages dropped because a client's send buffer was full.",
})
