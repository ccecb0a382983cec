package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests by route and status class.",
	}, []string{"route", "status"})

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "End-to-end handler duration.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"route"})

	SessionsRecordedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "focus_sessions_recorded_total",
		Help: "Completed focus sessions persisted.",
	})

	MilestonesReachedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "milestones_reached_total",
		Help: "Milestones awarded across all users.",
	})

	TrialRejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trial_rejections_total",
		Help: "Anonymous sessions rejected by the trial gate, by reason.",
	}, []string{"reason"})

	GenerationsEnqueuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "generations_enqueued_total",
		Help: "Custom hourglass generation requests queued.",
	})

	GenerationsProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "generations_processed_total",
		Help: "Generation requests finished by the worker, by outcome.",
	}, []string{"outcome"})

	GenerationDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "generation_duration_seconds",
		Help:    "Wall time of one provider generation including archival.",
		Buckets: []float64{1, 2.5, 5, 10, 20, 40, 60, 120},
	})

	RoomMembersSwept = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "room_members_swept_total",
		Help: "Stale room presences removed by the sweeper.",
	})
)

func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		SessionsRecordedTotal,
		MilestonesReachedTotal,
		TrialRejectionsTotal,
		GenerationsEnqueuedTotal,
		GenerationsProcessedTotal,
		GenerationDurationSeconds,
		RoomMembersSwept,
	)
}
