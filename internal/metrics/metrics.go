package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "amrap_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "amrap_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	MembershipChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "amrap_membership_changes_total",
			Help: "Membership add/remove attempts by outcome",
		},
		[]string{"action", "result"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "amrap_notifications_total",
			Help: "Total number of membership notification emails",
		},
		[]string{"type", "status"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "amrap_notification_queue_length",
			Help: "Current length of the notification queue",
		},
	)

	StoreRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "amrap_store_client_request_duration_seconds",
			Help:    "Record Store client request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "outcome"},
	)

	SnapshotLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "amrap_snapshot_loads_total",
			Help: "Membership snapshot loads by result",
		},
		[]string{"result"},
	)

	LostMembershipsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "amrap_lost_memberships_total",
			Help: "Moves where the source membership was removed but the destination add failed",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordMembershipChange counts one add or remove. result is "ok" or the
// rejection reason.
func RecordMembershipChange(action, result string) {
	MembershipChangesTotal.WithLabelValues(action, result).Inc()
}

func RecordNotification(notificationType, status string) {
	NotificationsTotal.WithLabelValues(notificationType, status).Inc()
}

func RecordStoreRequest(operation, outcome string, duration float64) {
	StoreRequestDuration.WithLabelValues(operation, outcome).Observe(duration)
}

func RecordSnapshotLoad(result string) {
	SnapshotLoadsTotal.WithLabelValues(result).Inc()
}

func RecordLostMembership() {
	LostMembershipsTotal.Inc()
}
