package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FollowOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "follow_operations_total",
			Help: "Total number of follow graph operations by type",
		},
		[]string{"operation"},
	)

	NotificationsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total number of notifications created by type",
		},
		[]string{"type"},
	)

	PostsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "posts_created_total",
			Help: "Total number of posts created",
		},
	)

	PostLikeTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_like_toggles_total",
			Help: "Total number of like toggles by direction",
		},
		[]string{"direction"},
	)

	CommentsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "comments_created_total",
			Help: "Total number of comments created",
		},
	)

	PostsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "posts_deleted_total",
			Help: "Total number of posts soft-deleted",
		},
	)

	FeedRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_requests_total",
			Help: "Total number of feed reads",
		},
	)

	MessagesStoredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "messages_stored_total",
			Help: "Total number of direct messages stored",
		},
	)

	ResetTokensCleanupDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reset_tokens_cleanup_deleted_total",
			Help: "Total number of expired reset tokens removed by the cleanup worker",
		},
	)
)
