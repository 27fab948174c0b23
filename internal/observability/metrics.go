package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ModerationDecisions counts moderation transitions by decision.
	ModerationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_forum_moderation_decisions_total",
		Help: "Total number of moderation decisions by decision type",
	}, []string{"decision"})

	// LikeToggles counts like toggles by resulting action (like or unlike).
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_forum_like_toggles_total",
		Help: "Total number of like toggles by resulting action",
	}, []string{"action"})

	// FlagReports counts flag attempts by outcome.
	FlagReports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_forum_flag_reports_total",
		Help: "Total number of flag reports by outcome",
	}, []string{"outcome"})

	// CommentsCreated counts appended comments.
	CommentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_forum_comments_created_total",
		Help: "Total number of comments appended to posts",
	})

	// FeedCacheLookups counts approved-feed cache lookups by result (hit, miss,
	// or stale for a fill dropped after a concurrent invalidation).
	FeedCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_forum_feed_cache_lookups_total",
		Help: "Approved feed cache lookups by result",
	}, []string{"result"})

	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_forum_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})
)
