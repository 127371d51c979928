package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostsCreated counts successfully persisted posts.
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "xtagram_posts_created_total",
		Help: "Total number of posts created",
	})

	// PostsSkipped counts post submissions silently dropped, by reason
	// (empty, too_long).
	PostsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xtagram_posts_skipped_total",
		Help: "Total number of post submissions silently dropped",
	}, []string{"reason"})

	// LikesRecorded counts like increments.
	LikesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "xtagram_likes_total",
		Help: "Total number of like increments",
	})

	// NotificationsFanned counts notifications written during post fan-out.
	NotificationsFanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "xtagram_notifications_fanout_total",
		Help: "Total number of notifications created by post fan-out",
	})

	// RedisErrors counts Redis command failures by operation name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xtagram_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the Prometheus middleware for the given service name.
// The underlying collectors register with the default registry, so the
// instance is created once and shared.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware returns the handler that records request metrics.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
