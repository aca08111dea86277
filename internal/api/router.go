package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/blog-comment-moderation/internal/service"
)

// HealthChecker reports whether a backing dependency is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewRouter creates and configures the Gin router. db may be nil.
func NewRouter(services *service.Services, db HealthChecker, log zerolog.Logger) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(requestIDMiddleware())
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(metricsMiddleware())
	router.Use(corsMiddleware())

	// Handlers
	commentHandler := NewCommentHandler(services, log)
	moderationHandler := NewModerationHandler(services, log)
	reactionHandler := NewReactionHandler(services, log)
	adminHandler := NewAdminHandler(services, log)

	// Health check and metrics
	router.GET("/health", healthCheck(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1
	v1 := router.Group("/v1")
	v1.Use(viewerMiddleware(services.Comment, log))
	{
		posts := v1.Group("/posts/:post_id")
		{
			posts.GET("/comments", commentHandler.List)
			posts.POST("/comments", commentHandler.Create)
		}

		comments := v1.Group("/comments")
		{
			comments.GET("/recent", commentHandler.Recent)
			comments.GET("/popular", commentHandler.Popular)
			comments.PATCH("/:comment_id", commentHandler.Edit)
			comments.DELETE("/:comment_id", commentHandler.Delete)
			comments.POST("/:comment_id/moderation", moderationHandler.Transition)
			comments.POST("/:comment_id/approve", moderationHandler.Approve)
			comments.POST("/:comment_id/reject", moderationHandler.Reject)
			comments.GET("/:comment_id/reactions", reactionHandler.Summary)
			comments.PUT("/:comment_id/reactions", reactionHandler.React)
			comments.DELETE("/:comment_id/reactions", reactionHandler.Remove)
		}

		mod := v1.Group("/moderation")
		{
			mod.GET("/queue", moderationHandler.Queue)
			mod.GET("/pending-count", moderationHandler.PendingCount)
			mod.GET("/stats", moderationHandler.Stats)
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/comments", adminHandler.List)
			admin.GET("/comments/export", adminHandler.Export)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(db HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "blog-comment-moderation",
		}

		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.HealthCheck(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "unhealthy"
				body["database"] = err.Error()
			}
		}

		c.JSON(status, body)
	}
}
