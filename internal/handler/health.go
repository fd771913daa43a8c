package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity; never exposes credentials or internals.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		// Audit records stuck past their retry budget need a human; surface
		// the backlog where monitoring already looks.
		var dlqDepth int64
		if redisStatus == "connected" {
			dlqDepth, _ = worker.DLQLength(ctx, rdb, worker.QueueRelog)
		}

		c.JSON(status, gin.H{
			"status":    map[bool]string{true: "ok", false: "degraded"}[status == http.StatusOK],
			"db":        dbStatus,
			"redis":     redisStatus,
			"relog_dlq": dlqDepth,
		})
	}
}
