package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type StatsProvider interface {
	GetStats() map[string]int
}

func HealthCheck(db *gorm.DB, feed StatsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Mặc định trạng thái OK
		response := gin.H{
			"status":    "ok",
			"message":   "Service is healthy",
			"timestamp": time.Now().Unix(),
			"db":        "ok",
		}
		if feed != nil {
			response["websocket"] = gin.H{"enabled": true, "stats": feed.GetStats()}
		}

		if db == nil {
			response["db"] = "error: database not configured"
			response["status"] = "degraded"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}

		// Thử ping database
		sqlDB, err := db.DB()
		if err != nil {
			response["db"] = "error: cannot get DB instance"
			response["status"] = "degraded"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			response["db"] = "error: cannot connect to DB"
			response["status"] = "degraded"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}

		c.JSON(http.StatusOK, response)
	}
}
