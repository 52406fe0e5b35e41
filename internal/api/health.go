package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"provider-directory/internal/common/database"
)

const readinessTimeout = 2 * time.Second

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ready pings every backing service; any failure makes the instance
// not ready.
func ready(deps []database.Dependency) gin.HandlerFunc {
	return func(c *gin.Context) {
		statuses, healthy := database.CheckAll(c.Request.Context(), readinessTimeout, deps...)

		status, code := "ready", http.StatusOK
		if !healthy {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":       status,
			"dependencies": statuses,
			"time":         time.Now().UTC().Format(time.RFC3339),
		})
	}
}
