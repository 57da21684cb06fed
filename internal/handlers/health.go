package handlers

import (
	"net/http"

	"merge2048/internal/session"
	"merge2048/internal/version"

	"github.com/gin-gonic/gin"
)

// Health reports liveness and the number of games in memory
func Health(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "healthy",
			"service":         "merge2048",
			"version":         version.String(),
			"active_sessions": sessions.Len(),
		})
	}
}
