package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crewbook/services/cache"
	"crewbook/utils"
)

// HealthHandler reports the last dependency check and cache tier usage.
func HealthHandler(monitor *utils.HealthMonitor, store *cache.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := monitor.Status()
		healthy := true
		for _, up := range status.Services {
			healthy = healthy && up
		}

		state := "ok"
		if !healthy {
			// the local cache tier and in-process bus keep serving
			state = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    state,
			"services":  status.Services,
			"checkedAt": status.CheckedAt,
			"cache":     store.Stats(),
		})
	}
}
