package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/kalviumcommunity/mentorhub/backend/internal/models"
	"github.com/kalviumcommunity/mentorhub/backend/internal/services"
)

// HealthHandler reports the health of the service and its subsystems.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the health status of all subsystems.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	queue := services.GetActivityQueue()
	queueMode := "sync"
	if queue != nil && queue.IsAsync() {
		queueMode = "async (Redis)"
	}

	var logCount int64
	models.GetDB().Model(&models.EngagementLog{}).Count(&logCount)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "mentorhub",
		"components": gin.H{
			"database":        dbStatus,
			"queue_mode":      queueMode,
			"engagement_logs": logCount,
		},
	})
}
