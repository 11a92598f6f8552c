package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kalviumcommunity/mentorhub/backend/internal/middleware"
	"github.com/kalviumcommunity/mentorhub/backend/internal/services"
	"github.com/kalviumcommunity/mentorhub/backend/pkg/response"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(db *gorm.DB) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: services.NewAnalyticsService(db),
	}
}

// ProjectStats returns task, feedback, and activity rollups for a project
// GET /api/projects/:id/analytics
func (h *AnalyticsHandler) ProjectStats(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	stats, err := h.analyticsService.ProjectStats(middleware.GetUserID(c), middleware.GetRole(c), projectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
