package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kalviumcommunity/mentorhub/backend/internal/middleware"
	"github.com/kalviumcommunity/mentorhub/backend/internal/services"
	"github.com/kalviumcommunity/mentorhub/backend/pkg/response"
)

type EngagementHandler struct {
	engagementService *services.EngagementLogService
}

func NewEngagementHandler(db *gorm.DB) *EngagementHandler {
	return &EngagementHandler{
		engagementService: services.NewEngagementLogService(db),
	}
}

// List returns paginated engagement-log entries for members of the caller's
// own projects, mentor only
// GET /api/engagement-logs
func (h *EngagementHandler) List(c *gin.Context) {
	var req services.EngagementLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if req.ActionType != "" && !services.IsValidActionType(req.ActionType) {
		response.BadRequest(c, "unknown action type")
		return
	}

	resp, err := h.engagementService.List(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}
