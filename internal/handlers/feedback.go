package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kalviumcommunity/mentorhub/backend/internal/middleware"
	"github.com/kalviumcommunity/mentorhub/backend/internal/services"
	"github.com/kalviumcommunity/mentorhub/backend/pkg/response"
)

type FeedbackHandler struct {
	feedbackService *services.FeedbackService
}

func NewFeedbackHandler(db *gorm.DB) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: services.NewFeedbackService(db),
	}
}

// List returns a project's feedback visible to the caller
// GET /api/projects/:id/feedback
func (h *FeedbackHandler) List(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	feedback, err := h.feedbackService.List(middleware.GetUserID(c), middleware.GetRole(c), projectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, feedback)
}

// Submit records feedback from the caller to another member
// POST /api/projects/:id/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	feedback, err := h.feedbackService.Submit(middleware.GetUserID(c), middleware.GetRole(c), projectID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, feedback)
}
