package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kalviumcommunity/mentorhub/backend/internal/authz"
	"github.com/kalviumcommunity/mentorhub/backend/internal/models"
	"github.com/kalviumcommunity/mentorhub/backend/pkg/response"
)

type FeedbackService struct {
	db *gorm.DB
}

func NewFeedbackService(db *gorm.DB) *FeedbackService {
	return &FeedbackService{db: db}
}

type SubmitFeedbackRequest struct {
	ToUserID uint   `json:"to_user_id" binding:"required"`
	Rating   int    `json:"rating" binding:"required"`
	Comment  string `json:"comment"`
}

// Submit inserts a feedback row. Self-feedback and out-of-range ratings are
// invalid input; both sender and recipient are independently checked for
// current membership.
func (s *FeedbackService) Submit(userID uint, role string, projectID uint, req *SubmitFeedbackRequest) (*models.PeerFeedback, error) {
	if req.ToUserID == userID {
		return nil, response.NewBadRequest("you cannot submit feedback about yourself")
	}
	if req.Rating < models.MinRating || req.Rating > models.MaxRating {
		return nil, response.NewBadRequest(fmt.Sprintf("rating must be between %d and %d", models.MinRating, models.MaxRating))
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, translateDBError(err)
	}

	var target models.User
	if err := s.db.First(&target, req.ToUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("recipient not found")
		}
		return nil, translateDBError(err)
	}

	// Both sides checked independently
	fromIsMember, err := isProjectMember(s.db, userID, projectID)
	if err != nil {
		return nil, translateDBError(err)
	}
	toIsMember, err := isProjectMember(s.db, req.ToUserID, projectID)
	if err != nil {
		return nil, translateDBError(err)
	}

	if d := authz.CanSubmitFeedback(role, fromIsMember, toIsMember); !d.Allowed {
		if d.InvalidRole || !fromIsMember {
			return nil, denyError(d)
		}
		// Recipient membership is a state precondition, not an access rule.
		return nil, response.NewConflict(d.Reason)
	}

	feedback := models.PeerFeedback{
		ProjectID:  projectID,
		FromUserID: userID,
		ToUserID:   req.ToUserID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := s.db.Create(&feedback).Error; err != nil {
		return nil, translateDBError(err)
	}

	RecordEngagement(userID, ActionFeedbackGiven, fmt.Sprintf("rated user %d in project %d", req.ToUserID, projectID))
	return &feedback, nil
}

// List returns the project's feedback visible to the caller. The owning
// mentor sees every row; a student member sees only rows they sent or
// received, never feedback between two other members.
func (s *FeedbackService) List(userID uint, role string, projectID uint) ([]models.PeerFeedback, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, translateDBError(err)
	}

	isMember, err := isProjectMember(s.db, userID, projectID)
	if err != nil {
		return nil, translateDBError(err)
	}

	if d := authz.CanListFeedback(role, userID, project.MentorID, isMember); !d.Allowed {
		return nil, denyError(d)
	}

	query := s.db.Where("project_id = ?", projectID)
	if role == models.RoleStudent {
		query = query.Where("from_user_id = ? OR to_user_id = ?", userID, userID)
	}

	var feedbacks []models.PeerFeedback
	if err := query.
		Preload("FromUser").
		Preload("ToUser").
		Order("created_at DESC").
		Find(&feedbacks).Error; err != nil {
		return nil, translateDBError(err)
	}

	return feedbacks, nil
}
