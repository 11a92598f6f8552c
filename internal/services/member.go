package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kalviumcommunity/mentorhub/backend/internal/authz"
	"github.com/kalviumcommunity/mentorhub/backend/internal/models"
	"github.com/kalviumcommunity/mentorhub/backend/pkg/response"
)

type MemberService struct {
	db *gorm.DB
}

func NewMemberService(db *gorm.DB) *MemberService {
	return &MemberService{db: db}
}

type AddMemberRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// Add inserts a membership row. Owning mentor only; the target user must
// exist and must not already be a member.
func (s *MemberService) Add(userID uint, role string, projectID uint, req *AddMemberRequest) (*models.ProjectMember, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, translateDBError(err)
	}

	if d := authz.CanManageProject(role, userID, project.MentorID); !d.Allowed {
		return nil, denyError(d)
	}

	var target models.User
	if err := s.db.First(&target, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, translateDBError(err)
	}

	var existing int64
	if err := s.db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, req.UserID).
		Count(&existing).Error; err != nil {
		return nil, translateDBError(err)
	}
	if existing > 0 {
		return nil, response.NewConflict("user is already a member of this project")
	}

	member := models.ProjectMember{
		ProjectID: projectID,
		UserID:    req.UserID,
		JoinedAt:  time.Now(),
	}
	if err := s.db.Create(&member).Error; err != nil {
		// The unique index may still fire under concurrent adds.
		return nil, translateDBError(err)
	}

	s.db.Preload("User").First(&member, member.ID)
	RecordEngagement(userID, ActionMemberAdded, fmt.Sprintf("added user %d to project %d", req.UserID, projectID))
	return &member, nil
}

// Remove deletes a membership. Inside one transaction the removed user's
// task assignments in the project are nulled first, then the membership row
// goes; that ordering is what keeps tasks from ever pointing at a
// non-member. The engagement record is issued after commit, best effort.
func (s *MemberService) Remove(userID uint, role string, projectID, targetUserID uint) error {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("project not found")
		}
		return translateDBError(err)
	}

	if d := authz.CanManageProject(role, userID, project.MentorID); !d.Allowed {
		return denyError(d)
	}

	if targetUserID == project.MentorID {
		return response.NewConflict("the mentor cannot be removed from their own project")
	}

	var member models.ProjectMember
	if err := s.db.Where("project_id = ? AND user_id = ?", projectID, targetUserID).
		First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("user is not a member of this project")
		}
		return translateDBError(err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).
			Where("project_id = ? AND assigned_to_id = ?", projectID, targetUserID).
			Update("assigned_to_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ProjectMember{}, member.ID).Error
	})
	if err != nil {
		return translateDBError(err)
	}

	RecordEngagement(userID, ActionMemberRemoved, fmt.Sprintf("removed user %d from project %d", targetUserID, projectID))
	return nil
}

// List returns the members of a project the caller may view.
func (s *MemberService) List(userID uint, role string, projectID uint) ([]models.ProjectMember, error) {
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

	if d := authz.CanViewProject(role, userID, project.MentorID, isMember); !d.Allowed {
		return nil, denyError(d)
	}

	var members []models.ProjectMember
	if err := s.db.Where("project_id = ?", projectID).
		Preload("User").
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, translateDBError(err)
	}

	return members, nil
}
