package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kalviumcommunity/mentorhub/backend/internal/authz"
	"github.com/kalviumcommunity/mentorhub/backend/internal/models"
	"github.com/kalviumcommunity/mentorhub/backend/pkg/response"
)

type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

type CreateProjectRequest struct {
	Title string `json:"title" binding:"required"`
}

type UpdateProjectRequest struct {
	Title string `json:"title" binding:"required"`
}

// Create inserts the project and the owner's membership row in one
// transaction. A project must never exist without its mentor being a member.
func (s *ProjectService) Create(userID uint, role string, req *CreateProjectRequest) (*models.Project, error) {
	if d := authz.CanCreateProject(role); !d.Allowed {
		return nil, denyError(d)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, response.NewBadRequest("project title must not be empty")
	}

	project := models.Project{
		Title:    title,
		MentorID: userID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		member := models.ProjectMember{
			ProjectID: project.ID,
			UserID:    userID,
			JoinedAt:  time.Now(),
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, translateDBError(err)
	}

	RecordEngagement(userID, ActionProjectCreated, fmt.Sprintf("created project %q (id=%d)", project.Title, project.ID))
	return &project, nil
}

// Get loads a project and checks read access against current state.
func (s *ProjectService) Get(userID uint, role string, projectID uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, translateDBError(err)
	}

	isMember, err := s.isMember(userID, projectID)
	if err != nil {
		return nil, translateDBError(err)
	}

	if d := authz.CanViewProject(role, userID, project.MentorID, isMember); !d.Allowed {
		return nil, denyError(d)
	}

	return &project, nil
}

// List returns the caller's visible projects: owned ones for mentors, joined
// ones for students. Queries are always filtered, never an unfiltered scan.
func (s *ProjectService) List(userID uint, role string) ([]models.Project, error) {
	var projects []models.Project

	switch role {
	case models.RoleMentor:
		if err := s.db.Where("mentor_id = ?", userID).
			Order("created_at DESC").Find(&projects).Error; err != nil {
			return nil, translateDBError(err)
		}
	case models.RoleStudent:
		if err := s.db.
			Joins("JOIN project_members ON project_members.project_id = projects.id").
			Where("project_members.user_id = ?", userID).
			Order("projects.created_at DESC").Find(&projects).Error; err != nil {
			return nil, translateDBError(err)
		}
	default:
		return nil, denyError(authz.DenyInvalidRole(role))
	}

	return projects, nil
}

// Update changes the project title. Owning mentor only.
func (s *ProjectService) Update(userID uint, role string, projectID uint, req *UpdateProjectRequest) (*models.Project, error) {
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

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, response.NewBadRequest("project title must not be empty")
	}

	if err := s.db.Model(&project).Update("title", title).Error; err != nil {
		return nil, translateDBError(err)
	}

	return &project, nil
}

// Delete cascades in one transaction: members, tasks, feedback, then the
// project row. Partial failure aborts the whole cascade.
func (s *ProjectService) Delete(userID uint, role string, projectID uint) error {
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

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.PeerFeedback{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, projectID).Error
	})
	if err != nil {
		return translateDBError(err)
	}

	RecordEngagement(userID, ActionProjectDeleted, fmt.Sprintf("deleted project %q (id=%d)", project.Title, project.ID))
	return nil
}

// isMember reports whether the user currently has a membership row for the
// project. Re-queried on every request; membership is never cached.
func (s *ProjectService) isMember(userID, projectID uint) (bool, error) {
	return isProjectMember(s.db, userID, projectID)
}

func isProjectMember(db *gorm.DB, userID, projectID uint) (bool, error) {
	var count int64
	err := db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	return count > 0, err
}

// denyError maps an authorization denial to the API error taxonomy. The
// invalid-role case keeps its own message so callers can tell it apart from
// an ordinary forbidden.
func denyError(d authz.Decision) *response.AppError {
	return response.NewForbidden(d.Reason)
}

// txError maps an error escaping a transaction: workflow errors raised
// inside the transaction body pass through unchanged, storage errors go
// through translateDBError.
func txError(err error) *response.AppError {
	var appErr *response.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return translateDBError(err)
}

// translateDBError maps storage errors to the API error taxonomy. Uniqueness
// violations detected at commit time are domain conflicts, not internals.
func translateDBError(err error) *response.AppError {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return response.NewConflict("duplicate entry violates a uniqueness constraint")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return response.NewNotFound("record not found")
	}
	return response.NewServerError(err.Error())
}
