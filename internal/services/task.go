package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/kalviumcommunity/mentorhub/backend/internal/authz"
	"github.com/kalviumcommunity/mentorhub/backend/internal/models"
	"github.com/kalviumcommunity/mentorhub/backend/pkg/response"
)

type TaskService struct {
	db *gorm.DB
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db}
}

type CreateTaskRequest struct {
	Title        string `json:"title" binding:"required"`
	AssignedToID *uint  `json:"assigned_to_id"`
}

// UpdateTaskRequest is a patch: only non-nil fields are applied. Unassign
// clears the assignee and, like AssignedToID, is a mentor-only field.
type UpdateTaskRequest struct {
	Title        *string `json:"title"`
	Status       *string `json:"status"`
	AssignedToID *uint   `json:"assigned_to_id"`
	Unassign     bool    `json:"unassign"`
}

// Create inserts a task in state TODO. Owning mentor only; an assignee, when
// given, must already be a member of the project.
func (s *TaskService) Create(userID uint, role string, projectID uint, req *CreateTaskRequest) (*models.Task, error) {
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
		return nil, response.NewBadRequest("task title must not be empty")
	}

	task := models.Task{
		Title:        title,
		Status:       models.TaskStatusTodo,
		ProjectID:    projectID,
		AssignedToID: req.AssignedToID,
	}

	// Membership check and insert share one transaction so a concurrent
	// member removal cannot land in between.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.AssignedToID != nil {
			if err := checkAssignee(tx, projectID, *req.AssignedToID); err != nil {
				return err
			}
		}
		return tx.Create(&task).Error
	})
	if err != nil {
		return nil, txError(err)
	}

	RecordEngagement(userID, ActionTaskCreated, fmt.Sprintf("created task %q (id=%d) in project %d", task.Title, task.ID, projectID))
	return &task, nil
}

// Get loads a task for the assignee or the owning mentor.
func (s *TaskService) Get(userID uint, role string, taskID uint) (*models.Task, error) {
	task, project, err := s.loadTaskWithProject(taskID)
	if err != nil {
		return nil, err
	}

	if d := authz.CanViewTask(role, userID, project.MentorID, task.AssignedToID); !d.Allowed {
		return nil, denyError(d)
	}

	return task, nil
}

// List returns the project's tasks visible to the caller: all of them for
// the owning mentor, only their own assignments for a student member.
func (s *TaskService) List(userID uint, role string, projectID uint) ([]models.Task, error) {
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

	query := s.db.Where("project_id = ?", projectID)
	if role == models.RoleStudent {
		query = query.Where("assigned_to_id = ?", userID)
	}

	var tasks []models.Task
	if err := query.Order("created_at ASC").Find(&tasks).Error; err != nil {
		return nil, translateDBError(err)
	}

	return tasks, nil
}

// Update applies a patch under the caller's scope: the assignee may change
// status only; the owning mentor may change anything. A student patch that
// touches title or assignment is rejected outright, even when the status
// part of the same patch would have been legal.
func (s *TaskService) Update(userID uint, role string, taskID uint, req *UpdateTaskRequest) (*models.Task, error) {
	task, project, err := s.loadTaskWithProject(taskID)
	if err != nil {
		return nil, err
	}

	scope, d := authz.TaskPatchScope(role, userID, project.MentorID, task.AssignedToID)
	if !d.Allowed {
		return nil, denyError(d)
	}

	if scope == authz.TaskUpdateStatus && (req.Title != nil || req.AssignedToID != nil || req.Unassign) {
		return nil, response.NewForbidden("only the project mentor may change title or assignment")
	}

	updates := make(map[string]interface{})

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, response.NewBadRequest("task title must not be empty")
		}
		updates["title"] = title
	}

	if req.Status != nil {
		// No transition graph: any status may follow any other.
		if !models.IsValidTaskStatus(*req.Status) {
			return nil, response.NewBadRequest(fmt.Sprintf("invalid task status: %q", *req.Status))
		}
		updates["status"] = *req.Status
	}

	var reassignTo *uint
	if req.Unassign {
		updates["assigned_to_id"] = nil
	} else if req.AssignedToID != nil {
		reassignTo = req.AssignedToID
		updates["assigned_to_id"] = *req.AssignedToID
	}

	if len(updates) == 0 {
		return task, nil
	}

	// A reassignment checks membership and writes in one transaction, the
	// same way Create does.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if reassignTo != nil {
			if err := checkAssignee(tx, task.ProjectID, *reassignTo); err != nil {
				return err
			}
		}
		return tx.Model(task).Updates(updates).Error
	})
	if err != nil {
		return nil, txError(err)
	}

	RecordEngagement(userID, ActionTaskUpdated, fmt.Sprintf("updated task %d in project %d", task.ID, task.ProjectID))
	return task, nil
}

// Delete removes a task. Owning mentor only.
func (s *TaskService) Delete(userID uint, role string, taskID uint) error {
	task, project, err := s.loadTaskWithProject(taskID)
	if err != nil {
		return err
	}

	if d := authz.CanManageProject(role, userID, project.MentorID); !d.Allowed {
		return denyError(d)
	}

	if err := s.db.Delete(&models.Task{}, task.ID).Error; err != nil {
		return translateDBError(err)
	}

	RecordEngagement(userID, ActionTaskDeleted, fmt.Sprintf("deleted task %d from project %d", task.ID, task.ProjectID))
	return nil
}

func (s *TaskService) loadTaskWithProject(taskID uint) (*models.Task, *models.Project, error) {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, response.NewNotFound("task not found")
		}
		return nil, nil, translateDBError(err)
	}

	var project models.Project
	if err := s.db.First(&project, task.ProjectID).Error; err != nil {
		return nil, nil, translateDBError(err)
	}

	return &task, &project, nil
}

// checkAssignee verifies the assignee exists and is a current member of the
// project. Runs on the caller's transaction so the membership fact holds
// until the accompanying write commits.
func checkAssignee(db *gorm.DB, projectID, assigneeID uint) error {
	var user models.User
	if err := db.First(&user, assigneeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("assignee not found")
		}
		return translateDBError(err)
	}

	isMember, err := isProjectMember(db, assigneeID, projectID)
	if err != nil {
		return translateDBError(err)
	}
	if !isMember {
		return response.NewBadRequest(fmt.Sprintf("user %q is not a member of this project", user.Name))
	}

	return nil
}
