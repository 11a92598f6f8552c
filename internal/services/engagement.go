package services

import (
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/kalviumcommunity/mentorhub/backend/internal/models"
	"github.com/kalviumcommunity/mentorhub/backend/pkg/logger"
)

// Engagement action types. The set is closed; workflow callers only record
// these values and validate user-supplied action types before filtering.
const (
	ActionLogin          = "login"
	ActionProjectCreated = "project-created"
	ActionProjectDeleted = "project-deleted"
	ActionMemberAdded    = "member-added"
	ActionMemberRemoved  = "member-removed"
	ActionTaskCreated    = "task-created"
	ActionTaskUpdated    = "task-updated"
	ActionTaskDeleted    = "task-deleted"
	ActionFeedbackGiven  = "feedback-given"
)

// IsValidActionType reports whether actionType belongs to the closed set.
func IsValidActionType(actionType string) bool {
	switch actionType {
	case ActionLogin, ActionProjectCreated, ActionProjectDeleted,
		ActionMemberAdded, ActionMemberRemoved,
		ActionTaskCreated, ActionTaskUpdated, ActionTaskDeleted,
		ActionFeedbackGiven:
		return true
	}
	return false
}

// RecordEngagement appends an engagement-log entry, best effort. Failures
// are logged and swallowed; they never propagate to the workflow that
// triggered the record and never roll anything back.
func RecordEngagement(userID uint, actionType, details string) {
	queue := GetActivityQueue()
	if queue == nil {
		return
	}

	entry := &models.EngagementLog{
		UserID:     userID,
		ActionType: actionType,
		Details:    details,
		Timestamp:  time.Now(),
	}

	if err := queue.Enqueue(entry); err != nil {
		logger.Warn().
			Err(err).
			Uint("user_id", userID).
			Str("action_type", actionType).
			Msg("engagement record dropped")
	}
}

type EngagementLogService struct {
	db *gorm.DB
}

func NewEngagementLogService(db *gorm.DB) *EngagementLogService {
	return &EngagementLogService{db: db}
}

type EngagementLogListRequest struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	UserID     *uint  `form:"user_id"`
	ActionType string `form:"action_type"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
}

type EngagementLogListResponse struct {
	Total    int64                  `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"page_size"`
	Items    []models.EngagementLog `json:"items"`
}

// List returns paginated engagement-log entries, newest first. Visibility
// is scoped to the caller: a mentor sees only entries of users who are
// members of projects the mentor owns, never the whole log.
func (s *EngagementLogService) List(callerID uint, req *EngagementLogListRequest) (*EngagementLogListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	var logs []models.EngagementLog
	var total int64

	ownedProjects := s.db.Model(&models.Project{}).
		Select("id").
		Where("mentor_id = ?", callerID)
	visibleUsers := s.db.Model(&models.ProjectMember{}).
		Select("DISTINCT user_id").
		Where("project_id IN (?)", ownedProjects)

	query := s.db.Model(&models.EngagementLog{}).
		Where("user_id IN (?)", visibleUsers)

	if req.UserID != nil {
		query = query.Where("user_id = ?", *req.UserID)
	}
	if req.ActionType != "" {
		query = query.Where("action_type = ?", req.ActionType)
	}
	if req.StartDate != "" {
		query = query.Where("timestamp >= ?", req.StartDate)
	}
	if req.EndDate != "" {
		query = query.Where("timestamp <= ?", req.EndDate+" 23:59:59")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("timestamp DESC").Find(&logs).Error; err != nil {
		return nil, err
	}

	return &EngagementLogListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    logs,
	}, nil
}

// CleanupOldLogs deletes entries older than retentionDays and returns the
// number of deleted rows. Retention is the only path that removes entries
// from the otherwise append-only log.
func (s *EngagementLogService) CleanupOldLogs(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("timestamp < ?", cutoff).Delete(&models.EngagementLog{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// StartRetentionScheduler runs the retention cleanup on the configured cron
// spec. Returns the scheduler so callers can stop it on shutdown.
func StartRetentionScheduler(db *gorm.DB, spec string, retentionDays int) (*cron.Cron, error) {
	service := NewEngagementLogService(db)

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		deleted, err := service.CleanupOldLogs(retentionDays)
		if err != nil {
			logger.Errorf("[Engagement] Failed to cleanup old logs: %v", err)
			return
		}
		if deleted > 0 {
			logger.Infof("[Engagement] Cleaned up %d logs older than %d days", deleted, retentionDays)
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
