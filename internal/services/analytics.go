package services

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/kalviumcommunity/mentorhub/backend/internal/authz"
	"github.com/kalviumcommunity/mentorhub/backend/internal/models"
	"github.com/kalviumcommunity/mentorhub/backend/pkg/response"
)

// activeWindow is the lookback used for the active-member count.
const activeWindow = 7 * 24 * time.Hour

type AnalyticsService struct {
	db *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

type MemberRating struct {
	UserID        uint    `json:"user_id"`
	Name          string  `json:"name"`
	AverageRating float64 `json:"average_rating"`
	FeedbackCount int64   `json:"feedback_count"`
}

type ProjectStats struct {
	ProjectID            uint           `json:"project_id"`
	TotalTasks           int64          `json:"total_tasks"`
	CompletedTasks       int64          `json:"completed_tasks"`
	CompletionPercentage float64        `json:"completion_percentage"`
	AverageRating        float64        `json:"average_rating"`
	FeedbackCount        int64          `json:"feedback_count"`
	MemberCount          int64          `json:"member_count"`
	ActiveMembers        int64          `json:"active_members"`
	MemberRatings        []MemberRating `json:"member_ratings"`
}

// ProjectStats computes read-only rollups for one project. Everything is
// derived per request from current rows; nothing is cached.
func (s *AnalyticsService) ProjectStats(userID uint, role string, projectID uint) (*ProjectStats, error) {
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

	stats := &ProjectStats{ProjectID: projectID}

	if err := s.db.Model(&models.Task{}).
		Where("project_id = ?", projectID).
		Count(&stats.TotalTasks).Error; err != nil {
		return nil, translateDBError(err)
	}
	if err := s.db.Model(&models.Task{}).
		Where("project_id = ? AND status = ?", projectID, models.TaskStatusDone).
		Count(&stats.CompletedTasks).Error; err != nil {
		return nil, translateDBError(err)
	}
	stats.CompletionPercentage = CompletionPercentage(stats.CompletedTasks, stats.TotalTasks)

	if err := s.db.Model(&models.PeerFeedback{}).
		Where("project_id = ?", projectID).
		Count(&stats.FeedbackCount).Error; err != nil {
		return nil, translateDBError(err)
	}
	if stats.FeedbackCount > 0 {
		var raw float64
		if err := s.db.Model(&models.PeerFeedback{}).
			Where("project_id = ?", projectID).
			Select("AVG(rating)").Row().Scan(&raw); err != nil {
			return nil, translateDBError(err)
		}
		stats.AverageRating = RoundRating(raw)
	}

	if err := s.db.Model(&models.ProjectMember{}).
		Where("project_id = ?", projectID).
		Count(&stats.MemberCount).Error; err != nil {
		return nil, translateDBError(err)
	}

	active, err := s.activeMemberCount(projectID)
	if err != nil {
		return nil, translateDBError(err)
	}
	stats.ActiveMembers = active

	ratings, err := s.memberRatings(projectID)
	if err != nil {
		return nil, translateDBError(err)
	}
	stats.MemberRatings = ratings

	return stats, nil
}

// activeMemberCount counts current members with an engagement entry inside
// the lookback window. Users who left the project never count, regardless
// of their past entries.
func (s *AnalyticsService) activeMemberCount(projectID uint) (int64, error) {
	cutoff := time.Now().Add(-activeWindow)

	var count int64
	err := s.db.Model(&models.ProjectMember{}).
		Where("project_id = ?", projectID).
		Where("user_id IN (?)", s.db.Model(&models.EngagementLog{}).
			Select("DISTINCT user_id").
			Where("timestamp >= ?", cutoff)).
		Count(&count).Error
	return count, err
}

// memberRatings rolls up received-feedback averages per current member.
func (s *AnalyticsService) memberRatings(projectID uint) ([]MemberRating, error) {
	var members []models.ProjectMember
	if err := s.db.Where("project_id = ?", projectID).
		Preload("User").
		Find(&members).Error; err != nil {
		return nil, err
	}

	ratings := make([]MemberRating, 0, len(members))
	for _, m := range members {
		mr := MemberRating{UserID: m.UserID}
		if m.User != nil {
			mr.Name = m.User.Name
		}

		if err := s.db.Model(&models.PeerFeedback{}).
			Where("project_id = ? AND to_user_id = ?", projectID, m.UserID).
			Count(&mr.FeedbackCount).Error; err != nil {
			return nil, err
		}
		if mr.FeedbackCount > 0 {
			var raw float64
			if err := s.db.Model(&models.PeerFeedback{}).
				Where("project_id = ? AND to_user_id = ?", projectID, m.UserID).
				Select("AVG(rating)").Row().Scan(&raw); err != nil {
				return nil, err
			}
			mr.AverageRating = RoundRating(raw)
		}

		ratings = append(ratings, mr)
	}

	return ratings, nil
}

// CompletionPercentage is completed/total as a percentage with one decimal,
// clamped to [0,100]. Zero tasks yields 0, not a division error.
func CompletionPercentage(completed, total int64) float64 {
	if total == 0 {
		return 0
	}
	pct := math.Round(float64(completed)/float64(total)*1000) / 10
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// RoundRating rounds a raw rating average to one decimal, clamped to the
// maximum rating. Note the 0 result doubles as "no feedback yet"; real
// averages can never be 0 because ratings start at 1.
func RoundRating(raw float64) float64 {
	r := math.Round(raw*10) / 10
	if r > models.MaxRating {
		return models.MaxRating
	}
	if r < 0 {
		return 0
	}
	return r
}
