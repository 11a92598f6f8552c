package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kalviumcommunity/mentorhub/backend/internal/models"
	"github.com/kalviumcommunity/mentorhub/backend/pkg/response"
)

// setupTestDB opens a fresh in-memory sqlite database, migrates the schema
// and points the engagement recorder at it.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.PeerFeedback{},
		&models.EngagementLog{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	globalActivityQueue = NewSyncActivityQueue(db)

	return db
}

func createUser(t *testing.T, db *gorm.DB, name, role string) *models.User {
	t.Helper()

	user := models.User{
		Name:     name,
		Email:    strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Password: "not-a-real-hash",
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %q: %v", name, err)
	}
	return &user
}

// createProject bootstraps a project through the real workflow so the owner
// membership row exists.
func createProject(t *testing.T, db *gorm.DB, mentor *models.User, title string) *models.Project {
	t.Helper()

	project, err := NewProjectService(db).Create(mentor.ID, mentor.Role, &CreateProjectRequest{Title: title})
	if err != nil {
		t.Fatalf("failed to create project %q: %v", title, err)
	}
	return project
}

func addMember(t *testing.T, db *gorm.DB, mentor *models.User, projectID uint, user *models.User) {
	t.Helper()

	if _, err := NewMemberService(db).Add(mentor.ID, mentor.Role, projectID, &AddMemberRequest{UserID: user.ID}); err != nil {
		t.Fatalf("failed to add member %d to project %d: %v", user.ID, projectID, err)
	}
}

// assertAppError fails unless err is an *response.AppError with the given
// HTTP status.
func assertAppError(t *testing.T, err error, wantStatus int) *response.AppError {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error with status %d, got nil", wantStatus)
	}
	var appErr *response.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *response.AppError, got %T: %v", err, err)
	}
	if appErr.HTTPStatus != wantStatus {
		t.Errorf("status = %d, expected %d (message %q)", appErr.HTTPStatus, wantStatus, appErr.Message)
	}
	return appErr
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()

	var count int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return count
}
