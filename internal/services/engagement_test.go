package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/kalviumcommunity/mentorhub/backend/internal/models"
)

func TestIsValidActionType(t *testing.T) {
	valid := []string{
		ActionLogin, ActionProjectCreated, ActionProjectDeleted,
		ActionMemberAdded, ActionMemberRemoved,
		ActionTaskCreated, ActionTaskUpdated, ActionTaskDeleted,
		ActionFeedbackGiven,
	}
	for _, action := range valid {
		if !IsValidActionType(action) {
			t.Errorf("IsValidActionType(%q) = false, expected true", action)
		}
	}
	for _, action := range []string{"", "LOGIN", "project_created", "signup"} {
		if IsValidActionType(action) {
			t.Errorf("IsValidActionType(%q) = true, expected false", action)
		}
	}
}

func TestRecordEngagement(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "Student S", models.RoleStudent)

	RecordEngagement(user.ID, ActionLogin, "")
	RecordEngagement(user.ID, ActionTaskUpdated, `{"task_id":7}`)

	if n := countRows(t, db, &models.EngagementLog{}, "user_id = ?", user.ID); n != 2 {
		t.Errorf("log rows = %d, expected 2", n)
	}

	var entry models.EngagementLog
	if err := db.Where("action_type = ?", ActionTaskUpdated).First(&entry).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if entry.Details != `{"task_id":7}` {
		t.Errorf("Details = %q", entry.Details)
	}
	if entry.Timestamp.IsZero() {
		t.Error("Timestamp should be stamped on record")
	}
}

func TestRecordEngagement_NilQueue(t *testing.T) {
	setupTestDB(t)
	globalActivityQueue = nil

	// Must not panic and must not surface an error to the caller.
	RecordEngagement(1, ActionLogin, "")
}

func seedEngagementLog(t *testing.T, db *gorm.DB, userID uint, action string, daysAgo int) {
	t.Helper()

	entry := models.EngagementLog{
		UserID:     userID,
		ActionType: action,
		Timestamp:  time.Now().AddDate(0, 0, -daysAgo),
	}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("seed log: %v", err)
	}
}

func TestListEngagementLogs(t *testing.T) {
	db := setupTestDB(t)
	mentor := createUser(t, db, "Mentor M", models.RoleMentor)
	u1 := createUser(t, db, "Student One", models.RoleStudent)
	u2 := createUser(t, db, "Student Two", models.RoleStudent)
	project := createProject(t, db, mentor, "Alpha")
	addMember(t, db, mentor, project.ID, u1)
	addMember(t, db, mentor, project.ID, u2)

	seedEngagementLog(t, db, u1.ID, ActionLogin, 0)
	seedEngagementLog(t, db, u1.ID, ActionTaskCreated, 1)
	seedEngagementLog(t, db, u2.ID, ActionLogin, 2)
	seedEngagementLog(t, db, u2.ID, ActionFeedbackGiven, 10)

	svc := NewEngagementLogService(db)

	// Project setup recorded 3 mentor entries (project-created plus two
	// member-added), so the mentor sees 7 in total.
	all, err := svc.List(mentor.ID, &EngagementLogListRequest{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if all.Total != 7 || len(all.Items) != 7 {
		t.Fatalf("total = %d, items = %d, expected 7", all.Total, len(all.Items))
	}
	for i := 1; i < len(all.Items); i++ {
		if all.Items[i].Timestamp.After(all.Items[i-1].Timestamp) {
			t.Error("items should come back newest first")
		}
	}

	byUser, err := svc.List(mentor.ID, &EngagementLogListRequest{UserID: &u1.ID})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if byUser.Total != 2 {
		t.Errorf("user filter total = %d, expected 2", byUser.Total)
	}

	byAction, err := svc.List(mentor.ID, &EngagementLogListRequest{ActionType: ActionLogin})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if byAction.Total != 2 {
		t.Errorf("action filter total = %d, expected 2", byAction.Total)
	}

	paged, err := svc.List(mentor.ID, &EngagementLogListRequest{Page: 2, PageSize: 5})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if paged.Total != 7 || len(paged.Items) != 2 {
		t.Errorf("page 2 total = %d, items = %d, expected 7 and 2", paged.Total, len(paged.Items))
	}
}

func TestListEngagementLogs_ScopedToOwnedProjects(t *testing.T) {
	db := setupTestDB(t)
	mentorA := createUser(t, db, "Mentor A", models.RoleMentor)
	mentorB := createUser(t, db, "Mentor B", models.RoleMentor)
	studentA := createUser(t, db, "Student A", models.RoleStudent)
	studentB := createUser(t, db, "Student B", models.RoleStudent)

	projectA := createProject(t, db, mentorA, "Alpha")
	addMember(t, db, mentorA, projectA.ID, studentA)
	projectB := createProject(t, db, mentorB, "Beta")
	addMember(t, db, mentorB, projectB.ID, studentB)

	seedEngagementLog(t, db, studentA.ID, ActionLogin, 0)
	seedEngagementLog(t, db, studentB.ID, ActionLogin, 0)

	svc := NewEngagementLogService(db)

	listA, err := svc.List(mentorA.ID, &EngagementLogListRequest{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if listA.Total == 0 {
		t.Fatal("mentor should see their own project's activity")
	}
	for _, entry := range listA.Items {
		if entry.UserID == studentB.ID || entry.UserID == mentorB.ID {
			t.Errorf("entry %d leaked activity of user %d outside the caller's projects", entry.ID, entry.UserID)
		}
	}

	// Filtering for the other mentor's student must come back empty, not
	// bypass the scope.
	other, err := svc.List(mentorA.ID, &EngagementLogListRequest{UserID: &studentB.ID})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if other.Total != 0 {
		t.Errorf("total = %d, expected 0 rows for a student outside the caller's projects", other.Total)
	}

	own, err := svc.List(mentorA.ID, &EngagementLogListRequest{UserID: &studentA.ID})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if own.Total != 1 {
		t.Errorf("total = %d, expected the student's single login entry", own.Total)
	}
}

func TestCleanupOldLogs(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "Student S", models.RoleStudent)

	for _, daysAgo := range []int{1, 30, 120, 400} {
		entry := models.EngagementLog{
			UserID:     user.ID,
			ActionType: ActionLogin,
			Timestamp:  time.Now().AddDate(0, 0, -daysAgo),
		}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("seed log: %v", err)
		}
	}

	svc := NewEngagementLogService(db)

	deleted, err := svc.CleanupOldLogs(90)
	if err != nil {
		t.Fatalf("CleanupOldLogs() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, expected the 120d and 400d rows", deleted)
	}
	if n := countRows(t, db, &models.EngagementLog{}, "1 = 1"); n != 2 {
		t.Errorf("remaining rows = %d, expected 2", n)
	}

	// Retention disabled keeps everything.
	deleted, err = svc.CleanupOldLogs(0)
	if err != nil {
		t.Fatalf("CleanupOldLogs() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d with retention disabled", deleted)
	}
}
