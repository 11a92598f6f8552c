package services

import (
	"net/http"
	"testing"

	"github.com/kalviumcommunity/mentorhub/backend/internal/models"
)

func TestSubmitFeedback(t *testing.T) {
	db := setupTestDB(t)
	mentor := createUser(t, db, "Mentor M", models.RoleMentor)
	s1 := createUser(t, db, "Student One", models.RoleStudent)
	s2 := createUser(t, db, "Student Two", models.RoleStudent)
	project := createProject(t, db, mentor, "Alpha")
	addMember(t, db, mentor, project.ID, s1)
	addMember(t, db, mentor, project.ID, s2)

	svc := NewFeedbackService(db)

	fb, err := svc.Submit(s1.ID, s1.Role, project.ID, &SubmitFeedbackRequest{
		ToUserID: s2.ID,
		Rating:   4,
		Comment:  "solid reviews",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if fb.FromUserID != s1.ID || fb.ToUserID != s2.ID || fb.Rating != 4 {
		t.Errorf("persisted feedback = %+v", fb)
	}

	// Mentors rate students and students rate their mentor too.
	if _, err := svc.Submit(mentor.ID, mentor.Role, project.ID, &SubmitFeedbackRequest{ToUserID: s1.ID, Rating: 5}); err != nil {
		t.Errorf("mentor feedback should pass: %v", err)
	}
	if _, err := svc.Submit(s2.ID, s2.Role, project.ID, &SubmitFeedbackRequest{ToUserID: mentor.ID, Rating: 3}); err != nil {
		t.Errorf("student-to-mentor feedback should pass: %v", err)
	}

	logs := countRows(t, db, &models.EngagementLog{}, "action_type = ?", ActionFeedbackGiven)
	if logs != 3 {
		t.Errorf("engagement rows = %d, expected 3", logs)
	}
}

func TestSubmitFeedback_SelfRejected(t *testing.T) {
	db := setupTestDB(t)
	mentor := createUser(t, db, "Mentor M", models.RoleMentor)
	s1 := createUser(t, db, "Student One", models.RoleStudent)
	project := createProject(t, db, mentor, "Alpha")
	addMember(t, db, mentor, project.ID, s1)

	_, err := NewFeedbackService(db).Submit(s1.ID, s1.Role, project.ID, &SubmitFeedbackRequest{
		ToUserID: s1.ID,
		Rating:   5,
	})
	assertAppError(t, err, http.StatusBadRequest)
}

func TestSubmitFeedback_RatingBounds(t *testing.T) {
	db := setupTestDB(t)
	mentor := createUser(t, db, "Mentor M", models.RoleMentor)
	s1 := createUser(t, db, "Student One", models.RoleStudent)
	project := createProject(t, db, mentor, "Alpha")
	addMember(t, db, mentor, project.ID, s1)

	svc := NewFeedbackService(db)

	for _, rating := range []int{0, -1, 6, 42} {
		_, err := svc.Submit(mentor.ID, mentor.Role, project.ID, &SubmitFeedbackRequest{ToUserID: s1.ID, Rating: rating})
		assertAppError(t, err, http.StatusBadRequest)
	}
	for rating := models.MinRating; rating <= models.MaxRating; rating++ {
		if _, err := svc.Submit(mentor.ID, mentor.Role, project.ID, &SubmitFeedbackRequest{ToUserID: s1.ID, Rating: rating}); err != nil {
			t.Errorf("rating %d should pass: %v", rating, err)
		}
	}
}

func TestSubmitFeedback_MembershipRequired(t *testing.T) {
	db := setupTestDB(t)
	mentor := createUser(t, db, "Mentor M", models.RoleMentor)
	member := createUser(t, db, "Student In", models.RoleStudent)
	outsider := createUser(t, db, "Student Out", models.RoleStudent)
	project := createProject(t, db, mentor, "Alpha")
	addMember(t, db, mentor, project.ID, member)

	svc := NewFeedbackService(db)

	// Sender outside the project is an access failure.
	_, err := svc.Submit(outsider.ID, outsider.Role, project.ID, &SubmitFeedbackRequest{ToUserID: member.ID, Rating: 4})
	assertAppError(t, err, http.StatusForbidden)

	// Recipient outside the project is a state mismatch, not an access one.
	_, err = svc.Submit(member.ID, member.Role, project.ID, &SubmitFeedbackRequest{ToUserID: outsider.ID, Rating: 4})
	assertAppError(t, err, http.StatusConflict)

	_, err = svc.Submit(member.ID, member.Role, 9999, &SubmitFeedbackRequest{ToUserID: mentor.ID, Rating: 4})
	assertAppError(t, err, http.StatusNotFound)

	_, err = svc.Submit(member.ID, member.Role, project.ID, &SubmitFeedbackRequest{ToUserID: 9999, Rating: 4})
	assertAppError(t, err, http.StatusNotFound)
}

func TestListFeedback_Visibility(t *testing.T) {
	db := setupTestDB(t)
	mentor := createUser(t, db, "Mentor M", models.RoleMentor)
	s1 := createUser(t, db, "Student One", models.RoleStudent)
	s2 := createUser(t, db, "Student Two", models.RoleStudent)
	s3 := createUser(t, db, "Student Three", models.RoleStudent)
	outsider := createUser(t, db, "Student Out", models.RoleStudent)
	project := createProject(t, db, mentor, "Alpha")
	addMember(t, db, mentor, project.ID, s1)
	addMember(t, db, mentor, project.ID, s2)
	addMember(t, db, mentor, project.ID, s3)

	svc := NewFeedbackService(db)
	submit := func(from, to *models.User) {
		if _, err := svc.Submit(from.ID, from.Role, project.ID, &SubmitFeedbackRequest{ToUserID: to.ID, Rating: 4}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}
	submit(s1, s2)
	submit(s2, s3)
	submit(s3, s1)
	submit(mentor, s2)

	all, err := svc.List(mentor.ID, mentor.Role, project.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 4 {
		t.Errorf("mentor sees %d rows, expected 4", len(all))
	}
	for _, fb := range all {
		if fb.FromUser == nil || fb.ToUser == nil {
			t.Error("List() should preload both sides of each row")
		}
	}

	mine, err := svc.List(s1.ID, s1.Role, project.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("student sees %d rows, expected only the 2 involving them", len(mine))
	}
	for _, fb := range mine {
		if fb.FromUserID != s1.ID && fb.ToUserID != s1.ID {
			t.Errorf("student visibility leaked row %d", fb.ID)
		}
	}

	_, err = svc.List(outsider.ID, outsider.Role, project.ID)
	assertAppError(t, err, http.StatusForbidden)
}
