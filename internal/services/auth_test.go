package services

import (
	"net/http"
	"testing"

	"github.com/kalviumcommunity/mentorhub/backend/internal/config"
	"github.com/kalviumcommunity/mentorhub/backend/internal/models"
	"github.com/kalviumcommunity/mentorhub/backend/internal/utils"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{Secret: "test-secret", ExpireHour: 1}
}

func TestRegister(t *testing.T) {
	db := setupTestDB(t)
	utils.SetJWTSecret("test-secret")
	svc := NewAuthService(db, testJWTConfig())

	user, err := svc.Register(&RegisterRequest{
		Name:     "  Asha Nair ",
		Email:    "Asha@Example.Com",
		Password: "secret123",
		Role:     models.RoleMentor,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Name != "Asha Nair" {
		t.Errorf("Name = %q, expected trimmed", user.Name)
	}
	if user.Email != "asha@example.com" {
		t.Errorf("Email = %q, expected lowercased", user.Email)
	}
	if user.Password == "secret123" {
		t.Error("password stored in plaintext")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testJWTConfig())

	req := &RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "secret123", Role: models.RoleStudent}
	if _, err := svc.Register(req); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err := svc.Register(&RegisterRequest{Name: "Other", Email: "ASHA@example.com", Password: "different", Role: models.RoleMentor})
	assertAppError(t, err, http.StatusConflict)
}

func TestRegister_InvalidRole(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testJWTConfig())

	for _, role := range []string{"", "mentor", "ADMIN"} {
		_, err := svc.Register(&RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "secret123", Role: role})
		assertAppError(t, err, http.StatusBadRequest)
	}
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	utils.SetJWTSecret("test-secret")
	svc := NewAuthService(db, testJWTConfig())

	if _, err := svc.Register(&RegisterRequest{
		Name: "Asha", Email: "asha@example.com", Password: "secret123", Role: models.RoleMentor,
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	resp, err := svc.Login(&LoginRequest{Email: " Asha@example.com ", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.Token == "" {
		t.Fatal("Login() returned empty token")
	}
	if resp.User == nil || resp.User.Email != "asha@example.com" {
		t.Errorf("Login() user = %+v", resp.User)
	}

	claims, err := utils.ParseToken(resp.Token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.UserID != resp.User.ID || claims.Role != models.RoleMentor {
		t.Errorf("claims = %+v", claims)
	}

	logs := countRows(t, db, &models.EngagementLog{}, "user_id = ? AND action_type = ?", resp.User.ID, ActionLogin)
	if logs != 1 {
		t.Errorf("login engagement rows = %d, expected 1", logs)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	db := setupTestDB(t)
	utils.SetJWTSecret("test-secret")
	svc := NewAuthService(db, testJWTConfig())

	if _, err := svc.Register(&RegisterRequest{
		Name: "Asha", Email: "asha@example.com", Password: "secret123", Role: models.RoleStudent,
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Unknown email and wrong password come back identical so callers
	// cannot probe which emails exist.
	_, err := svc.Login(&LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	unknownEmail := assertAppError(t, err, http.StatusUnauthorized)

	_, err = svc.Login(&LoginRequest{Email: "asha@example.com", Password: "wrong"})
	wrongPassword := assertAppError(t, err, http.StatusUnauthorized)

	if unknownEmail.Message != wrongPassword.Message {
		t.Errorf("credential failures differ: %q vs %q", unknownEmail.Message, wrongPassword.Message)
	}
}

func TestGetCurrentUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testJWTConfig())
	user := createUser(t, db, "Asha", models.RoleStudent)

	loaded, err := svc.GetCurrentUser(user.ID)
	if err != nil {
		t.Fatalf("GetCurrentUser() error = %v", err)
	}
	if loaded.ID != user.ID {
		t.Errorf("loaded %d, expected %d", loaded.ID, user.ID)
	}

	_, err = svc.GetCurrentUser(9999)
	assertAppError(t, err, http.StatusNotFound)
}
