package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/kalviumcommunity/mentorhub/backend/internal/config"
	"github.com/kalviumcommunity/mentorhub/backend/internal/models"
	"github.com/kalviumcommunity/mentorhub/backend/internal/utils"
	"github.com/kalviumcommunity/mentorhub/backend/pkg/response"
)

type AuthService struct {
	db        *gorm.DB
	jwtConfig *config.JWTConfig
}

func NewAuthService(db *gorm.DB, jwtConfig *config.JWTConfig) *AuthService {
	return &AuthService{db: db, jwtConfig: jwtConfig}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a new user account. Email is unique; a duplicate is a
// conflict, not an internal error.
func (s *AuthService) Register(req *RegisterRequest) (*models.User, error) {
	if !models.IsValidRole(req.Role) {
		return nil, response.NewBadRequest("role must be MENTOR or STUDENT")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, response.NewBadRequest("name must not be empty")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing int64
	if err := s.db.Model(&models.User{}).
		Where("email = ?", email).
		Count(&existing).Error; err != nil {
		return nil, translateDBError(err)
	}
	if existing > 0 {
		return nil, response.NewConflict("email is already registered")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, response.NewServerError("failed to hash password")
	}

	user := models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     req.Role,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, translateDBError(err)
	}

	return &user, nil
}

// Login verifies credentials and issues a JWT carrying (userID, role).
func (s *AuthService) Login(req *LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid email or password")
		}
		return nil, translateDBError(err)
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		return nil, response.NewUnauthorized("invalid email or password")
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, s.jwtConfig.ExpireHour)
	if err != nil {
		return nil, response.NewServerError("failed to generate token")
	}

	RecordEngagement(user.ID, ActionLogin, "user logged in")

	return &LoginResponse{Token: token, User: &user}, nil
}

// GetCurrentUser loads the authenticated user's profile.
func (s *AuthService) GetCurrentUser(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, translateDBError(err)
	}
	return &user, nil
}
