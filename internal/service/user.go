package service

import (
	"CloudStash/model"
	"CloudStash/utils"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// UserService handles registration and credential checks.
type UserService struct {
	db *gorm.DB
}

// NewUserService builds a UserService on the given database handle.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new account with a hashed password and zero used
// bytes.
func (s *UserService) Register(email, password string) (*model.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrValidation
	}

	var existing model.User
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := utils.GetPwd(password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks credentials and returns the matching user.
// Unknown email and wrong password are indistinguishable to callers.
func (s *UserService) Authenticate(email, password string) (*model.User, error) {
	email = NormalizeEmail(email)

	var user model.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPwd(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GetByID loads a user by ID.
func (s *UserService) GetByID(id uint64) (*model.User, error) {
	var user model.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
