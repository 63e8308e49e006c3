package repositories

import (
	"errors"
	"strings"

	"market-delivery-api/models"

	"gorm.io/gorm"
)

// ErrRoleMismatch is returned when an existing user logs in under a
// different role than the one stored for them.
var ErrRoleMismatch = errors.New("account already exists with a different role")

// UserRepository handles database operations for users
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail looks a user up by email, case-insensitively
func (r *UserRepository) FindByEmail(email string) (models.User, error) {
	var user models.User
	err := r.db.First(&user, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).Error
	return user, err
}

// Create inserts a new user
func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// UpsertLogin implements login-or-register by email. A fresh email creates
// the user with the supplied role; an existing user presenting a different
// role is rejected with ErrRoleMismatch rather than silently re-tagged.
func (r *UserRepository) UpsertLogin(email, name, phone string, role models.UserRole) (models.User, bool, error) {
	user, err := r.FindByEmail(email)
	if err == nil {
		if user.Role != role {
			return models.User{}, false, ErrRoleMismatch
		}
		return user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, false, err
	}

	user = models.User{
		Name:  name,
		Email: email,
		Phone: phone,
		Role:  role,
	}
	if err := r.Create(&user); err != nil {
		return models.User{}, false, err
	}
	return user, true, nil
}

// FindByRole returns all users holding a role
func (r *UserRepository) FindByRole(role models.UserRole) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("role = ?", role).Order("created_at desc").Find(&users).Error
	return users, err
}
