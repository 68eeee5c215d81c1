// Package user contains the staff user domain model: the administrators,
// mentors, and counselors who consume risk assessments.
package user

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role defines what a staff user is allowed to do.
type Role string

const (
	// RoleAdmin - full access, including retraining and deletion.
	RoleAdmin Role = "admin"
	// RoleMentor - manages assigned students and triggers assessments.
	RoleMentor Role = "mentor"
	// RoleCounselor - reads risk profiles and records interventions.
	RoleCounselor Role = "counselor"
	// RoleViewer - read-only access.
	RoleViewer Role = "viewer"
)

// IsValid checks that the role is known.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleMentor, RoleCounselor, RoleViewer:
		return true
	default:
		return false
	}
}

// CanTriggerAssessment returns true for roles allowed to run assessments.
func (r Role) CanTriggerAssessment() bool {
	return r == RoleAdmin || r == RoleMentor || r == RoleCounselor
}

// CanManageModels returns true for roles allowed to retrain models and
// delete assessments.
func (r Role) CanManageModels() bool {
	return r == RoleAdmin
}

// Domain errors.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidEmail      = errors.New("invalid email")
	ErrInvalidRole       = errors.New("invalid role")
	ErrWeakPassword      = errors.New("password must be at least 8 chars")
	ErrWrongPassword     = errors.New("wrong password")
)

// User is a staff account.
type User struct {
	// ID - internal unique identifier (UUID in string form).
	ID string

	// Email - login identifier, unique.
	Email string

	// FullName - display name.
	FullName string

	// PasswordHash - bcrypt hash of the password.
	PasswordHash string

	// Role - authorization role.
	Role Role

	// Active - inactive users cannot log in.
	Active bool

	// CreatedAt / UpdatedAt - record timestamps.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser creates a staff user with a hashed password.
func NewUser(id, email, fullName, password string, role Role) (*User, error) {
	if id == "" {
		return nil, errors.New("user id is required")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}

	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	now := time.Now().UTC()
	u := &User{
		ID:        id,
		Email:     email,
		FullName:  strings.TrimSpace(fullName),
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword hashes and stores a new password.
func (u *User) SetPassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// CheckPassword verifies a password against the stored hash.
func (u *User) CheckPassword(password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return ErrWrongPassword
	}
	return nil
}
