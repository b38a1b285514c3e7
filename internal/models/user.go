package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Dinesh751/hms-auth-service/internal/apperrors"
)

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleDoctor  Role = "DOCTOR"
	RolePatient Role = "PATIENT"
)

// ParseRole converts user provided value to Role
// Case insensitive, surrounding spaces ignored
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleDoctor:
		return RoleDoctor, nil
	case RolePatient:
		return RolePatient, nil
	default:
		return "", apperrors.ErrUnknownRole
	}
}

func (r Role) String() string {
	return string(r)
}

type User struct {
	ID             uuid.UUID
	Email          string // always stored lowercase
	HashedPassword string
	Role           Role
	Enabled        bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NormalizeEmail lowercases and trims an email for storage and comparison
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
