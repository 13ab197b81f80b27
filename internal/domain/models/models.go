package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority maps free-form input onto a known priority. Anything
// unrecognized is treated as low.
func ParsePriority(s string) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityMedium:
		return PriorityMedium
	case PriorityHigh:
		return PriorityHigh
	default:
		return PriorityLow
	}
}

// NewID returns a fresh 24-character hexadecimal identifier.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether s has the fixed-width hexadecimal id shape.
func IsValidID(s string) bool {
	return primitive.IsValidObjectID(s)
}

type User struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// Identity is the projection of a user that authenticated handlers see.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Name: u.Name}
}

type Task struct {
	ID          string    `json:"_id"`
	Title       string    `json:"taskname"`
	Description string    `json:"desc"`
	Priority    Priority  `json:"priority"`
	CreatedAt   time.Time `json:"createdAt"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=3"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required,strongpassword"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required,strongpassword"`
}

// TaskRequest is the body of both create and update. Update replaces the
// whole record, so every field is required in both cases.
type TaskRequest struct {
	Title       string `json:"taskname" validate:"required"`
	Description string `json:"desc" validate:"required"`
	Priority    string `json:"priority" validate:"required"`
}
