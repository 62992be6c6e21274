package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a customer account. Phone doubles as the public key for
// unauthenticated ticket lookup.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Phone        string    `json:"phone" db:"phone"`
	FullName     string    `json:"full_name" db:"full_name"`
	Email        *string   `json:"email,omitempty" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// RegisterUserRequest represents the request to create a customer account
type RegisterUserRequest struct {
	Phone    string  `json:"phone" binding:"required"`
	FullName string  `json:"full_name" binding:"required"`
	Email    *string `json:"email,omitempty"`
	Password string  `json:"password" binding:"required,min=8"`
}
