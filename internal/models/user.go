package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is the public profile of an account. Its ID equals the ID of the
// auth identity that owns it.
type User struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	DisplayName string    `json:"display_name" gorm:"not null"`
	City        string    `json:"city"`
	Age         int       `json:"age"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RegisterRequest is the registration form
type RegisterRequest struct {
	Email       string `form:"email" validate:"required,email"`
	Password    string `form:"password" validate:"required,min=6"`
	DisplayName string `form:"display_name" validate:"required,min=2,max=50"`
	City        string `form:"city" validate:"required,max=80"`
	Age         int    `form:"age" validate:"required,min=1,max=150"`
}

// UpdateProfileRequest is the profile edit form
type UpdateProfileRequest struct {
	DisplayName string `form:"display_name" validate:"required,min=2,max=50"`
	City        string `form:"city" validate:"required,max=80"`
	Age         int    `form:"age" validate:"required,min=1,max=150"`
}

// LoginRequest is the email/password login form
type LoginRequest struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// ProfileUpdate carries the columns written by a profile edit
type ProfileUpdate struct {
	DisplayName string
	City        string
	Age         int
	AvatarURL   string
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}
