package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is an account row in PostgreSQL. Reactions and notifications reference
// users by this ID.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all users
	Avatar      string    `json:"avatar,omitempty"`
	Password    string    `json:"-"`                                         // Store hashed password, ignore for JSON serialization
	FirebaseUID string    `json:"firebase_uid,omitempty" gorm:"uniqueIndex"` // Link to Firebase User UID
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateLocalUserRequest defines the request body for local signup
type CreateLocalUserRequest struct {
	DisplayName string `json:"display_name" validate:"required,min=2,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
}

// SignInRequest defines the request body for local signin
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// FirebaseLoginRequest carries the Firebase ID token to exchange for an app JWT
type FirebaseLoginRequest struct {
	IDToken     string `json:"id_token" validate:"required"`
	DisplayName string `json:"display_name,omitempty"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
