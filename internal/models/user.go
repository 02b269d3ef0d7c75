package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type User struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name"`
	Email          string    `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all users
	DisplayName    string    `json:"display_name" gorm:"size:100"`
	AvatarURL      string    `json:"avatar_url"`
	FcmToken       string    `json:"-"` // Device token for push delivery, never serialized
	FollowerCount  int64     `json:"follower_count"`
	FollowingCount int64     `json:"following_count"`
	FirebaseUID    string    `json:"firebase_uid,omitempty" gorm:"uniqueIndex"` // Link to Firebase User UID
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AvatarImage is the structured avatar reference carried in event payloads
type AvatarImage struct {
	URL string `json:"url"`
}

type UpdateProfileRequest struct {
	Name        string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,min=2,max=100"`
	AvatarURL   string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	FcmToken    string `json:"fcm_token,omitempty"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
