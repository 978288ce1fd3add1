package model

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultAvatarURL is assigned on registration until avatar upload is supported.
const DefaultAvatarURL = "https://res.cloudinary.com/dxmimyaco/image/upload/v1679466867/userImg_jupvuu.jpg"

type User struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	HashedPassword string `json:"-"` // Not exposed
	Role           string `json:"role"`
	AvatarURL      string `json:"avatar_url"`

	// Password reset state. Both nil or both set; only the sha256 digest of
	// the reset token is ever stored.
	ResetTokenHash   *string    `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
