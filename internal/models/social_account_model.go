package models

import (
	"time"
)

const PlatformLinkedIn = "linkedin"

// SocialAccount is the linkage between a user and an external social profile.
// Tokens are stored encrypted and never serialized to clients.
type SocialAccount struct {
	ID             int64     `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	Platform       string    `db:"platform" json:"platform"`
	AccountID      string    `db:"account_id" json:"account_id"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	ProfilePicture string    `db:"profile_picture_url" json:"profile_picture,omitempty"`
	AccessToken    string    `db:"access_token" json:"-"`
	RefreshToken   string    `db:"refresh_token" json:"-"`
	TokenExpiresAt time.Time `db:"token_expires_at" json:"token_expires_at"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Connected reports whether the linkage can be used to call the platform.
func (sa *SocialAccount) Connected() bool {
	return sa != nil && sa.AccessToken != ""
}
