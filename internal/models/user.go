// Package models contains data structures for the application's domain models.
package models

import "time"

// DefaultAvatarURL is assigned to every account at registration.
const DefaultAvatarURL = "https://i.pravatar.cc/100"

// User represents an XTAGRAM account.
type User struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// Username is unique across all accounts.
	Username string `gorm:"size:30;uniqueIndex;not null" json:"username"`
	// PasswordDigest is the SHA-256 hex digest of the plaintext password.
	// Never serialized.
	PasswordDigest string    `gorm:"size:64;not null" json:"-"`
	AvatarURL      string    `gorm:"size:200" json:"avatar_url"`
	CreatedAt      time.Time `json:"created_at"`
}
