package models

import (
	"strings"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	AccountActive      = "active"
	AccountDeactivated = "deactivated"
	AccountBanned      = "banned"
)

// User represents a PawSafety account as stored in the users collection.
type User struct {
	ID           string     `bson:"_id" json:"id"`
	Name         string     `bson:"name,omitempty" json:"name,omitempty"`
	LegacyName   string     `bson:"displayName,omitempty" json:"displayName,omitempty"`
	Email        string     `bson:"email" json:"email"`
	ProfileImage string     `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	Role         string     `bson:"role" json:"role"`
	Status       string     `bson:"status,omitempty" json:"status,omitempty"`
	BanExpiresAt *time.Time `bson:"banExpiresAt,omitempty" json:"banExpiresAt,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
}

// DisplayName is the single place where the name fallback chain lives.
func (u *User) DisplayName() string {
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	if name := strings.TrimSpace(u.LegacyName); name != "" {
		return name
	}
	if at := strings.Index(u.Email, "@"); at > 0 {
		return u.Email[:at]
	}
	return "Unknown User"
}

// IsActive reports whether the account may use social features at the given time.
// An expired ban counts as active.
func (u *User) IsActive(now time.Time) bool {
	switch u.Status {
	case AccountDeactivated:
		return false
	case AccountBanned:
		return u.BanExpiresAt != nil && !now.Before(*u.BanExpiresAt)
	default:
		return true
	}
}

type PublicUser struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	ProfileImage string `json:"profileImage,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:           u.ID,
		Name:         u.DisplayName(),
		Email:        u.Email,
		ProfileImage: u.ProfileImage,
	}
}
