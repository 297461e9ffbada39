package domain

import (
	"time"

	"gorm.io/gorm"
)

const (
	UserRoleUser  = "user"
	UserRoleAdmin = "admin"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:191;not null" json:"email"`
	FullName     string         `gorm:"size:128;not null" json:"full_name"`
	PasswordHash string         `gorm:"size:100;not null" json:"-"`
	Role         string         `gorm:"size:16;not null;default:user" json:"role"` // global, "user"/"admin"
	LastLogin    *time.Time     `json:"last_login,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// Identity is what the identity verifier hands to the rest of the system.
type Identity struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type UserPreference struct {
	UserID               uint      `gorm:"primaryKey;autoIncrement:false" json:"-"`
	DarkMode             bool      `gorm:"not null" json:"dark_mode"`
	EmailNotifications   bool      `gorm:"not null" json:"email_notifications"`
	DesktopNotifications bool      `gorm:"not null" json:"desktop_notifications"`
	Language             string    `gorm:"size:16;not null" json:"language"`
	Timezone             string    `gorm:"size:32;not null" json:"timezone"`
	UpdatedAt            time.Time `json:"-"`
}

func (UserPreference) TableName() string { return "user_preferences" }

// DefaultPreferences is served when a user never saved preferences.
func DefaultPreferences(userID uint) UserPreference {
	return UserPreference{
		UserID:               userID,
		EmailNotifications:   true,
		DesktopNotifications: true,
		Language:             "en",
		Timezone:             "utc-7",
	}
}
