package users

import (
	"strings"
	"time"
)

// User is a registered account. Email is unique and always stored lowercase.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"` // bcrypt hash
	IsAdmin   bool      `json:"isAdmin" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary is the read-only user projection embedded in application listings.
type Summary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (Summary) TableName() string { return "users" }

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
