package model

import "time"

// User represents an account allowed to sign in.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:100;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	FullName     string    `json:"full_name" gorm:"size:255"`
	Role         string    `json:"role" gorm:"size:50;not null"`
	CreatedAt    time.Time `json:"-"`
}
