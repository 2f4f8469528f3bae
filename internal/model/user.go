package model

import (
	"time"
)

// User represents a registered portal account stored in the database.
// The password hash is never serialized into API responses.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"`
	FirstName string    `json:"firstName" gorm:"type:varchar(100);not null"`
	LastName  string    `json:"lastName" gorm:"type:varchar(100);not null"`
	IsAdmin   bool      `json:"isAdmin" gorm:"default:false;not null"`
	CreatedAt time.Time `json:"createdAt"`
}
