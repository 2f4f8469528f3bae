package model

import (
	"time"
)

// Client status values. A client record always carries exactly one of these.
const (
	ClientStatusActive   = "active"
	ClientStatusInactive = "inactive"
	ClientStatusPending  = "pending"
)

// Client represents a service-seeker record, distinct from a portal account.
// Records are created by admins or implicitly from the public contact form.
type Client struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	FirstName string `json:"firstName" gorm:"type:varchar(100);not null"`
	LastName  string `json:"lastName" gorm:"type:varchar(100);not null"`
	Email     string `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	// BirthDate is stored as a plain YYYY-MM-DD string so it reads back
	// exactly as written; a date-typed column would be normalized by the
	// driver into a full timestamp
	BirthDate string `json:"birthDate" gorm:"type:varchar(10);not null"`
	Status    string `json:"status" gorm:"type:varchar(20);default:pending;not null"`
	// RegistrationDate is immutable once set; updates never touch it
	RegistrationDate time.Time `json:"registrationDate" gorm:"autoCreateTime"`
	CreatedBy        *uint     `json:"createdBy" gorm:"index"`
	Message          string    `json:"message,omitempty" gorm:"type:text"`
}
