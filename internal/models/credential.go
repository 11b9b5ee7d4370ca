package models

import "time"

// Credential is an auth identity. Only the auth service reads or writes it.
type Credential struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	FirebaseUID  *string   `gorm:"uniqueIndex"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Credential) TableName() string {
	return "auth_identities"
}
