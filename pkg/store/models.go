package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence. Email and phone are nullable so the
// unique indexes only apply to accounts that actually carry that contact.
type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Username     string
	Email        *string   `gorm:"uniqueIndex"`
	Phone        *string   `gorm:"uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

// PlanModel stores one saved career plan per user as a JSON document.
type PlanModel struct {
	UserID    string         `gorm:"primaryKey"`
	Plan      datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}
