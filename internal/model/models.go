package model

import (
	"time"

	"gorm.io/datatypes"
)

type Admin struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"`
	DisplayName  string
	Status       string `gorm:"default:active;not null"` // active/disabled
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ScoreRun is one scored input, kept so results can be looked up later.
type ScoreRun struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Code      string         `gorm:"size:16;unique;not null" json:"code"`
	Variant   string         `gorm:"size:16;not null" json:"variant"`
	HandCount int            `json:"handCount"`
	Total     int64          `json:"total"`
	InputHash string         `gorm:"size:16;index" json:"inputHash"`
	HandsJSON datatypes.JSON `json:"hands"` // ranked hands, strongest first
	CreatedAt time.Time      `json:"createdAt"`
}
