package models

import "time"

// Habit frequencies. A habit is expected to be completed once per period.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// ValidFrequency reports whether s is one of the supported cadences.
func ValidFrequency(s string) bool {
	return s == FrequencyDaily || s == FrequencyWeekly || s == FrequencyMonthly
}

// Habit represents a tracked habit owned by exactly one user.
type Habit struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Frequency   string    `gorm:"size:16;not null;default:'daily'" json:"frequency"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
