package models

import "time"

// HabitStreak is the server-maintained streak row for a habit. Clients treat it
// as derived state: it is recomputed inside the completion transaction and only
// ever read back.
type HabitStreak struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	HabitID           uint       `gorm:"uniqueIndex;not null" json:"habit_id"`
	UserID            uint       `gorm:"index;not null" json:"user_id"`
	CurrentStreak     int        `gorm:"not null;default:0" json:"current_streak"`
	BestStreak        int        `gorm:"not null;default:0" json:"best_streak"`
	LastCompletedDate *time.Time `gorm:"type:date" json:"last_completed_date"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
