package models

import "time"

// HabitCompletion records one completed calendar day for a habit.
// The unique index on (habit_id, completed_date) backs the at-most-one-per-day
// invariant even when two clients race past the repository's local check.
type HabitCompletion struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	HabitID       uint      `gorm:"index;index:idx_habit_day,unique;not null" json:"habit_id"`
	UserID        uint      `gorm:"index;not null" json:"user_id"`
	CompletedDate time.Time `gorm:"index:idx_habit_day,unique;type:date;not null" json:"completed_date"`
	Notes         string    `gorm:"size:512" json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
}
