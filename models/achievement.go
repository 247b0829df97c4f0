package models

import "time"

// Achievement catalog types.
const (
	AchievementStreak      = "streak"
	AchievementCompletion  = "completion"
	AchievementConsistency = "consistency"
	AchievementMilestone   = "milestone"
)

// Requirement types an achievement threshold is measured against.
const (
	RequirementCurrentStreak    = "current_streak"
	RequirementBestStreak       = "best_streak"
	RequirementTotalCompletions = "total_completions"
	RequirementHabitsCount      = "habits_count"
)

// Achievement is a static catalog entry. Read-only at runtime; rows are seeded
// once and toggled via is_active.
type Achievement struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:128;not null" json:"name"`
	Description      string    `gorm:"size:255" json:"description"`
	Icon             string    `gorm:"size:32" json:"icon"`
	Type             string    `gorm:"size:16;not null" json:"type"`
	RequirementType  string    `gorm:"size:32;not null" json:"requirement_type"`
	RequirementValue int       `gorm:"not null" json:"requirement_value"`
	Points           int       `gorm:"not null;default:0" json:"points"`
	IsActive         bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}
