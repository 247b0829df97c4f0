package models

import "time"

// UserAchievement marks an achievement as earned by a user. Written only by
// the server-side evaluation that runs inside the completion transaction;
// clients read and re-fetch to notice newly earned rows.
type UserAchievement struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	UserID        uint        `gorm:"index;index:idx_user_achievement,unique;not null" json:"user_id"`
	AchievementID uint        `gorm:"index:idx_user_achievement,unique;not null" json:"achievement_id"`
	HabitID       *uint       `gorm:"index" json:"habit_id,omitempty"`
	EarnedAt      time.Time   `gorm:"not null" json:"earned_at"`
	ProgressValue int         `json:"progress_value"`
	CreatedAt     time.Time   `json:"created_at"`
	Achievement   Achievement `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"achievement"`
}
