package remote

import (
	"context"

	"github.com/habitflow/habitflow/models"
)

// defaultCatalog is the achievement set installed on an empty database.
// Streak thresholds line up with the milestone notifications.
var defaultCatalog = []models.Achievement{
	{Name: "First Step", Description: "Complete a habit for the first time", Icon: "🌱", Type: models.AchievementCompletion, RequirementType: models.RequirementTotalCompletions, RequirementValue: 1, Points: 5},
	{Name: "Getting Started", Description: "Reach a 3-day streak", Icon: "🔥", Type: models.AchievementStreak, RequirementType: models.RequirementCurrentStreak, RequirementValue: 3, Points: 10},
	{Name: "One Week Strong", Description: "Reach a 7-day streak", Icon: "💪", Type: models.AchievementStreak, RequirementType: models.RequirementCurrentStreak, RequirementValue: 7, Points: 25},
	{Name: "Fortnight Focus", Description: "Reach a 14-day streak", Icon: "🎯", Type: models.AchievementStreak, RequirementType: models.RequirementCurrentStreak, RequirementValue: 14, Points: 50},
	{Name: "Monthly Master", Description: "Reach a 30-day streak", Icon: "🏆", Type: models.AchievementStreak, RequirementType: models.RequirementCurrentStreak, RequirementValue: 30, Points: 100},
	{Name: "Unstoppable", Description: "Reach a 60-day streak", Icon: "🚀", Type: models.AchievementStreak, RequirementType: models.RequirementBestStreak, RequirementValue: 60, Points: 200},
	{Name: "Centurion", Description: "Reach a 100-day streak", Icon: "💎", Type: models.AchievementStreak, RequirementType: models.RequirementBestStreak, RequirementValue: 100, Points: 500},
	{Name: "Ten Times", Description: "Record 10 completions in total", Icon: "✅", Type: models.AchievementCompletion, RequirementType: models.RequirementTotalCompletions, RequirementValue: 10, Points: 15},
	{Name: "Half Century", Description: "Record 50 completions in total", Icon: "⭐", Type: models.AchievementCompletion, RequirementType: models.RequirementTotalCompletions, RequirementValue: 50, Points: 75},
	{Name: "Completionist", Description: "Record 500 completions in total", Icon: "👑", Type: models.AchievementMilestone, RequirementType: models.RequirementTotalCompletions, RequirementValue: 500, Points: 300},
	{Name: "Collector", Description: "Track 5 active habits at once", Icon: "📚", Type: models.AchievementConsistency, RequirementType: models.RequirementHabitsCount, RequirementValue: 5, Points: 30},
}

// EnsureAchievementCatalog installs the default achievement definitions when
// the table is empty. Existing rows are never modified.
func (s *Service) EnsureAchievementCatalog(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Achievement{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	rows := make([]models.Achievement, len(defaultCatalog))
	copy(rows, defaultCatalog)
	for i := range rows {
		rows[i].IsActive = true
	}
	return s.db.WithContext(ctx).Create(&rows).Error
}
