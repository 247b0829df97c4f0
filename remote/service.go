// Package remote is the data service every session store mediates its CRUD
// through. All operations are scoped by an equality filter on the owning user
// (or habit for sub-resources); insert and update return the persisted row.
// Completion writes recompute the habit's streak row in the same transaction,
// and completion inserts run the achievement evaluation afterwards.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/habitflow/habitflow/achievements"
	"github.com/habitflow/habitflow/habits"
	"github.com/habitflow/habitflow/models"
)

// ErrDuplicateCompletion is returned when the (habit, day) unique index
// rejects a second same-day insert that raced past the cache check.
var ErrDuplicateCompletion = errors.New("completion already recorded for this day")

// Service implements habits.DataService over gorm.
type Service struct {
	db *gorm.DB
}

// NewService wraps an initialized database handle.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ListHabits returns the user's habits, most recently created first.
func (s *Service) ListHabits(ctx context.Context, userID uint) ([]models.Habit, error) {
	var out []models.Habit
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// ListCompletions returns the user's completions, newest first.
func (s *Service) ListCompletions(ctx context.Context, userID uint) ([]models.HabitCompletion, error) {
	var out []models.HabitCompletion
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_date DESC, id DESC").
		Find(&out).Error
	return out, err
}

// ListStreaks returns the user's streak rows.
func (s *Service) ListStreaks(ctx context.Context, userID uint) ([]models.HabitStreak, error) {
	var out []models.HabitStreak
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("habit_id ASC").
		Find(&out).Error
	return out, err
}

// CreateHabit inserts the habit and returns the persisted row.
func (s *Service) CreateHabit(ctx context.Context, habit models.Habit) (models.Habit, error) {
	now := time.Now()
	habit.CreatedAt = now
	habit.UpdatedAt = now
	if err := s.db.WithContext(ctx).Create(&habit).Error; err != nil {
		return models.Habit{}, err
	}
	return habit, nil
}

// UpdateHabit applies the non-nil fields and returns the refreshed row.
func (s *Service) UpdateHabit(ctx context.Context, userID, habitID uint, updates habits.HabitUpdate) (models.Habit, error) {
	fields := map[string]interface{}{"updated_at": time.Now()}
	if updates.Title != nil {
		fields["title"] = *updates.Title
	}
	if updates.Description != nil {
		fields["description"] = *updates.Description
	}
	if updates.Frequency != nil {
		fields["frequency"] = *updates.Frequency
	}
	if updates.IsActive != nil {
		fields["is_active"] = *updates.IsActive
	}

	res := s.db.WithContext(ctx).Model(&models.Habit{}).
		Where("id = ? AND user_id = ?", habitID, userID).
		Updates(fields)
	if res.Error != nil {
		return models.Habit{}, res.Error
	}
	if res.RowsAffected == 0 {
		return models.Habit{}, habits.ErrHabitNotFound
	}

	var habit models.Habit
	if err := s.db.WithContext(ctx).First(&habit, habitID).Error; err != nil {
		return models.Habit{}, err
	}
	return habit, nil
}

// DeleteHabit removes the habit and its completions and streak row.
func (s *Service) DeleteHabit(ctx context.Context, userID, habitID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", habitID, userID).Delete(&models.Habit{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return habits.ErrHabitNotFound
		}
		if err := tx.Where("habit_id = ?", habitID).Delete(&models.HabitCompletion{}).Error; err != nil {
			return err
		}
		return tx.Where("habit_id = ?", habitID).Delete(&models.HabitStreak{}).Error
	})
}

// AddCompletion inserts a completion and recomputes the streak row inside one
// transaction. The unique (habit_id, completed_date) index is the backstop
// against same-day duplicates racing past the client-side check.
func (s *Service) AddCompletion(ctx context.Context, completion models.HabitCompletion) (models.HabitCompletion, error) {
	completion.CreatedAt = time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var habit models.Habit
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", completion.HabitID, completion.UserID).
			First(&habit).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return habits.ErrHabitNotFound
			}
			return err
		}

		var existing models.HabitCompletion
		err := tx.Where("habit_id = ? AND completed_date = ?", completion.HabitID, completion.CompletedDate).
			First(&existing).Error
		if err == nil {
			return ErrDuplicateCompletion
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&completion).Error; err != nil {
			return err
		}
		return s.recomputeStreak(tx, habit)
	})
	if err != nil {
		return models.HabitCompletion{}, err
	}
	return completion, nil
}

// RemoveCompletion deletes the completion for the given day and recomputes the
// streak row.
func (s *Service) RemoveCompletion(ctx context.Context, userID, habitID uint, day time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var habit models.Habit
		if err := tx.Where("id = ? AND user_id = ?", habitID, userID).First(&habit).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return habits.ErrHabitNotFound
			}
			return err
		}

		res := tx.Where("habit_id = ? AND user_id = ? AND completed_date = ?", habitID, userID, day).
			Delete(&models.HabitCompletion{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return habits.ErrNoCompletion
		}
		return s.recomputeStreak(tx, habit)
	})
}

// recomputeStreak rebuilds the streak row from the habit's full completion
// history. The row is derived state; clients only ever read it.
func (s *Service) recomputeStreak(tx *gorm.DB, habit models.Habit) error {
	var completions []models.HabitCompletion
	if err := tx.Where("habit_id = ?", habit.ID).Find(&completions).Error; err != nil {
		return err
	}

	dates := make([]time.Time, 0, len(completions))
	for _, c := range completions {
		dates = append(dates, c.CompletedDate)
	}
	current, best, last := computeStreak(dates, habit.Frequency)

	streak := models.HabitStreak{
		HabitID:           habit.ID,
		UserID:            habit.UserID,
		CurrentStreak:     current,
		BestStreak:        best,
		LastCompletedDate: last,
		UpdatedAt:         time.Now(),
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "habit_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"current_streak":      streak.CurrentStreak,
			"best_streak":         streak.BestStreak,
			"last_completed_date": streak.LastCompletedDate,
			"updated_at":          streak.UpdatedAt,
		}),
	}).Create(&streak).Error
}

// ListAchievements returns the active catalog ordered by ascending threshold.
func (s *Service) ListAchievements(ctx context.Context) ([]models.Achievement, error) {
	var out []models.Achievement
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("requirement_value ASC").
		Find(&out).Error
	return out, err
}

// ListUserAchievements returns the user's earned rows with their catalog
// entries, most recently earned first.
func (s *Service) ListUserAchievements(ctx context.Context, userID uint) ([]models.UserAchievement, error) {
	var out []models.UserAchievement
	err := s.db.WithContext(ctx).
		Preload("Achievement").
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&out).Error
	return out, err
}

// UserStats gathers the aggregate numbers achievement thresholds track.
func (s *Service) UserStats(ctx context.Context, userID uint) (achievements.UserStats, error) {
	var stats achievements.UserStats

	var completions int64
	if err := s.db.WithContext(ctx).Model(&models.HabitCompletion{}).
		Where("user_id = ?", userID).Count(&completions).Error; err != nil {
		return stats, err
	}
	stats.TotalCompletions = int(completions)

	var activeHabits int64
	if err := s.db.WithContext(ctx).Model(&models.Habit{}).
		Where("user_id = ? AND is_active = ?", userID, true).Count(&activeHabits).Error; err != nil {
		return stats, err
	}
	stats.ActiveHabits = int(activeHabits)

	var streaks []models.HabitStreak
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).Find(&streaks).Error; err != nil {
		return stats, err
	}
	for _, st := range streaks {
		if st.CurrentStreak > stats.MaxCurrentStreak {
			stats.MaxCurrentStreak = st.CurrentStreak
		}
		if st.BestStreak > stats.MaxBestStreak {
			stats.MaxBestStreak = st.BestStreak
		}
	}
	return stats, nil
}

// CheckForNewAchievements evaluates the catalog against the user's current
// stats and awards anything newly crossed. Runs after every completion; its
// failure never affects the completion itself.
func (s *Service) CheckForNewAchievements(ctx context.Context, userID uint) error {
	catalog, err := s.ListAchievements(ctx)
	if err != nil {
		return err
	}
	earned, err := s.ListUserAchievements(ctx, userID)
	if err != nil {
		return err
	}
	stats, err := s.UserStats(ctx, userID)
	if err != nil {
		return err
	}

	newly := achievements.Evaluate(catalog, earned, stats)
	if len(newly) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]models.UserAchievement, 0, len(newly))
	for _, a := range newly {
		rows = append(rows, models.UserAchievement{
			UserID:        userID,
			AchievementID: a.ID,
			EarnedAt:      now,
			ProgressValue: a.RequirementValue,
			CreatedAt:     now,
		})
	}
	// A concurrent evaluation may have awarded the same row already.
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

// GetOrCreateProfile loads the user's profile, creating the default row on
// first access.
func (s *Service) GetOrCreateProfile(ctx context.Context, userID uint, email string) (models.UserProfile, error) {
	var profile models.UserProfile
	err := s.db.WithContext(ctx).First(&profile, userID).Error
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.UserProfile{}, err
	}

	profile = models.DefaultProfile(userID, email)
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
		return models.UserProfile{}, err
	}
	return profile, nil
}

// UpdateProfile applies field updates and returns the refreshed row.
// Map-based updates bypass gorm's serializer, so the reminder-days list is
// marshalled here.
func (s *Service) UpdateProfile(ctx context.Context, userID uint, fields map[string]interface{}) (models.UserProfile, error) {
	if days, ok := fields["reminder_days"].([]int); ok {
		encoded, err := json.Marshal(days)
		if err != nil {
			return models.UserProfile{}, err
		}
		fields["reminder_days"] = string(encoded)
	}
	fields["updated_at"] = time.Now()
	res := s.db.WithContext(ctx).Model(&models.UserProfile{}).
		Where("id = ?", userID).
		Updates(fields)
	if res.Error != nil {
		return models.UserProfile{}, res.Error
	}
	if res.RowsAffected == 0 {
		return models.UserProfile{}, gorm.ErrRecordNotFound
	}

	var profile models.UserProfile
	if err := s.db.WithContext(ctx).First(&profile, userID).Error; err != nil {
		return models.UserProfile{}, err
	}
	return profile, nil
}
