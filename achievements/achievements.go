// Package achievements compares a user's aggregate statistics against the
// static achievement catalog. The earned list shown to clients always comes
// from the data service; Evaluate backs the server-side awarding step that
// runs after each completion.
package achievements

import (
	"sort"

	"github.com/habitflow/habitflow/models"
)

// UserStats are the aggregate numbers thresholds are measured against.
type UserStats struct {
	TotalCompletions int
	ActiveHabits     int
	MaxCurrentStreak int
	MaxBestStreak    int
}

// WithProgress is a catalog entry annotated with the user's earned status or
// progress towards it.
type WithProgress struct {
	models.Achievement
	IsEarned           bool    `json:"is_earned"`
	EarnedAt           string  `json:"earned_at,omitempty"`
	HabitID            *uint   `json:"habit_id,omitempty"`
	CurrentProgress    int     `json:"current_progress"`
	ProgressPercentage float64 `json:"progress_percentage"`
}

// progressFor resolves the stat an achievement's requirement type tracks.
func progressFor(a models.Achievement, stats UserStats) int {
	switch a.RequirementType {
	case models.RequirementTotalCompletions:
		return stats.TotalCompletions
	case models.RequirementHabitsCount:
		return stats.ActiveHabits
	case models.RequirementCurrentStreak:
		return stats.MaxCurrentStreak
	case models.RequirementBestStreak:
		return stats.MaxBestStreak
	default:
		return 0
	}
}

// Progress merges the catalog with the user's earned rows and current stats.
// Unearned entries carry min(progress/requirement*100, 100).
func Progress(catalog []models.Achievement, earned []models.UserAchievement, stats UserStats) []WithProgress {
	earnedByID := make(map[uint]models.UserAchievement, len(earned))
	for _, ua := range earned {
		earnedByID[ua.AchievementID] = ua
	}

	out := make([]WithProgress, 0, len(catalog))
	for _, a := range catalog {
		entry := WithProgress{Achievement: a}
		if ua, ok := earnedByID[a.ID]; ok {
			entry.IsEarned = true
			entry.EarnedAt = ua.EarnedAt.Format("2006-01-02T15:04:05Z07:00")
			entry.HabitID = ua.HabitID
			entry.CurrentProgress = a.RequirementValue
			entry.ProgressPercentage = 100
		} else {
			progress := progressFor(a, stats)
			pct := float64(progress) / float64(max(a.RequirementValue, 1)) * 100
			if pct > 100 {
				pct = 100
			}
			entry.CurrentProgress = progress
			entry.ProgressPercentage = pct
		}
		out = append(out, entry)
	}
	return out
}

// Evaluate returns the catalog entries whose thresholds the stats meet but
// which the user has not earned yet. Used by the awarding step.
func Evaluate(catalog []models.Achievement, earned []models.UserAchievement, stats UserStats) []models.Achievement {
	earnedByID := make(map[uint]bool, len(earned))
	for _, ua := range earned {
		earnedByID[ua.AchievementID] = true
	}

	var newly []models.Achievement
	for _, a := range catalog {
		if !a.IsActive || earnedByID[a.ID] {
			continue
		}
		if progressFor(a, stats) >= a.RequirementValue {
			newly = append(newly, a)
		}
	}
	return newly
}

// GroupByType buckets annotated achievements by catalog type. Derived view,
// never stored.
func GroupByType(entries []WithProgress) map[string][]WithProgress {
	grouped := make(map[string][]WithProgress)
	for _, e := range entries {
		grouped[e.Type] = append(grouped[e.Type], e)
	}
	return grouped
}

// TotalPoints sums the point values of the earned rows.
func TotalPoints(earned []models.UserAchievement) int {
	total := 0
	for _, ua := range earned {
		total += ua.Achievement.Points
	}
	return total
}

// RecentEarned returns up to n earned rows, most recent first.
func RecentEarned(earned []models.UserAchievement, n int) []models.UserAchievement {
	out := make([]models.UserAchievement, len(earned))
	copy(out, earned)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EarnedAt.After(out[j].EarnedAt)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
