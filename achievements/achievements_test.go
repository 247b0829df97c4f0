package achievements

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitflow/habitflow/models"
)

func testCatalog() []models.Achievement {
	return []models.Achievement{
		{ID: 1, Name: "First Step", Type: models.AchievementCompletion, RequirementType: models.RequirementTotalCompletions, RequirementValue: 1, Points: 5, IsActive: true},
		{ID: 2, Name: "Getting Started", Type: models.AchievementStreak, RequirementType: models.RequirementCurrentStreak, RequirementValue: 3, Points: 10, IsActive: true},
		{ID: 3, Name: "One Week Strong", Type: models.AchievementStreak, RequirementType: models.RequirementCurrentStreak, RequirementValue: 7, Points: 25, IsActive: true},
		{ID: 4, Name: "Collector", Type: models.AchievementConsistency, RequirementType: models.RequirementHabitsCount, RequirementValue: 5, Points: 30, IsActive: true},
		{ID: 5, Name: "Retired", Type: models.AchievementMilestone, RequirementType: models.RequirementTotalCompletions, RequirementValue: 1, Points: 1, IsActive: false},
	}
}

func TestProgressPercentages(t *testing.T) {
	stats := UserStats{TotalCompletions: 10, ActiveHabits: 2, MaxCurrentStreak: 3, MaxBestStreak: 6}
	earned := []models.UserAchievement{
		{ID: 1, AchievementID: 1, EarnedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
	}

	entries := Progress(testCatalog(), earned, stats)
	require.Len(t, entries, 5)

	byID := map[uint]WithProgress{}
	for _, e := range entries {
		byID[e.ID] = e
	}

	assert.True(t, byID[1].IsEarned)
	assert.Equal(t, float64(100), byID[1].ProgressPercentage)

	assert.False(t, byID[2].IsEarned)
	assert.Equal(t, 3, byID[2].CurrentProgress)
	assert.Equal(t, float64(100), byID[2].ProgressPercentage, "progress caps at 100 even unearned")

	assert.InDelta(t, 3.0/7.0*100, byID[3].ProgressPercentage, 0.001)
	assert.InDelta(t, 40.0, byID[4].ProgressPercentage, 0.001)
}

func TestEvaluateReturnsNewlyCrossedOnly(t *testing.T) {
	stats := UserStats{TotalCompletions: 1, MaxCurrentStreak: 3}
	earned := []models.UserAchievement{{AchievementID: 1}}

	newly := Evaluate(testCatalog(), earned, stats)
	require.Len(t, newly, 1)
	assert.Equal(t, uint(2), newly[0].ID)
}

func TestEvaluateSkipsInactive(t *testing.T) {
	stats := UserStats{TotalCompletions: 100, ActiveHabits: 10, MaxCurrentStreak: 100, MaxBestStreak: 100}
	newly := Evaluate(testCatalog(), nil, stats)

	for _, a := range newly {
		assert.NotEqual(t, uint(5), a.ID, "inactive entries are never awarded")
	}
	assert.Len(t, newly, 4)
}

func TestGroupByType(t *testing.T) {
	entries := Progress(testCatalog(), nil, UserStats{})
	groups := GroupByType(entries)

	assert.Len(t, groups[models.AchievementStreak], 2)
	assert.Len(t, groups[models.AchievementCompletion], 1)
	assert.Len(t, groups[models.AchievementConsistency], 1)
	assert.Len(t, groups[models.AchievementMilestone], 1)
}

func TestTotalPointsAndRecent(t *testing.T) {
	earned := []models.UserAchievement{
		{ID: 1, AchievementID: 1, EarnedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Achievement: models.Achievement{Points: 5}},
		{ID: 2, AchievementID: 2, EarnedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Achievement: models.Achievement{Points: 10}},
		{ID: 3, AchievementID: 3, EarnedAt: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), Achievement: models.Achievement{Points: 25}},
	}

	assert.Equal(t, 40, TotalPoints(earned))

	recent := RecentEarned(earned, 2)
	require.Len(t, recent, 2)
	assert.Equal(t, uint(2), recent[0].ID)
	assert.Equal(t, uint(3), recent[1].ID)
}
