package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitflow/habitflow/models"
)

// now is a Wednesday; the current Sunday-start week runs Mar 1 - Mar 7 2026.
var testNow = time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testSnapshot() Snapshot {
	return Snapshot{
		Habits: []models.Habit{
			{ID: 1, Title: "Run", Frequency: models.FrequencyDaily, IsActive: true, CreatedAt: day(2026, 2, 1)},
			{ID: 2, Title: "Review", Frequency: models.FrequencyWeekly, IsActive: true, CreatedAt: day(2026, 2, 1)},
			{ID: 3, Title: "Budget", Frequency: models.FrequencyMonthly, IsActive: false, CreatedAt: day(2026, 1, 1)},
		},
		Completions: []models.HabitCompletion{
			{ID: 1, HabitID: 1, CompletedDate: day(2026, 3, 2)},
			{ID: 2, HabitID: 1, CompletedDate: day(2026, 3, 3)},
			{ID: 3, HabitID: 1, CompletedDate: day(2026, 3, 4)},
			{ID: 4, HabitID: 2, CompletedDate: day(2026, 3, 2)},
			{ID: 5, HabitID: 1, CompletedDate: day(2026, 2, 25)},
		},
		Streaks: []models.HabitStreak{
			{HabitID: 1, CurrentStreak: 3, BestStreak: 10},
			{HabitID: 2, CurrentStreak: 1, BestStreak: 4},
		},
	}
}

func TestExpectedCounts(t *testing.T) {
	assert.Equal(t, 7, weeklyExpected(models.FrequencyDaily))
	assert.Equal(t, 1, weeklyExpected(models.FrequencyWeekly))
	assert.Equal(t, 0, weeklyExpected(models.FrequencyMonthly))

	assert.Equal(t, 31, monthlyExpected(models.FrequencyDaily, 31))
	assert.Equal(t, 5, monthlyExpected(models.FrequencyWeekly, 31))
	assert.Equal(t, 4, monthlyExpected(models.FrequencyWeekly, 28))
	assert.Equal(t, 1, monthlyExpected(models.FrequencyMonthly, 30))

	assert.Equal(t, 30, lifetimeExpected(models.FrequencyDaily, 30))
	assert.Equal(t, 5, lifetimeExpected(models.FrequencyWeekly, 30))
	assert.Equal(t, 1, lifetimeExpected(models.FrequencyMonthly, 30))
	assert.Equal(t, 2, lifetimeExpected(models.FrequencyMonthly, 31))
}

func TestWeeklyCompletionsSundayStart(t *testing.T) {
	snap := testSnapshot()
	series := WeeklyCompletions(snap, 1, 2, testNow)
	require.Len(t, series, 2)

	// previous week Feb 22 - Feb 28 holds one completion (Feb 25)
	assert.Equal(t, "Feb 22-28", series[0].Label)
	assert.Equal(t, 1, series[0].Completions)
	assert.Equal(t, 7, series[0].Expected)

	// current week Mar 1 - Mar 7 holds three
	assert.Equal(t, "Mar 1-7", series[1].Label)
	assert.Equal(t, 3, series[1].Completions)
	assert.InDelta(t, 3.0/7.0*100, series[1].Percentage, 0.001)
}

func TestWeeklyCompletionsUnknownHabit(t *testing.T) {
	assert.Nil(t, WeeklyCompletions(testSnapshot(), 99, 4, testNow))
}

func TestMonthlyCompletions(t *testing.T) {
	snap := testSnapshot()
	series := MonthlyCompletions(snap, 1, 2, testNow)
	require.Len(t, series, 2)

	assert.Equal(t, "Feb 2026", series[0].Label)
	assert.Equal(t, 1, series[0].Completions)
	assert.Equal(t, 28, series[0].Expected)

	assert.Equal(t, "Mar 2026", series[1].Label)
	assert.Equal(t, 3, series[1].Completions)
	assert.Equal(t, 31, series[1].Expected)
}

func TestDashboard(t *testing.T) {
	snap := testSnapshot()
	stats := Dashboard(snap, testNow)

	assert.Equal(t, 2, stats.TotalActiveHabits)
	assert.Equal(t, 5, stats.TotalCompletions)
	assert.Equal(t, 1, stats.CompletionsToday)
	assert.Equal(t, 10, stats.BestStreak)
	assert.InDelta(t, 2.0, stats.AverageStreak, 0.001)

	// this week: 4 completions, expected 7 (daily) + 1 (weekly) = 8
	assert.InDelta(t, 50.0, stats.WeeklyCompletionRate, 0.001)
	// March: 4 completions, expected 31 + 5 = 36
	assert.InDelta(t, 4.0/36.0*100, stats.MonthlyCompletionRate, 0.001)
}

func TestDashboardEmpty(t *testing.T) {
	stats := Dashboard(Snapshot{}, testNow)
	assert.Zero(t, stats.TotalActiveHabits)
	assert.Zero(t, stats.WeeklyCompletionRate)
	assert.Zero(t, stats.MonthlyCompletionRate)
	assert.Zero(t, stats.AverageStreak)
}

func TestForHabit(t *testing.T) {
	snap := testSnapshot()
	result, ok := ForHabit(snap, 1, testNow)
	require.True(t, ok)

	assert.Equal(t, 4, result.TotalCompletions)
	require.NotNil(t, result.Streak)
	assert.Equal(t, 3, result.Streak.CurrentStreak)
	// created Feb 1, 31 full days elapsed and a partial day rounds up to 32
	assert.InDelta(t, 4.0/32.0*100, result.CompletionRate, 0.001)

	_, ok = ForHabit(snap, 99, testNow)
	assert.False(t, ok)
}

func TestCompletionChart(t *testing.T) {
	snap := testSnapshot()
	points := CompletionChart(snap, 0, 3, testNow)
	require.Len(t, points, 3)

	assert.Equal(t, "2026-03-02", points[0].Date)
	assert.Equal(t, 2, points[0].Completions)
	assert.Equal(t, 1, points[1].Completions)
	assert.Equal(t, "Mar 4", points[2].Label)
	assert.Equal(t, 1, points[2].Completions)

	onlyWeekly := CompletionChart(snap, 2, 3, testNow)
	assert.Equal(t, 1, onlyWeekly[0].Completions)
	assert.Equal(t, 0, onlyWeekly[2].Completions)
}

func TestStreakChartFollowsHabitOrder(t *testing.T) {
	chart := Streaks(testSnapshot())
	assert.Equal(t, []string{"Run", "Review", "Budget"}, chart.Labels)
	assert.Equal(t, []int{3, 1, 0}, chart.CurrentStreaks)
	assert.Equal(t, []int{10, 4, 0}, chart.BestStreaks)
}

func TestWeeklyOverviewAggregates(t *testing.T) {
	snap := testSnapshot()
	series := WeeklyOverview(snap, 1, testNow)
	require.Len(t, series, 1)

	// inactive monthly habit contributes nothing to the expectation
	assert.Equal(t, 4, series[0].Completions)
	assert.Equal(t, 8, series[0].Expected)
}

func TestUserStats(t *testing.T) {
	total, active, maxCurrent, maxBest := UserStats(testSnapshot())
	assert.Equal(t, 5, total)
	assert.Equal(t, 2, active)
	assert.Equal(t, 3, maxCurrent)
	assert.Equal(t, 10, maxBest)
}
