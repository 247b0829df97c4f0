// Package analytics derives weekly/monthly series and dashboard statistics
// from a snapshot of one user's habits, completions and streaks. Everything
// here is a pure function of the snapshot and the supplied reference time;
// weeks start on Sunday and all boundaries use the reference time's location.
package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/habitflow/habitflow/models"
)

// Default trailing window sizes for the period series.
const (
	DefaultWeeks     = 8
	DefaultMonths    = 6
	DefaultChartDays = 30
)

// Snapshot is the read-only input every aggregation runs over.
type Snapshot struct {
	Habits      []models.Habit
	Completions []models.HabitCompletion
	Streaks     []models.HabitStreak
}

// PeriodCompletion is one bucket of a weekly or monthly series.
type PeriodCompletion struct {
	Label       string  `json:"label"`
	Completions int     `json:"completions"`
	Expected    int     `json:"expected"`
	Percentage  float64 `json:"percentage"`
}

// HabitAnalytics bundles everything the per-habit analytics view shows.
type HabitAnalytics struct {
	Habit              models.Habit        `json:"habit"`
	Streak             *models.HabitStreak `json:"streak"`
	WeeklyCompletions  []PeriodCompletion  `json:"weekly_completions"`
	MonthlyCompletions []PeriodCompletion  `json:"monthly_completions"`
	TotalCompletions   int                 `json:"total_completions"`
	CompletionRate     float64             `json:"completion_rate"`
}

// DashboardStats aggregates across all active habits.
type DashboardStats struct {
	TotalActiveHabits     int     `json:"total_active_habits"`
	CompletionsToday      int     `json:"completions_today"`
	AverageStreak         float64 `json:"average_streak"`
	BestStreak            int     `json:"best_streak"`
	WeeklyCompletionRate  float64 `json:"weekly_completion_rate"`
	MonthlyCompletionRate float64 `json:"monthly_completion_rate"`
	TotalCompletions      int     `json:"total_completions"`
}

// ChartPoint is one day of the completion chart.
type ChartPoint struct {
	Date        string `json:"date"`
	Label       string `json:"label"`
	Completions int    `json:"completions"`
}

// StreakChart lists current and best streaks per habit for the streak chart.
type StreakChart struct {
	Labels         []string `json:"labels"`
	CurrentStreaks []int    `json:"current_streaks"`
	BestStreaks    []int    `json:"best_streaks"`
}

// WeeklyCompletions computes the trailing weeks series for one habit, ending
// at the current Sunday-start week.
func WeeklyCompletions(snap Snapshot, habitID uint, weeks int, now time.Time) []PeriodCompletion {
	if weeks <= 0 {
		weeks = DefaultWeeks
	}
	habit, ok := findHabit(snap.Habits, habitID)
	if !ok {
		return nil
	}

	today := dateOnly(now)
	out := make([]PeriodCompletion, 0, weeks)
	for i := weeks - 1; i >= 0; i-- {
		weekStart := today.AddDate(0, 0, -int(today.Weekday())-i*7)
		weekEnd := weekStart.AddDate(0, 0, 6)

		count := countInWindow(snap.Completions, habitID, weekStart, weekEnd)
		expected := weeklyExpected(habit.Frequency)
		out = append(out, PeriodCompletion{
			Label:       weekLabel(weekStart, weekEnd),
			Completions: count,
			Expected:    expected,
			Percentage:  percentage(count, expected),
		})
	}
	return out
}

// WeeklyOverview aggregates the trailing weeks series over all active habits.
// Counts and expectations are summed per week.
func WeeklyOverview(snap Snapshot, weeks int, now time.Time) []PeriodCompletion {
	if weeks <= 0 {
		weeks = DefaultWeeks
	}
	today := dateOnly(now)
	out := make([]PeriodCompletion, 0, weeks)
	for i := weeks - 1; i >= 0; i-- {
		weekStart := today.AddDate(0, 0, -int(today.Weekday())-i*7)
		weekEnd := weekStart.AddDate(0, 0, 6)

		count := countInWindow(snap.Completions, 0, weekStart, weekEnd)
		expected := 0
		for _, habit := range snap.Habits {
			if habit.IsActive {
				expected += weeklyExpected(habit.Frequency)
			}
		}
		out = append(out, PeriodCompletion{
			Label:       weekLabel(weekStart, weekEnd),
			Completions: count,
			Expected:    expected,
			Percentage:  percentage(count, expected),
		})
	}
	return out
}

// MonthlyOverview aggregates the trailing month series over all active habits.
func MonthlyOverview(snap Snapshot, months int, now time.Time) []PeriodCompletion {
	if months <= 0 {
		months = DefaultMonths
	}
	out := make([]PeriodCompletion, 0, months)
	for i := months - 1; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, -1)
		daysInMonth := monthEnd.Day()

		count := countInWindow(snap.Completions, 0, monthStart, monthEnd)
		expected := 0
		for _, habit := range snap.Habits {
			if habit.IsActive {
				expected += monthlyExpected(habit.Frequency, daysInMonth)
			}
		}
		out = append(out, PeriodCompletion{
			Label:       monthStart.Format("Jan 2006"),
			Completions: count,
			Expected:    expected,
			Percentage:  percentage(count, expected),
		})
	}
	return out
}

// MonthlyCompletions computes the trailing calendar-month series for one habit.
func MonthlyCompletions(snap Snapshot, habitID uint, months int, now time.Time) []PeriodCompletion {
	if months <= 0 {
		months = DefaultMonths
	}
	habit, ok := findHabit(snap.Habits, habitID)
	if !ok {
		return nil
	}

	out := make([]PeriodCompletion, 0, months)
	for i := months - 1; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, -1)
		daysInMonth := monthEnd.Day()

		count := countInWindow(snap.Completions, habitID, monthStart, monthEnd)
		expected := monthlyExpected(habit.Frequency, daysInMonth)
		out = append(out, PeriodCompletion{
			Label:       monthStart.Format("Jan 2006"),
			Completions: count,
			Expected:    expected,
			Percentage:  percentage(count, expected),
		})
	}
	return out
}

// ForHabit bundles streak, both series, the all-time count and the overall
// completion rate derived from days since creation.
func ForHabit(snap Snapshot, habitID uint, now time.Time) (HabitAnalytics, bool) {
	habit, ok := findHabit(snap.Habits, habitID)
	if !ok {
		return HabitAnalytics{}, false
	}

	total := 0
	for _, c := range snap.Completions {
		if c.HabitID == habitID {
			total++
		}
	}

	daysSinceCreation := int(math.Ceil(now.Sub(habit.CreatedAt).Hours() / 24))
	if daysSinceCreation < 1 {
		daysSinceCreation = 1
	}
	expected := lifetimeExpected(habit.Frequency, daysSinceCreation)

	result := HabitAnalytics{
		Habit:              habit,
		WeeklyCompletions:  WeeklyCompletions(snap, habitID, DefaultWeeks, now),
		MonthlyCompletions: MonthlyCompletions(snap, habitID, DefaultMonths, now),
		TotalCompletions:   total,
		CompletionRate:     percentage(total, expected),
	}
	for i := range snap.Streaks {
		if snap.Streaks[i].HabitID == habitID {
			st := snap.Streaks[i]
			result.Streak = &st
			break
		}
	}
	return result, true
}

// Dashboard aggregates across all active habits. Every rate degrades to 0
// when there is nothing to measure; no division ever faults.
func Dashboard(snap Snapshot, now time.Time) DashboardStats {
	today := dateOnly(now)

	var stats DashboardStats
	stats.TotalCompletions = len(snap.Completions)

	active := make([]models.Habit, 0, len(snap.Habits))
	for _, h := range snap.Habits {
		if h.IsActive {
			active = append(active, h)
		}
	}
	stats.TotalActiveHabits = len(active)

	for _, c := range snap.Completions {
		if sameDay(c.CompletedDate, today) {
			stats.CompletionsToday++
		}
	}

	if len(snap.Streaks) > 0 {
		sum := 0
		for _, st := range snap.Streaks {
			sum += st.CurrentStreak
			if st.BestStreak > stats.BestStreak {
				stats.BestStreak = st.BestStreak
			}
		}
		stats.AverageStreak = float64(sum) / float64(len(snap.Streaks))
	}

	weekStart := today.AddDate(0, 0, -int(today.Weekday()))
	weekEnd := weekStart.AddDate(0, 0, 6)
	weekCount := countInWindow(snap.Completions, 0, weekStart, weekEnd)
	weekExpected := 0
	for _, h := range active {
		weekExpected += weeklyExpected(h.Frequency)
	}
	stats.WeeklyCompletionRate = percentage(weekCount, weekExpected)

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, -1)
	monthCount := countInWindow(snap.Completions, 0, monthStart, monthEnd)
	monthExpected := 0
	for _, h := range active {
		monthExpected += monthlyExpected(h.Frequency, monthEnd.Day())
	}
	stats.MonthlyCompletionRate = percentage(monthCount, monthExpected)

	return stats
}

// CompletionChart counts completions per day over the trailing window,
// optionally restricted to one habit (habitID 0 means all).
func CompletionChart(snap Snapshot, habitID uint, days int, now time.Time) []ChartPoint {
	if days <= 0 {
		days = DefaultChartDays
	}
	today := dateOnly(now)

	out := make([]ChartPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		count := 0
		for _, c := range snap.Completions {
			if habitID != 0 && c.HabitID != habitID {
				continue
			}
			if sameDay(c.CompletedDate, day) {
				count++
			}
		}
		out = append(out, ChartPoint{
			Date:        day.Format("2006-01-02"),
			Label:       day.Format("Jan 2"),
			Completions: count,
		})
	}
	return out
}

// Streaks builds the per-habit streak chart in habit cache order.
func Streaks(snap Snapshot) StreakChart {
	chart := StreakChart{
		Labels:         make([]string, 0, len(snap.Habits)),
		CurrentStreaks: make([]int, 0, len(snap.Habits)),
		BestStreaks:    make([]int, 0, len(snap.Habits)),
	}
	byHabit := make(map[uint]models.HabitStreak, len(snap.Streaks))
	for _, st := range snap.Streaks {
		byHabit[st.HabitID] = st
	}
	for _, h := range snap.Habits {
		st := byHabit[h.ID]
		chart.Labels = append(chart.Labels, h.Title)
		chart.CurrentStreaks = append(chart.CurrentStreaks, st.CurrentStreak)
		chart.BestStreaks = append(chart.BestStreaks, st.BestStreak)
	}
	return chart
}

// UserStats extracts the aggregate numbers the achievement evaluator keys on.
func UserStats(snap Snapshot) (totalCompletions, activeHabits, maxCurrentStreak, maxBestStreak int) {
	totalCompletions = len(snap.Completions)
	for _, h := range snap.Habits {
		if h.IsActive {
			activeHabits++
		}
	}
	for _, st := range snap.Streaks {
		if st.CurrentStreak > maxCurrentStreak {
			maxCurrentStreak = st.CurrentStreak
		}
		if st.BestStreak > maxBestStreak {
			maxBestStreak = st.BestStreak
		}
	}
	return totalCompletions, activeHabits, maxCurrentStreak, maxBestStreak
}

// weeklyExpected is the expected completion count inside one week window.
func weeklyExpected(frequency string) int {
	switch frequency {
	case models.FrequencyDaily:
		return 7
	case models.FrequencyWeekly:
		return 1
	default:
		return 0
	}
}

// monthlyExpected is the expected completion count inside one month window.
func monthlyExpected(frequency string, daysInMonth int) int {
	switch frequency {
	case models.FrequencyDaily:
		return daysInMonth
	case models.FrequencyWeekly:
		return (daysInMonth + 6) / 7
	case models.FrequencyMonthly:
		return 1
	default:
		return 0
	}
}

// lifetimeExpected is the expected count since the habit was created.
func lifetimeExpected(frequency string, days int) int {
	switch frequency {
	case models.FrequencyDaily:
		return days
	case models.FrequencyWeekly:
		return (days + 6) / 7
	case models.FrequencyMonthly:
		return (days + 29) / 30
	default:
		return 0
	}
}

func percentage(count, expected int) float64 {
	if expected <= 0 {
		return 0
	}
	return float64(count) / float64(expected) * 100
}

// countInWindow counts completions inside [start, end], habitID 0 meaning all.
func countInWindow(completions []models.HabitCompletion, habitID uint, start, end time.Time) int {
	count := 0
	for _, c := range completions {
		if habitID != 0 && c.HabitID != habitID {
			continue
		}
		day := dateOnly(c.CompletedDate)
		if !day.Before(start) && !day.After(end) {
			count++
		}
	}
	return count
}

func weekLabel(start, end time.Time) string {
	return fmt.Sprintf("%s %d-%d", start.Format("Jan"), start.Day(), end.Day())
}

func findHabit(habits []models.Habit, habitID uint) (models.Habit, bool) {
	for _, h := range habits {
		if h.ID == habitID {
			return h, true
		}
	}
	return models.Habit{}, false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
