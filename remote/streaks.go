package remote

import (
	"sort"
	"time"

	"github.com/habitflow/habitflow/models"
)

// periodStart maps a completion date onto the canonical start of its period:
// the day itself, the Sunday of its week, or the first of its month.
func periodStart(t time.Time, frequency string) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch frequency {
	case models.FrequencyWeekly:
		return day.AddDate(0, 0, -int(day.Weekday()))
	case models.FrequencyMonthly:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	default:
		return day
	}
}

// prevPeriod steps one period backwards.
func prevPeriod(start time.Time, frequency string) time.Time {
	switch frequency {
	case models.FrequencyWeekly:
		return start.AddDate(0, 0, -7)
	case models.FrequencyMonthly:
		return start.AddDate(0, -1, 0)
	default:
		return start.AddDate(0, 0, -1)
	}
}

// computeStreak derives the current and best streak from a habit's completion
// dates. The current streak is the run of consecutive completed periods ending
// at the most recent completed period; best is the longest run ever.
func computeStreak(dates []time.Time, frequency string) (current, best int, last *time.Time) {
	if len(dates) == 0 {
		return 0, 0, nil
	}

	// Dedup onto period starts: multiple completions in one weekly/monthly
	// period count once.
	seen := make(map[string]time.Time, len(dates))
	var latestDay time.Time
	for _, d := range dates {
		p := periodStart(d, frequency)
		seen[p.Format("2006-01-02")] = p
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
		if day.After(latestDay) {
			latestDay = day
		}
	}

	periods := make([]time.Time, 0, len(seen))
	for _, p := range seen {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })

	run := 1
	best = 1
	for i := 1; i < len(periods); i++ {
		if periods[i-1].Equal(prevPeriod(periods[i], frequency)) {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	// The final run ends at the most recent completed period.
	current = run

	last = &latestDay
	return current, best, last
}
