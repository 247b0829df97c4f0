package remote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitflow/habitflow/models"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestComputeStreakDaily(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		current, best, last := computeStreak(nil, models.FrequencyDaily)
		assert.Zero(t, current)
		assert.Zero(t, best)
		assert.Nil(t, last)
	})

	t.Run("three consecutive days", func(t *testing.T) {
		dates := []time.Time{d(2026, 3, 1), d(2026, 3, 2), d(2026, 3, 3)}
		current, best, last := computeStreak(dates, models.FrequencyDaily)
		assert.Equal(t, 3, current)
		assert.Equal(t, 3, best)
		require.NotNil(t, last)
		assert.Equal(t, d(2026, 3, 3), *last)
	})

	t.Run("gap resets current but keeps best", func(t *testing.T) {
		dates := []time.Time{
			d(2026, 2, 1), d(2026, 2, 2), d(2026, 2, 3), d(2026, 2, 4),
			d(2026, 3, 1), d(2026, 3, 2),
		}
		current, best, _ := computeStreak(dates, models.FrequencyDaily)
		assert.Equal(t, 2, current)
		assert.Equal(t, 4, best)
	})

	t.Run("order independent", func(t *testing.T) {
		dates := []time.Time{d(2026, 3, 3), d(2026, 3, 1), d(2026, 3, 2)}
		current, best, _ := computeStreak(dates, models.FrequencyDaily)
		assert.Equal(t, 3, current)
		assert.Equal(t, 3, best)
	})
}

func TestComputeStreakWeekly(t *testing.T) {
	t.Run("consecutive sunday-start weeks chain", func(t *testing.T) {
		// Mar 1, 8, 15 2026 are consecutive Sundays.
		dates := []time.Time{d(2026, 3, 2), d(2026, 3, 9), d(2026, 3, 16)}
		current, best, _ := computeStreak(dates, models.FrequencyWeekly)
		assert.Equal(t, 3, current)
		assert.Equal(t, 3, best)
	})

	t.Run("multiple completions in one week count once", func(t *testing.T) {
		dates := []time.Time{d(2026, 3, 2), d(2026, 3, 4), d(2026, 3, 6)}
		current, best, _ := computeStreak(dates, models.FrequencyWeekly)
		assert.Equal(t, 1, current)
		assert.Equal(t, 1, best)
	})

	t.Run("missed week breaks the chain", func(t *testing.T) {
		dates := []time.Time{d(2026, 3, 2), d(2026, 3, 16)}
		current, best, _ := computeStreak(dates, models.FrequencyWeekly)
		assert.Equal(t, 1, current)
		assert.Equal(t, 1, best)
	})
}

func TestComputeStreakMonthly(t *testing.T) {
	t.Run("consecutive months chain", func(t *testing.T) {
		dates := []time.Time{d(2026, 1, 15), d(2026, 2, 3), d(2026, 3, 28)}
		current, best, _ := computeStreak(dates, models.FrequencyMonthly)
		assert.Equal(t, 3, current)
		assert.Equal(t, 3, best)
	})

	t.Run("skipped month resets", func(t *testing.T) {
		dates := []time.Time{d(2026, 1, 15), d(2026, 3, 28)}
		current, best, _ := computeStreak(dates, models.FrequencyMonthly)
		assert.Equal(t, 1, current)
		assert.Equal(t, 1, best)
	})
}

func TestPeriodStart(t *testing.T) {
	// Mar 4 2026 is a Wednesday; its week starts Sunday Mar 1.
	assert.Equal(t, d(2026, 3, 4), periodStart(d(2026, 3, 4), models.FrequencyDaily))
	assert.Equal(t, d(2026, 3, 1), periodStart(d(2026, 3, 4), models.FrequencyWeekly))
	assert.Equal(t, d(2026, 3, 1), periodStart(d(2026, 3, 28), models.FrequencyMonthly))
}

func TestLastCompletedDateIsLatestDay(t *testing.T) {
	dates := []time.Time{d(2026, 3, 2), d(2026, 3, 9)}
	_, _, last := computeStreak(dates, models.FrequencyWeekly)
	require.NotNil(t, last)
	assert.Equal(t, d(2026, 3, 9), *last)
}
