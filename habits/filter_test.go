package habits

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitflow/habitflow/models"
)

func storeWithFixtures(t *testing.T) *Store {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewStore(newFakeService(), 1)
	store.habits = []models.Habit{
		{ID: 1, Title: "Morning run", Description: "5k around the park", Frequency: models.FrequencyDaily, IsActive: true, CreatedAt: base},
		{ID: 2, Title: "Weekly review", Description: "plan the week", Frequency: models.FrequencyWeekly, IsActive: true, CreatedAt: base.Add(time.Hour)},
		{ID: 3, Title: "Budget check", Description: "monthly finances", Frequency: models.FrequencyMonthly, IsActive: false, CreatedAt: base.Add(2 * time.Hour)},
		{ID: 4, Title: "Read", Description: "", Frequency: models.FrequencyDaily, IsActive: true, CreatedAt: base.Add(3 * time.Hour)},
	}
	store.streaks = []models.HabitStreak{
		{HabitID: 1, CurrentStreak: 5, BestStreak: 12},
		{HabitID: 2, CurrentStreak: 2, BestStreak: 4},
		{HabitID: 4, CurrentStreak: 9, BestStreak: 9},
	}
	return store
}

func ids(views []HabitView) []uint {
	out := make([]uint, len(views))
	for i, v := range views {
		out[i] = v.ID
	}
	return out
}

func TestFilterByStatus(t *testing.T) {
	store := storeWithFixtures(t)

	active := store.FilteredAndSorted(ListQuery{Status: "active"})
	assert.Equal(t, []uint{1, 2, 4}, ids(active))

	inactive := store.FilteredAndSorted(ListQuery{Status: "inactive"})
	assert.Equal(t, []uint{3}, ids(inactive))

	all := store.FilteredAndSorted(ListQuery{Status: "all"})
	assert.Len(t, all, 4)
}

func TestFilterByFrequency(t *testing.T) {
	store := storeWithFixtures(t)

	daily := store.FilteredAndSorted(ListQuery{Frequency: models.FrequencyDaily})
	assert.Equal(t, []uint{1, 4}, ids(daily))

	all := store.FilteredAndSorted(ListQuery{Frequency: "all"})
	assert.Len(t, all, 4)
}

func TestSearchMatchesTitleAndDescription(t *testing.T) {
	store := storeWithFixtures(t)

	byTitle := store.FilteredAndSorted(ListQuery{Search: "RUN"})
	assert.Equal(t, []uint{1}, ids(byTitle))

	byDescription := store.FilteredAndSorted(ListQuery{Search: "finances"})
	assert.Equal(t, []uint{3}, ids(byDescription))

	none := store.FilteredAndSorted(ListQuery{Search: "swimming"})
	assert.Empty(t, none)
}

func TestSortKeys(t *testing.T) {
	store := storeWithFixtures(t)

	byName := store.FilteredAndSorted(ListQuery{SortBy: SortByName})
	assert.Equal(t, []uint{3, 1, 4, 2}, ids(byName))

	byNameDesc := store.FilteredAndSorted(ListQuery{SortBy: SortByName, Desc: true})
	assert.Equal(t, []uint{2, 4, 1, 3}, ids(byNameDesc))

	byStreak := store.FilteredAndSorted(ListQuery{SortBy: SortByCurrentStreak, Desc: true})
	assert.Equal(t, []uint{4, 1, 2, 3}, ids(byStreak))

	byFrequency := store.FilteredAndSorted(ListQuery{SortBy: SortByFrequency})
	assert.Equal(t, []uint{1, 4, 2, 3}, ids(byFrequency))
}

func TestSortTiesBreakOnID(t *testing.T) {
	store := storeWithFixtures(t)

	// habits 1 and 4 share the daily frequency rank; ties stay id-ascending
	// in both directions.
	asc := store.FilteredAndSorted(ListQuery{SortBy: SortByFrequency})
	desc := store.FilteredAndSorted(ListQuery{SortBy: SortByFrequency, Desc: true})

	require.Equal(t, []uint{1, 4, 2, 3}, ids(asc))
	assert.Equal(t, []uint{3, 2, 1, 4}, ids(desc))
}

func TestFilteredAndSortedDeterministic(t *testing.T) {
	store := storeWithFixtures(t)
	q := ListQuery{Status: "active", SortBy: SortByBestStreak, Desc: true}

	first := store.FilteredAndSorted(q)
	second := store.FilteredAndSorted(q)
	assert.Equal(t, ids(first), ids(second))
}

func TestViewsJoinStreaks(t *testing.T) {
	store := storeWithFixtures(t)

	views := store.FilteredAndSorted(ListQuery{})
	byID := map[uint]HabitView{}
	for _, v := range views {
		byID[v.ID] = v
	}

	assert.Equal(t, 5, byID[1].CurrentStreak)
	assert.Equal(t, 12, byID[1].BestStreak)
	assert.Zero(t, byID[3].CurrentStreak, "habit without a streak row reads zero")
}
