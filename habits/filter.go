package habits

import (
	"sort"
	"strings"

	"github.com/habitflow/habitflow/models"
)

// Sort keys accepted by ListQuery.SortBy.
const (
	SortByName          = "name"
	SortByFrequency     = "frequency"
	SortByStatus        = "status"
	SortByCurrentStreak = "current_streak"
	SortByBestStreak    = "best_streak"
	SortByCreated       = "created"
)

// ListQuery describes the filter/sort state of the habit list view.
type ListQuery struct {
	Status    string // "", "all", "active", "inactive"
	Frequency string // "", "all", "daily", "weekly", "monthly"
	Search    string // case-insensitive substring over title+description
	SortBy    string // one of the SortBy* keys; "" means created
	Desc      bool
}

// HabitView is a habit joined with its cached streak row for display.
type HabitView struct {
	models.Habit
	CurrentStreak int `json:"current_streak"`
	BestStreak    int `json:"best_streak"`
}

// FilteredAndSorted recomputes the projection from the cached collections and
// the given query. It is deterministic: identical cache and query state yields
// identical ordered output (ties always break on habit id).
func (s *Store) FilteredAndSorted(q ListQuery) []HabitView {
	s.mu.RLock()
	habits := make([]models.Habit, len(s.habits))
	copy(habits, s.habits)
	streaks := make(map[uint]models.HabitStreak, len(s.streaks))
	for _, st := range s.streaks {
		streaks[st.HabitID] = st
	}
	s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(q.Search))

	views := make([]HabitView, 0, len(habits))
	for _, h := range habits {
		switch q.Status {
		case "active":
			if !h.IsActive {
				continue
			}
		case "inactive":
			if h.IsActive {
				continue
			}
		}
		switch q.Frequency {
		case models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyMonthly:
			if h.Frequency != q.Frequency {
				continue
			}
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(h.Title), needle) &&
			!strings.Contains(strings.ToLower(h.Description), needle) {
			continue
		}
		view := HabitView{Habit: h}
		if st, ok := streaks[h.ID]; ok {
			view.CurrentStreak = st.CurrentStreak
			view.BestStreak = st.BestStreak
		}
		views = append(views, view)
	}

	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		less, equal := compareViews(a, b, q.SortBy)
		if equal {
			return a.ID < b.ID
		}
		if q.Desc {
			return !less
		}
		return less
	})
	return views
}

// compareViews orders two views by the given key, ascending. The second return
// reports a tie so the caller can apply the id tie-break outside the
// asc/desc flip.
func compareViews(a, b HabitView, sortBy string) (less, equal bool) {
	switch sortBy {
	case SortByName:
		an, bn := strings.ToLower(a.Title), strings.ToLower(b.Title)
		return an < bn, an == bn
	case SortByFrequency:
		ar, br := frequencyRank(a.Frequency), frequencyRank(b.Frequency)
		return ar < br, ar == br
	case SortByStatus:
		// Active habits sort before inactive.
		if a.IsActive != b.IsActive {
			return a.IsActive, false
		}
		return false, true
	case SortByCurrentStreak:
		return a.CurrentStreak < b.CurrentStreak, a.CurrentStreak == b.CurrentStreak
	case SortByBestStreak:
		return a.BestStreak < b.BestStreak, a.BestStreak == b.BestStreak
	default: // SortByCreated
		if a.CreatedAt.Equal(b.CreatedAt) {
			return false, true
		}
		return a.CreatedAt.Before(b.CreatedAt), false
	}
}

// frequencyRank orders cadences daily < weekly < monthly.
func frequencyRank(frequency string) int {
	switch frequency {
	case models.FrequencyDaily:
		return 0
	case models.FrequencyWeekly:
		return 1
	case models.FrequencyMonthly:
		return 2
	default:
		return 3
	}
}
