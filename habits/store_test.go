package habits

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitflow/habitflow/models"
)

// fakeService is an in-memory DataService good enough for store semantics.
type fakeService struct {
	habits      []models.Habit
	completions []models.HabitCompletion
	streaks     []models.HabitStreak

	nextHabitID      uint
	nextCompletionID uint

	failList bool
	failAdd  error
}

func newFakeService() *fakeService {
	return &fakeService{nextHabitID: 1, nextCompletionID: 1}
}

func (f *fakeService) ListHabits(ctx context.Context, userID uint) ([]models.Habit, error) {
	if f.failList {
		return nil, errors.New("list failed")
	}
	out := make([]models.Habit, len(f.habits))
	copy(out, f.habits)
	return out, nil
}

func (f *fakeService) ListCompletions(ctx context.Context, userID uint) ([]models.HabitCompletion, error) {
	if f.failList {
		return nil, errors.New("list failed")
	}
	out := make([]models.HabitCompletion, len(f.completions))
	copy(out, f.completions)
	return out, nil
}

func (f *fakeService) ListStreaks(ctx context.Context, userID uint) ([]models.HabitStreak, error) {
	out := make([]models.HabitStreak, len(f.streaks))
	copy(out, f.streaks)
	return out, nil
}

func (f *fakeService) CreateHabit(ctx context.Context, habit models.Habit) (models.Habit, error) {
	habit.ID = f.nextHabitID
	f.nextHabitID++
	habit.CreatedAt = time.Now()
	f.habits = append(f.habits, habit)
	return habit, nil
}

func (f *fakeService) UpdateHabit(ctx context.Context, userID, habitID uint, updates HabitUpdate) (models.Habit, error) {
	for i := range f.habits {
		if f.habits[i].ID == habitID {
			if updates.Title != nil {
				f.habits[i].Title = *updates.Title
			}
			if updates.Description != nil {
				f.habits[i].Description = *updates.Description
			}
			if updates.Frequency != nil {
				f.habits[i].Frequency = *updates.Frequency
			}
			if updates.IsActive != nil {
				f.habits[i].IsActive = *updates.IsActive
			}
			return f.habits[i], nil
		}
	}
	return models.Habit{}, ErrHabitNotFound
}

func (f *fakeService) DeleteHabit(ctx context.Context, userID, habitID uint) error {
	kept := f.habits[:0]
	for _, h := range f.habits {
		if h.ID != habitID {
			kept = append(kept, h)
		}
	}
	f.habits = kept
	return nil
}

func (f *fakeService) AddCompletion(ctx context.Context, completion models.HabitCompletion) (models.HabitCompletion, error) {
	if f.failAdd != nil {
		return models.HabitCompletion{}, f.failAdd
	}
	completion.ID = f.nextCompletionID
	f.nextCompletionID++
	f.completions = append(f.completions, completion)

	// crude streak bump so Streak() has something to return
	found := false
	for i := range f.streaks {
		if f.streaks[i].HabitID == completion.HabitID {
			f.streaks[i].CurrentStreak++
			found = true
		}
	}
	if !found {
		f.streaks = append(f.streaks, models.HabitStreak{HabitID: completion.HabitID, CurrentStreak: 1, BestStreak: 1})
	}
	return completion, nil
}

func (f *fakeService) RemoveCompletion(ctx context.Context, userID, habitID uint, day time.Time) error {
	kept := f.completions[:0]
	for _, c := range f.completions {
		if c.HabitID == habitID && sameDay(c.CompletedDate, day) {
			continue
		}
		kept = append(kept, c)
	}
	f.completions = kept
	return nil
}

func newTestStore(t *testing.T) (*Store, *fakeService) {
	t.Helper()
	svc := newFakeService()
	store := NewStore(svc, 1)
	require.NoError(t, store.Refresh(context.Background()))
	return store, svc
}

func TestCreateHabitValidation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateHabit(ctx, "", "", models.FrequencyDaily)
	assert.ErrorIs(t, err, ErrEmptyTitle)
	assert.NotEmpty(t, store.Err())

	store.ClearError()
	_, err = store.CreateHabit(ctx, "Read", "", "hourly")
	assert.ErrorIs(t, err, ErrBadFrequency)

	store.ClearError()
	habit, err := store.CreateHabit(ctx, "Read", "20 pages", models.FrequencyDaily)
	require.NoError(t, err)
	assert.True(t, habit.IsActive)
	assert.Empty(t, store.Err())
}

func TestCreateHabitPrepends(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.CreateHabit(ctx, "First", "", models.FrequencyDaily)
	require.NoError(t, err)
	second, err := store.CreateHabit(ctx, "Second", "", models.FrequencyWeekly)
	require.NoError(t, err)

	cached := store.Habits()
	require.Len(t, cached, 2)
	assert.Equal(t, second.ID, cached[0].ID)
	assert.Equal(t, first.ID, cached[1].ID)
}

func TestMarkHabitCompletedDuplicate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	habit, err := store.CreateHabit(ctx, "Run", "", models.FrequencyDaily)
	require.NoError(t, err)

	_, err = store.MarkHabitCompleted(ctx, habit.ID, "")
	require.NoError(t, err)
	require.Len(t, store.Completions(), 1)

	_, err = store.MarkHabitCompleted(ctx, habit.ID, "")
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	assert.Len(t, store.Completions(), 1, "duplicate must not add a cache entry")
}

func TestMarkHabitCompletedNextDay(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	habit, err := store.CreateHabit(ctx, "Run", "", models.FrequencyDaily)
	require.NoError(t, err)

	day := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)
	store.SetClock(func() time.Time { return day })
	_, err = store.MarkHabitCompleted(ctx, habit.ID, "")
	require.NoError(t, err)

	store.SetClock(func() time.Time { return day.AddDate(0, 0, 1) })
	_, err = store.MarkHabitCompleted(ctx, habit.ID, "")
	require.NoError(t, err)
	assert.Len(t, store.Completions(), 2)

	streak, ok := store.Streak(habit.ID)
	require.True(t, ok)
	assert.Equal(t, 2, streak.CurrentStreak)
}

func TestMarkHabitCompletedUnknownHabit(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.MarkHabitCompleted(context.Background(), 99, "")
	assert.ErrorIs(t, err, ErrHabitNotFound)
}

func TestCompletionHookFailureKeepsCompletion(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	habit, err := store.CreateHabit(ctx, "Run", "", models.FrequencyDaily)
	require.NoError(t, err)

	store.SetCompletionHook(func(ctx context.Context, userID uint) error {
		return errors.New("achievement check down")
	})

	_, err = store.MarkHabitCompleted(ctx, habit.ID, "")
	require.NoError(t, err, "hook failure must not fail the completion")
	assert.Len(t, store.Completions(), 1)
	assert.Equal(t, "achievement check down", store.Err())
}

func TestUnmarkHabitCompletedTodayOnly(t *testing.T) {
	store, svc := newTestStore(t)
	ctx := context.Background()

	habit, err := store.CreateHabit(ctx, "Run", "", models.FrequencyDaily)
	require.NoError(t, err)

	yesterday := dateOnly(time.Now().AddDate(0, 0, -1))
	svc.completions = append(svc.completions, models.HabitCompletion{
		ID: 100, HabitID: habit.ID, UserID: 1, CompletedDate: yesterday,
	})
	require.NoError(t, store.Refresh(ctx))

	// only yesterday's completion exists, nothing to unmark today
	err = store.UnmarkHabitCompleted(ctx, habit.ID)
	assert.ErrorIs(t, err, ErrNoCompletion)

	store.ClearError()
	_, err = store.MarkHabitCompleted(ctx, habit.ID, "")
	require.NoError(t, err)
	require.NoError(t, store.UnmarkHabitCompleted(ctx, habit.ID))

	remaining := store.Completions()
	require.Len(t, remaining, 1)
	assert.True(t, sameDay(remaining[0].CompletedDate, yesterday), "past completions survive unmark")
}

func TestRefreshFailureKeepsCache(t *testing.T) {
	store, svc := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateHabit(ctx, "Run", "", models.FrequencyDaily)
	require.NoError(t, err)
	require.NoError(t, store.Refresh(ctx))
	require.Len(t, store.Habits(), 1)

	svc.failList = true
	err = store.Refresh(ctx)
	assert.Error(t, err)
	assert.Len(t, store.Habits(), 1, "failed fetch must leave previous cache")
	assert.NotEmpty(t, store.Err())
}

func TestRefreshUnauthenticated(t *testing.T) {
	store := NewStore(newFakeService(), 0)
	err := store.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestToggleHabitStatus(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	habit, err := store.CreateHabit(ctx, "Run", "", models.FrequencyDaily)
	require.NoError(t, err)
	require.True(t, habit.IsActive)

	toggled, err := store.ToggleHabitStatus(ctx, habit.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	toggled, err = store.ToggleHabitStatus(ctx, habit.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)
}

func TestDeleteHabitRemovesFromCache(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	habit, err := store.CreateHabit(ctx, "Run", "", models.FrequencyDaily)
	require.NoError(t, err)

	require.NoError(t, store.DeleteHabit(ctx, habit.ID))
	assert.Empty(t, store.Habits())

	err = store.DeleteHabit(ctx, habit.ID)
	assert.ErrorIs(t, err, ErrHabitNotFound)
}
