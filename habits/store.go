package habits

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/habitflow/habitflow/models"
)

// Store errors surfaced to callers. The HTTP layer maps them onto the error
// taxonomy: validation, not-found, duplicate completion.
var (
	ErrNotAuthenticated = errors.New("user not authenticated")
	ErrHabitNotFound    = errors.New("habit not found")
	ErrAlreadyCompleted = errors.New("habit already completed today")
	ErrNoCompletion     = errors.New("no completion recorded today")
	ErrEmptyTitle       = errors.New("habit title must not be empty")
	ErrBadFrequency     = errors.New("frequency must be daily, weekly or monthly")
)

// HabitUpdate carries partial habit fields; nil means "leave unchanged".
type HabitUpdate struct {
	Title       *string
	Description *string
	Frequency   *string
	IsActive    *bool
}

// DataService is the remote data service the store mediates all CRUD against.
// Every call is scoped to a single user; implementations must never return
// another user's rows.
type DataService interface {
	ListHabits(ctx context.Context, userID uint) ([]models.Habit, error)
	ListCompletions(ctx context.Context, userID uint) ([]models.HabitCompletion, error)
	ListStreaks(ctx context.Context, userID uint) ([]models.HabitStreak, error)

	CreateHabit(ctx context.Context, habit models.Habit) (models.Habit, error)
	UpdateHabit(ctx context.Context, userID, habitID uint, updates HabitUpdate) (models.Habit, error)
	DeleteHabit(ctx context.Context, userID, habitID uint) error

	AddCompletion(ctx context.Context, completion models.HabitCompletion) (models.HabitCompletion, error)
	RemoveCompletion(ctx context.Context, userID, habitID uint, day time.Time) error
}

// Store caches one user's habits, completions and streak rows and mediates all
// writes through the data service. Collections are replaced wholesale on fetch;
// a failed fetch leaves the previous cache untouched.
type Store struct {
	svc    DataService
	userID uint

	mu          sync.RWMutex
	habits      []models.Habit
	completions []models.HabitCompletion
	streaks     []models.HabitStreak
	lastErr     string

	// now is injectable for tests; "today" is always local-calendar.
	now func() time.Time

	// onCompletion runs after a successful completion insert and streak
	// refresh. Its error never rolls back the completion.
	onCompletion func(ctx context.Context, userID uint) error
}

// NewStore builds a session-scoped store for the given user.
func NewStore(svc DataService, userID uint) *Store {
	return &Store{svc: svc, userID: userID, now: time.Now}
}

// SetCompletionHook registers the achievement re-evaluation side effect.
func (s *Store) SetCompletionHook(hook func(ctx context.Context, userID uint) error) {
	s.onCompletion = hook
}

// SetClock overrides the store's notion of "now". Used in tests.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Err returns the message of the last failed operation, empty when clear.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// ClearError resets the sticky error. Callers retry an operation class only
// after clearing.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
}

func (s *Store) fail(err error) error {
	s.mu.Lock()
	s.lastErr = err.Error()
	s.mu.Unlock()
	return err
}

// Refresh fetches the three collections concurrently and joins before
// returning. Each collection is replaced wholesale on success; on any failure
// the corresponding cache keeps its previous contents.
func (s *Store) Refresh(ctx context.Context) error {
	if s.userID == 0 {
		return s.fail(ErrNotAuthenticated)
	}

	var (
		wg               sync.WaitGroup
		habits           []models.Habit
		completions      []models.HabitCompletion
		streaks          []models.HabitStreak
		errH, errC, errS error
	)
	wg.Add(3)
	go func() { defer wg.Done(); habits, errH = s.svc.ListHabits(ctx, s.userID) }()
	go func() { defer wg.Done(); completions, errC = s.svc.ListCompletions(ctx, s.userID) }()
	go func() { defer wg.Done(); streaks, errS = s.svc.ListStreaks(ctx, s.userID) }()
	wg.Wait()

	s.mu.Lock()
	if errH == nil {
		s.habits = habits
	}
	if errC == nil {
		s.completions = completions
	}
	if errS == nil {
		s.streaks = streaks
	}
	s.mu.Unlock()

	for _, err := range []error{errH, errC, errS} {
		if err != nil {
			return s.fail(err)
		}
	}
	return nil
}

// Habits returns a copy of the cached habit collection, most recent first.
func (s *Store) Habits() []models.Habit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Habit, len(s.habits))
	copy(out, s.habits)
	return out
}

// Completions returns a copy of the cached completion collection.
func (s *Store) Completions() []models.HabitCompletion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.HabitCompletion, len(s.completions))
	copy(out, s.completions)
	return out
}

// Streaks returns a copy of the cached streak collection.
func (s *Store) Streaks() []models.HabitStreak {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.HabitStreak, len(s.streaks))
	copy(out, s.streaks)
	return out
}

// Streak returns the cached streak row for a habit, if any.
func (s *Store) Streak(habitID uint) (models.HabitStreak, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.streaks {
		if st.HabitID == habitID {
			return st, true
		}
	}
	return models.HabitStreak{}, false
}

// CreateHabit inserts a new active habit and prepends it to the cache so the
// collection stays most-recent-first.
func (s *Store) CreateHabit(ctx context.Context, title, description, frequency string) (models.Habit, error) {
	if s.userID == 0 {
		return models.Habit{}, s.fail(ErrNotAuthenticated)
	}
	if title == "" {
		return models.Habit{}, s.fail(ErrEmptyTitle)
	}
	if !models.ValidFrequency(frequency) {
		return models.Habit{}, s.fail(ErrBadFrequency)
	}

	created, err := s.svc.CreateHabit(ctx, models.Habit{
		UserID:      s.userID,
		Title:       title,
		Description: description,
		Frequency:   frequency,
		IsActive:    true,
	})
	if err != nil {
		return models.Habit{}, s.fail(err)
	}

	s.mu.Lock()
	s.habits = append([]models.Habit{created}, s.habits...)
	s.mu.Unlock()
	return created, nil
}

// UpdateHabit applies partial updates and replaces the cached entry in place
// at its existing position.
func (s *Store) UpdateHabit(ctx context.Context, habitID uint, updates HabitUpdate) (models.Habit, error) {
	if s.userID == 0 {
		return models.Habit{}, s.fail(ErrNotAuthenticated)
	}
	if _, ok := s.findHabit(habitID); !ok {
		return models.Habit{}, s.fail(ErrHabitNotFound)
	}
	if updates.Frequency != nil && !models.ValidFrequency(*updates.Frequency) {
		return models.Habit{}, s.fail(ErrBadFrequency)
	}

	updated, err := s.svc.UpdateHabit(ctx, s.userID, habitID, updates)
	if err != nil {
		return models.Habit{}, s.fail(err)
	}

	s.mu.Lock()
	for i := range s.habits {
		if s.habits[i].ID == habitID {
			s.habits[i] = updated
			break
		}
	}
	s.mu.Unlock()
	return updated, nil
}

// DeleteHabit removes the habit remotely and from the cache. No undo.
func (s *Store) DeleteHabit(ctx context.Context, habitID uint) error {
	if s.userID == 0 {
		return s.fail(ErrNotAuthenticated)
	}
	if _, ok := s.findHabit(habitID); !ok {
		return s.fail(ErrHabitNotFound)
	}
	if err := s.svc.DeleteHabit(ctx, s.userID, habitID); err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	kept := s.habits[:0]
	for _, h := range s.habits {
		if h.ID != habitID {
			kept = append(kept, h)
		}
	}
	s.habits = kept
	s.mu.Unlock()
	return nil
}

// ToggleHabitStatus flips the active flag via UpdateHabit.
func (s *Store) ToggleHabitStatus(ctx context.Context, habitID uint) (models.Habit, error) {
	habit, ok := s.findHabit(habitID)
	if !ok {
		return models.Habit{}, s.fail(ErrHabitNotFound)
	}
	next := !habit.IsActive
	return s.UpdateHabit(ctx, habitID, HabitUpdate{IsActive: &next})
}

// MarkHabitCompleted records today's completion for a habit. The same-day
// check runs against the local cache, so a race between two clients can pass
// it here; the data service's unique index is the backstop. Side effects run
// in order: insert, streak re-fetch, achievement check. An achievement-check
// failure never rolls back the completion.
func (s *Store) MarkHabitCompleted(ctx context.Context, habitID uint, notes string) (models.HabitCompletion, error) {
	if s.userID == 0 {
		return models.HabitCompletion{}, s.fail(ErrNotAuthenticated)
	}
	if _, ok := s.findHabit(habitID); !ok {
		return models.HabitCompletion{}, s.fail(ErrHabitNotFound)
	}

	today := dateOnly(s.now())
	if s.completedOn(habitID, today) {
		return models.HabitCompletion{}, s.fail(ErrAlreadyCompleted)
	}

	created, err := s.svc.AddCompletion(ctx, models.HabitCompletion{
		HabitID:       habitID,
		UserID:        s.userID,
		CompletedDate: today,
		Notes:         notes,
	})
	if err != nil {
		return models.HabitCompletion{}, s.fail(err)
	}

	s.mu.Lock()
	s.completions = append([]models.HabitCompletion{created}, s.completions...)
	s.mu.Unlock()

	if err := s.refreshStreaks(ctx); err != nil {
		return created, s.fail(err)
	}
	if s.onCompletion != nil {
		if err := s.onCompletion(ctx, s.userID); err != nil {
			// Recorded only; the completion stands.
			s.mu.Lock()
			s.lastErr = err.Error()
			s.mu.Unlock()
		}
	}
	return created, nil
}

// UnmarkHabitCompleted removes today's completion only. Past days cannot be
// unmarked.
func (s *Store) UnmarkHabitCompleted(ctx context.Context, habitID uint) error {
	if s.userID == 0 {
		return s.fail(ErrNotAuthenticated)
	}

	today := dateOnly(s.now())
	if !s.completedOn(habitID, today) {
		return s.fail(ErrNoCompletion)
	}

	if err := s.svc.RemoveCompletion(ctx, s.userID, habitID, today); err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	kept := s.completions[:0]
	for _, c := range s.completions {
		if c.HabitID == habitID && sameDay(c.CompletedDate, today) {
			continue
		}
		kept = append(kept, c)
	}
	s.completions = kept
	s.mu.Unlock()

	return s.refreshStreaks(ctx)
}

func (s *Store) refreshStreaks(ctx context.Context) error {
	streaks, err := s.svc.ListStreaks(ctx, s.userID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.streaks = streaks
	s.mu.Unlock()
	return nil
}

func (s *Store) findHabit(habitID uint) (models.Habit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.habits {
		if h.ID == habitID {
			return h, true
		}
	}
	return models.Habit{}, false
}

func (s *Store) completedOn(habitID uint, day time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.completions {
		if c.HabitID == habitID && sameDay(c.CompletedDate, day) {
			return true
		}
	}
	return false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
