// Package notify computes reminder fire times from user preferences and runs
// process-local one-shot timers. Timers are ephemeral: a restart loses every
// pending reminder until the scheduler is re-initialized, and the only bulk
// operation is "clear all and reschedule".
package notify

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/habitflow/habitflow/models"
)

// Capability is the tri-state notification permission. Only granted allows
// firing; the value is queried once at startup and injected, never probed ad
// hoc.
type Capability int

const (
	CapabilityUndetermined Capability = iota
	CapabilityGranted
	CapabilityDenied
)

// ParseCapability maps the wire values (granted/denied/default) onto the
// tri-state.
func ParseCapability(s string) (Capability, error) {
	switch s {
	case "granted":
		return CapabilityGranted, nil
	case "denied":
		return CapabilityDenied, nil
	case "default", "undetermined":
		return CapabilityUndetermined, nil
	}
	return CapabilityUndetermined, fmt.Errorf("unknown permission state %q", s)
}

func (c Capability) String() string {
	switch c {
	case CapabilityGranted:
		return "granted"
	case CapabilityDenied:
		return "denied"
	default:
		return "default"
	}
}

// Preferences are the notification settings a schedule is computed from.
type Preferences struct {
	PushEnabled     bool
	EmailEnabled    bool
	SoundEnabled    bool
	ReminderTime    string // HH:MM
	ReminderDays    []int  // 1=Monday .. 7=Sunday
	QuietHoursStart string
	QuietHoursEnd   string
	Timezone        string
}

// location resolves the preference timezone, falling back to the server's
// local zone when unset or unknown.
func (p Preferences) location() *time.Location {
	if p.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// PreferencesFromProfile extracts scheduling preferences from a profile row.
func PreferencesFromProfile(p models.UserProfile) Preferences {
	return Preferences{
		PushEnabled:     p.PushNotifications,
		EmailEnabled:    p.EmailNotifications,
		SoundEnabled:    p.NotificationSound,
		ReminderTime:    p.ReminderTime,
		ReminderDays:    p.ReminderDays,
		QuietHoursStart: p.QuietHoursStart,
		QuietHoursEnd:   p.QuietHoursEnd,
		Timezone:        p.Timezone,
	}
}

// Notification types.
const (
	TypeReminder     = "reminder"
	TypeStreak       = "streak"
	TypeMilestone    = "milestone"
	TypeWeeklyReport = "weekly_report"
)

// ScheduledNotification exists only in memory for the current process
// lifetime. Never persisted.
type ScheduledNotification struct {
	ID         string    `json:"id"`
	HabitID    uint      `json:"habit_id"`
	HabitTitle string    `json:"habit_title"`
	FireAt     time.Time `json:"fire_at"`
	Type       string    `json:"type"`
	Message    string    `json:"message"`
}

// Sender delivers a notification to the push channel. The delivery mechanism
// itself (browser/OS) is outside this system.
type Sender interface {
	Send(title, body, tag string, data map[string]interface{}) error
}

// streakMilestones are the streak lengths that trigger a celebration.
var streakMilestones = []int{3, 7, 14, 30, 60, 100}

// Scheduler owns one user's pending reminder timers.
type Scheduler struct {
	capability Capability
	sender     Sender
	email      *EmailSender
	now        func() time.Time

	mu        sync.Mutex
	scheduled []ScheduledNotification
	timers    []*time.Timer
	prefs     Preferences
	cron      *cron.Cron
}

// NewScheduler wires the capability and delivery channels. email may be nil
// when no mail provider is configured.
func NewScheduler(capability Capability, sender Sender, email *EmailSender) *Scheduler {
	return &Scheduler{
		capability: capability,
		sender:     sender,
		email:      email,
		now:        time.Now,
	}
}

// SetClock overrides the scheduler's notion of "now". Used in tests.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// SetCapability records the outcome of a permission prompt.
func (s *Scheduler) SetCapability(c Capability) {
	s.mu.Lock()
	s.capability = c
	s.mu.Unlock()
}

// Capability returns the current permission state.
func (s *Scheduler) Capability() Capability {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capability
}

// Scheduled returns a copy of the pending notification entries sorted by fire
// time.
func (s *Scheduler) Scheduled() []ScheduledNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ScheduledNotification, len(s.scheduled))
	copy(out, s.scheduled)
	sort.SliceStable(out, func(i, j int) bool { return out[i].FireAt.Before(out[j].FireAt) })
	return out
}

// Reschedule discards every pending timer and recomputes the full schedule
// from the given habits and preferences: one entry per active habit and
// configured reminder day. Fire times are computed in the preference timezone.
func (s *Scheduler) Reschedule(habitList []models.Habit, prefs Preferences) error {
	s.ClearAll()

	if _, _, err := parseClock(prefs.ReminderTime); err != nil {
		return fmt.Errorf("invalid reminder time: %w", err)
	}
	for _, day := range prefs.ReminderDays {
		if day < 1 || day > 7 {
			return fmt.Errorf("reminder day %d out of range 1..7", day)
		}
	}

	now := s.now().In(prefs.location())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = prefs

	for _, habit := range habitList {
		if !habit.IsActive {
			continue
		}
		for _, day := range prefs.ReminderDays {
			fireAt, err := NextFireTime(now, day, prefs.ReminderTime)
			if err != nil {
				return err
			}
			n := ScheduledNotification{
				ID:         uuid.NewString(),
				HabitID:    habit.ID,
				HabitTitle: habit.Title,
				FireAt:     fireAt,
				Type:       TypeReminder,
				Message:    fmt.Sprintf("Time for %s!", habit.Title),
			}
			body := habit.Description
			if body == "" {
				body = "Don't forget to complete your habit today."
			}
			h := habit
			timer := time.AfterFunc(fireAt.Sub(now), func() {
				s.fire(n, body, h)
			})
			s.scheduled = append(s.scheduled, n)
			s.timers = append(s.timers, timer)
		}
	}
	return nil
}

// ClearAll stops every pending timer and drops the schedule. Individual timers
// cannot be cancelled.
func (s *Scheduler) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
	s.scheduled = nil
}

// fire runs the side-effect chain for one due reminder. Push goes out only
// with granted permission, push enabled and outside the quiet-hours window
// (evaluated in the preference timezone; suppressed, not deferred). The email
// channel is gated by the email preference alone.
func (s *Scheduler) fire(n ScheduledNotification, body string, habit models.Habit) {
	s.mu.Lock()
	capability := s.capability
	prefs := s.prefs
	kept := s.scheduled[:0]
	for _, entry := range s.scheduled {
		if entry.ID != n.ID {
			kept = append(kept, entry)
		}
	}
	s.scheduled = kept
	s.mu.Unlock()

	if capability == CapabilityGranted && prefs.PushEnabled && s.sender != nil &&
		!InQuietHours(s.now().In(prefs.location()), prefs.QuietHoursStart, prefs.QuietHoursEnd) {
		_ = s.sender.Send(n.Message, body, fmt.Sprintf("habit-%d", n.HabitID), map[string]interface{}{
			"habitId": n.HabitID,
			"type":    TypeReminder,
		})
	}
	if prefs.EmailEnabled && s.email != nil {
		_, _ = s.email.Send(EmailRequest{
			Type:             TypeReminder,
			Subject:          fmt.Sprintf("Time for %s!", habit.Title),
			HabitTitle:       habit.Title,
			HabitDescription: habit.Description,
		})
	}
}

// NotifyStreak sends a milestone celebration when the streak count crosses one
// of the fixed thresholds. Non-milestone counts are a no-op.
func (s *Scheduler) NotifyStreak(habitTitle string, streakCount int) {
	milestone := false
	for _, m := range streakMilestones {
		if streakCount == m {
			milestone = true
			break
		}
	}
	if !milestone {
		return
	}

	s.mu.Lock()
	capability := s.capability
	prefs := s.prefs
	s.mu.Unlock()

	if capability == CapabilityGranted && prefs.PushEnabled && s.sender != nil &&
		!InQuietHours(s.now().In(prefs.location()), prefs.QuietHoursStart, prefs.QuietHoursEnd) {
		_ = s.sender.Send(
			fmt.Sprintf("%d-day streak!", streakCount),
			fmt.Sprintf("Amazing! You've maintained %s for %d days in a row!", habitTitle, streakCount),
			fmt.Sprintf("streak-%d", streakCount),
			map[string]interface{}{"type": TypeStreak, "streakCount": streakCount},
		)
	}
	if prefs.EmailEnabled && s.email != nil {
		_, _ = s.email.Send(EmailRequest{
			Type:        TypeStreak,
			Subject:     fmt.Sprintf("%d-day streak with %s!", streakCount, habitTitle),
			HabitTitle:  habitTitle,
			StreakCount: streakCount,
		})
	}
}

// StartWeeklyReports schedules the recurring weekly-report job. The job runs
// Sunday evenings in the scheduler's location; Stop cancels it.
func (s *Scheduler) StartWeeklyReports(job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc("0 18 * * 0", job); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	return nil
}

// StopWeeklyReports cancels the recurring weekly-report job if running.
func (s *Scheduler) StopWeeklyReports() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
}

// Stop halts the weekly-report cron and clears pending reminder timers.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
	s.mu.Unlock()
	s.ClearAll()
}

// NextFireTime computes the next strictly-future occurrence of the reminder
// for a day-of-week (1=Monday .. 7=Sunday) and HH:MM time. When the target day
// is today but the time has already passed, the reminder rolls forward a full
// week.
func NextFireTime(now time.Time, dayOfWeek int, timeOfDay string) (time.Time, error) {
	if dayOfWeek < 1 || dayOfWeek > 7 {
		return time.Time{}, fmt.Errorf("day of week %d out of range 1..7", dayOfWeek)
	}
	hour, minute, err := parseClock(timeOfDay)
	if err != nil {
		return time.Time{}, err
	}

	target := dayOfWeek % 7 // Sunday wraps from 7 to time.Weekday's 0
	daysUntil := (target - int(now.Weekday()) + 7) % 7
	if daysUntil == 0 && now.Hour()*60+now.Minute() >= hour*60+minute {
		daysUntil = 7
	}

	fireAt := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	return fireAt.AddDate(0, 0, daysUntil), nil
}

// InQuietHours reports whether t falls inside the configured window. Windows
// may wrap past midnight (22:00 to 08:00 covers late evening and early morning).
func InQuietHours(t time.Time, start, end string) bool {
	startH, startM, errS := parseClock(start)
	endH, endM, errE := parseClock(end)
	if errS != nil || errE != nil {
		return false
	}

	current := t.Hour()*60 + t.Minute()
	from := startH*60 + startM
	until := endH*60 + endM

	if from > until {
		return current >= from || current <= until
	}
	return current >= from && current <= until
}

// parseClock accepts HH:MM and HH:MM:SS.
func parseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, fmt.Errorf("invalid clock value %q, expected HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}
