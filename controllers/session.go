package controllers

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/habitflow/habitflow/middleware"

	"github.com/habitflow/habitflow/habits"
	"github.com/habitflow/habitflow/models"
	"github.com/habitflow/habitflow/notify"
	"github.com/habitflow/habitflow/remote"
	"github.com/habitflow/habitflow/utils"
)

// session bundles the per-user state that outlives a single request:
// the cached habit store and the reminder scheduler.
type session struct {
	store     *habits.Store
	scheduler *notify.Scheduler
	email     *notify.EmailSender
}

// Sessions lazily creates and caches one session per authenticated user.
// All controllers share one instance so a user's store and scheduler are
// the same objects across requests.
type Sessions struct {
	svc  *remote.Service
	push *notify.PushSender

	mu      sync.Mutex
	entries map[uint]*session
}

// NewSessions creates the registry backing all per-user controllers.
func NewSessions(svc *remote.Service, push *notify.PushSender) *Sessions {
	return &Sessions{
		svc:     svc,
		push:    push,
		entries: map[uint]*session{},
	}
}

// get returns the session for userID, creating and hydrating it on first use.
func (m *Sessions) get(ctx context.Context, userID uint, email string) (*session, error) {
	m.mu.Lock()
	if sess, ok := m.entries[userID]; ok {
		m.mu.Unlock()
		return sess, nil
	}
	m.mu.Unlock()

	profile, err := m.svc.GetOrCreateProfile(ctx, userID, email)
	if err != nil {
		return nil, err
	}

	emailSender := notify.NewEmailSender(utils.SendMail, profile.Email, displayName(profile))
	scheduler := notify.NewScheduler(notify.CapabilityUndetermined, m.push, emailSender)

	store := habits.NewStore(m.svc, userID)
	store.SetCompletionHook(func(ctx context.Context, uid uint) error {
		return m.svc.CheckForNewAchievements(ctx, uid)
	})
	if err := store.Refresh(ctx); err != nil {
		utils.Sugar.Warnf("initial habit refresh failed user=%d err=%v", userID, err)
	}

	sess := &session{store: store, scheduler: scheduler, email: emailSender}

	m.mu.Lock()
	// Another request may have raced us; keep the first one in.
	if existing, ok := m.entries[userID]; ok {
		m.mu.Unlock()
		sess.scheduler.Stop()
		return existing, nil
	}
	m.entries[userID] = sess
	m.mu.Unlock()

	m.reschedule(sess, profile)
	return sess, nil
}

// fromContext resolves the session for the authenticated request, writing the
// error response itself on failure.
func (m *Sessions) fromContext(ctx *gin.Context) (*session, bool) {
	userID := ctx.GetUint(middleware.ContextUserIDKey)
	email := ctx.GetString(middleware.ContextEmailKey)
	sess, err := m.get(ctx.Request.Context(), userID, email)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to load user session")
		return nil, false
	}
	return sess, true
}

// reschedule rebuilds the user's reminder timers from current habits and
// preferences, and starts or stops the weekly report job to match.
func (m *Sessions) reschedule(sess *session, profile models.UserProfile) {
	prefs := notify.PreferencesFromProfile(profile)
	if err := sess.scheduler.Reschedule(sess.store.Habits(), prefs); err != nil {
		utils.Sugar.Warnf("reminder reschedule failed user=%d err=%v", profile.ID, err)
	}
	if profile.WeeklyReports && profile.EmailNotifications {
		email := sess.email
		if err := sess.scheduler.StartWeeklyReports(func() {
			if _, err := email.Send(notify.EmailRequest{
				Type:    notify.TypeWeeklyReport,
				Subject: "Your weekly habit report",
			}); err != nil {
				utils.Sugar.Warnf("weekly report email failed user=%d err=%v", profile.ID, err)
			}
		}); err != nil {
			utils.Sugar.Warnf("weekly report schedule failed user=%d err=%v", profile.ID, err)
		}
	} else {
		sess.scheduler.StopWeeklyReports()
	}
}

// drop removes the cached session, stopping its timers. Used on logout.
func (m *Sessions) drop(userID uint) {
	m.mu.Lock()
	sess, ok := m.entries[userID]
	if ok {
		delete(m.entries, userID)
	}
	m.mu.Unlock()
	if ok {
		sess.scheduler.Stop()
	}
}

func displayName(p models.UserProfile) string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name != "" {
		return name
	}
	if at := strings.Index(p.Email, "@"); at > 0 {
		return p.Email[:at]
	}
	return "there"
}
