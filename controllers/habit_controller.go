package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/habitflow/habitflow/habits"
	"github.com/habitflow/habitflow/middleware"
	"github.com/habitflow/habitflow/remote"
	"github.com/habitflow/habitflow/utils"
)

// HabitController exposes habit CRUD and completion endpoints. All state flows
// through the per-user store so the list, analytics and scheduler views stay
// consistent within a session.
type HabitController struct {
	sessions *Sessions
}

// NewHabitController creates a HabitController.
func NewHabitController(sessions *Sessions) *HabitController {
	return &HabitController{sessions: sessions}
}

// List returns the filtered and sorted habit list joined with streaks.
// Query params: status, frequency, search, sort_by, order.
func (h *HabitController) List(ctx *gin.Context) {
	sess, ok := h.sessions.fromContext(ctx)
	if !ok {
		return
	}

	if ctx.Query("refresh") == "1" {
		if err := sess.store.Refresh(ctx.Request.Context()); err != nil {
			utils.Error(ctx, http.StatusBadGateway, 50210, "failed to refresh habit data")
			return
		}
	}

	q := habits.ListQuery{
		Status:    ctx.DefaultQuery("status", "all"),
		Frequency: ctx.DefaultQuery("frequency", "all"),
		Search:    strings.TrimSpace(ctx.Query("search")),
		SortBy:    ctx.DefaultQuery("sort_by", habits.SortByCreated),
		Desc:      strings.EqualFold(ctx.DefaultQuery("order", "asc"), "desc"),
	}

	utils.Success(ctx, gin.H{
		"items":      sess.store.FilteredAndSorted(q),
		"last_error": sess.store.Err(),
	})
}

// Create adds a habit and reschedules reminders to include it.
func (h *HabitController) Create(ctx *gin.Context) {
	type request struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		Frequency   string `json:"frequency"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	sess, ok := h.sessions.fromContext(ctx)
	if !ok {
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	description := utils.Sanitize(strings.TrimSpace(req.Description))
	frequency := req.Frequency
	if frequency == "" {
		frequency = "daily"
	}

	habit, err := sess.store.CreateHabit(ctx.Request.Context(), title, description, frequency)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	h.rescheduleReminders(ctx, sess)
	utils.Success(ctx, habit)
}

// Update applies partial habit changes.
func (h *HabitController) Update(ctx *gin.Context) {
	habitID, ok := paramID(ctx)
	if !ok {
		return
	}

	type request struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Frequency   *string `json:"frequency"`
		IsActive    *bool   `json:"is_active"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	sess, ok := h.sessions.fromContext(ctx)
	if !ok {
		return
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		respondStoreError(ctx, habits.ErrEmptyTitle)
		return
	}

	updates := habits.HabitUpdate{
		Title:       sanitizePtr(req.Title),
		Description: sanitizePtr(req.Description),
		Frequency:   req.Frequency,
		IsActive:    req.IsActive,
	}

	habit, err := sess.store.UpdateHabit(ctx.Request.Context(), habitID, updates)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	h.rescheduleReminders(ctx, sess)
	utils.Success(ctx, habit)
}

// Delete removes a habit along with its completions and streak row.
func (h *HabitController) Delete(ctx *gin.Context) {
	habitID, ok := paramID(ctx)
	if !ok {
		return
	}
	sess, ok := h.sessions.fromContext(ctx)
	if !ok {
		return
	}

	if err := sess.store.DeleteHabit(ctx.Request.Context(), habitID); err != nil {
		respondStoreError(ctx, err)
		return
	}

	h.rescheduleReminders(ctx, sess)
	utils.Success(ctx, gin.H{"deleted": true})
}

// Toggle flips the habit's active flag.
func (h *HabitController) Toggle(ctx *gin.Context) {
	habitID, ok := paramID(ctx)
	if !ok {
		return
	}
	sess, ok := h.sessions.fromContext(ctx)
	if !ok {
		return
	}

	habit, err := sess.store.ToggleHabitStatus(ctx.Request.Context(), habitID)
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	h.rescheduleReminders(ctx, sess)
	utils.Success(ctx, habit)
}

// Complete records today's completion for the habit. On a streak milestone the
// scheduler fires a celebration notification.
func (h *HabitController) Complete(ctx *gin.Context) {
	habitID, ok := paramID(ctx)
	if !ok {
		return
	}

	type request struct {
		Notes string `json:"notes"`
	}
	var req request
	_ = ctx.ShouldBindJSON(&req)

	sess, ok := h.sessions.fromContext(ctx)
	if !ok {
		return
	}

	completion, err := sess.store.MarkHabitCompleted(ctx.Request.Context(), habitID, utils.Sanitize(req.Notes))
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	var current int
	if streak, ok := sess.store.Streak(habitID); ok {
		current = streak.CurrentStreak
	}
	for _, habit := range sess.store.Habits() {
		if habit.ID == habitID {
			sess.scheduler.NotifyStreak(habit.Title, current)
			break
		}
	}

	utils.Success(ctx, gin.H{
		"completion":     completion,
		"current_streak": current,
	})
}

// Uncomplete removes today's completion for the habit.
func (h *HabitController) Uncomplete(ctx *gin.Context) {
	habitID, ok := paramID(ctx)
	if !ok {
		return
	}
	sess, ok := h.sessions.fromContext(ctx)
	if !ok {
		return
	}

	if err := sess.store.UnmarkHabitCompleted(ctx.Request.Context(), habitID); err != nil {
		respondStoreError(ctx, err)
		return
	}

	var current int
	if streak, ok := sess.store.Streak(habitID); ok {
		current = streak.CurrentStreak
	}
	utils.Success(ctx, gin.H{"current_streak": current})
}

// rescheduleReminders recomputes reminder timers after any habit mutation.
func (h *HabitController) rescheduleReminders(ctx *gin.Context, sess *session) {
	userID := ctx.GetUint(middleware.ContextUserIDKey)
	email := ctx.GetString(middleware.ContextEmailKey)
	profile, err := h.sessions.svc.GetOrCreateProfile(ctx.Request.Context(), userID, email)
	if err != nil {
		utils.Sugar.Warnf("reschedule skipped, profile load failed user=%d err=%v", userID, err)
		return
	}
	h.sessions.reschedule(sess, profile)
}

func paramID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(ctx.Param("id")), 10, 32)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid habit id")
		return 0, false
	}
	return uint(id), true
}

func sanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	clean := utils.Sanitize(strings.TrimSpace(*s))
	return &clean
}

// respondStoreError maps store errors onto HTTP status and app error codes.
func respondStoreError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, habits.ErrHabitNotFound):
		utils.Error(ctx, http.StatusNotFound, 40420, "habit not found")
	case errors.Is(err, habits.ErrAlreadyCompleted), errors.Is(err, remote.ErrDuplicateCompletion):
		utils.Error(ctx, http.StatusConflict, 40030, "habit already completed today")
	case errors.Is(err, habits.ErrNoCompletion):
		utils.Error(ctx, http.StatusConflict, 40031, "no completion recorded today")
	case errors.Is(err, habits.ErrEmptyTitle):
		utils.Error(ctx, http.StatusBadRequest, 40020, "habit title must not be empty")
	case errors.Is(err, habits.ErrBadFrequency):
		utils.Error(ctx, http.StatusBadRequest, 40021, "frequency must be daily, weekly or monthly")
	case errors.Is(err, habits.ErrNotAuthenticated):
		utils.Error(ctx, http.StatusUnauthorized, 40101, "user not authenticated")
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50020, "habit operation failed")
	}
}
