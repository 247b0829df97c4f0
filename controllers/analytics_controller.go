package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/habitflow/habitflow/analytics"
	"github.com/habitflow/habitflow/utils"
)

// AnalyticsController serves dashboard and per-habit aggregations. All numbers
// are recomputed from the session store's cached collections on every request.
type AnalyticsController struct {
	sessions *Sessions
}

// NewAnalyticsController creates an AnalyticsController.
func NewAnalyticsController(sessions *Sessions) *AnalyticsController {
	return &AnalyticsController{sessions: sessions}
}

func (a *AnalyticsController) snapshot(ctx *gin.Context) (analytics.Snapshot, *session, bool) {
	sess, ok := a.sessions.fromContext(ctx)
	if !ok {
		return analytics.Snapshot{}, nil, false
	}
	snap := analytics.Snapshot{
		Habits:      sess.store.Habits(),
		Completions: sess.store.Completions(),
		Streaks:     sess.store.Streaks(),
	}
	return snap, sess, true
}

// Dashboard returns cross-habit stats plus the weekly, monthly and streak
// series the dashboard renders.
func (a *AnalyticsController) Dashboard(ctx *gin.Context) {
	snap, _, ok := a.snapshot(ctx)
	if !ok {
		return
	}
	now := time.Now()

	utils.Success(ctx, gin.H{
		"stats":   analytics.Dashboard(snap, now),
		"weekly":  analytics.WeeklyOverview(snap, analytics.DefaultWeeks, now),
		"monthly": analytics.MonthlyOverview(snap, analytics.DefaultMonths, now),
		"streaks": analytics.Streaks(snap),
	})
}

// ForHabit returns the analytics bundle for one habit.
func (a *AnalyticsController) ForHabit(ctx *gin.Context) {
	habitID, ok := paramID(ctx)
	if !ok {
		return
	}
	snap, _, ok := a.snapshot(ctx)
	if !ok {
		return
	}

	result, found := analytics.ForHabit(snap, habitID, time.Now())
	if !found {
		utils.Error(ctx, http.StatusNotFound, 40420, "habit not found")
		return
	}
	utils.Success(ctx, result)
}

// Chart returns the daily completion chart. Query params: habit_id (0 or
// absent means all habits), days (default 30).
func (a *AnalyticsController) Chart(ctx *gin.Context) {
	snap, _, ok := a.snapshot(ctx)
	if !ok {
		return
	}

	var habitID uint
	if v := ctx.Query("habit_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40010, "invalid habit id")
			return
		}
		habitID = uint(id)
	}

	days := analytics.DefaultChartDays
	if v := ctx.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 365 {
			utils.Error(ctx, http.StatusBadRequest, 40011, "days must be between 1 and 365")
			return
		}
		days = n
	}

	utils.Success(ctx, analytics.CompletionChart(snap, habitID, days, time.Now()))
}
