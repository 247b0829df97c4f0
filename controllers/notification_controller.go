package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/habitflow/habitflow/notify"
	"github.com/habitflow/habitflow/utils"
)

// NotificationController exposes the reminder schedule, the push permission
// state and notification actions.
type NotificationController struct {
	sessions *Sessions
	push     *notify.PushSender
}

// NewNotificationController creates a NotificationController.
func NewNotificationController(sessions *Sessions, push *notify.PushSender) *NotificationController {
	return &NotificationController{sessions: sessions, push: push}
}

// Scheduled lists the user's pending reminders sorted by fire time.
func (n *NotificationController) Scheduled(ctx *gin.Context) {
	sess, ok := n.sessions.fromContext(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{
		"permission": sess.scheduler.Capability().String(),
		"items":      sess.scheduler.Scheduled(),
	})
}

// SetPermission records the push permission the client reported. Denied or
// undetermined permission suppresses push delivery but never email.
func (n *NotificationController) SetPermission(ctx *gin.Context) {
	type request struct {
		Permission string `json:"permission" binding:"required"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	capability, err := notify.ParseCapability(req.Permission)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "permission must be granted, denied or default")
		return
	}

	sess, ok := n.sessions.fromContext(ctx)
	if !ok {
		return
	}
	sess.scheduler.SetCapability(capability)
	utils.Success(ctx, gin.H{"permission": capability.String()})
}

// Test fires an immediate test notification through the push channel.
func (n *NotificationController) Test(ctx *gin.Context) {
	sess, ok := n.sessions.fromContext(ctx)
	if !ok {
		return
	}

	if sess.scheduler.Capability() != notify.CapabilityGranted {
		utils.Error(ctx, http.StatusConflict, 40051, "push permission not granted")
		return
	}

	if err := n.push.Send(
		"Test notification",
		"Notifications are working.",
		"test",
		map[string]interface{}{"type": "test"},
	); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to deliver test notification")
		return
	}
	utils.Success(ctx, gin.H{"delivered": true})
}

// Recent lists recently delivered push notifications.
func (n *NotificationController) Recent(ctx *gin.Context) {
	utils.Success(ctx, n.push.Recent())
}

// CompleteAction handles the notification action button: it marks the habit
// completed exactly as the habit endpoint would.
func (n *NotificationController) CompleteAction(ctx *gin.Context) {
	type request struct {
		HabitID uint `json:"habit_id" binding:"required"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	sess, ok := n.sessions.fromContext(ctx)
	if !ok {
		return
	}

	completion, err := sess.store.MarkHabitCompleted(ctx.Request.Context(), req.HabitID, "")
	if err != nil {
		respondStoreError(ctx, err)
		return
	}

	var current int
	if streak, ok := sess.store.Streak(req.HabitID); ok {
		current = streak.CurrentStreak
	}
	for _, habit := range sess.store.Habits() {
		if habit.ID == req.HabitID {
			sess.scheduler.NotifyStreak(habit.Title, current)
			break
		}
	}

	utils.Success(ctx, gin.H{
		"completion":     completion,
		"current_streak": current,
	})
}
