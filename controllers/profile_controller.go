package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/habitflow/habitflow/middleware"
	"github.com/habitflow/habitflow/remote"
	"github.com/habitflow/habitflow/utils"
)

// ProfileController serves the user profile and notification preferences.
// Saving preferences reschedules the user's reminders immediately.
type ProfileController struct {
	svc      *remote.Service
	sessions *Sessions
}

// NewProfileController creates a ProfileController.
func NewProfileController(svc *remote.Service, sessions *Sessions) *ProfileController {
	return &ProfileController{svc: svc, sessions: sessions}
}

// Get returns the profile row, creating it with defaults on first access.
func (p *ProfileController) Get(ctx *gin.Context) {
	userID := ctx.GetUint(middleware.ContextUserIDKey)
	email := ctx.GetString(middleware.ContextEmailKey)

	profile, err := p.svc.GetOrCreateProfile(ctx.Request.Context(), userID, email)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load profile")
		return
	}
	utils.Success(ctx, profile)
}

// Update applies partial profile changes and rebuilds the reminder schedule.
func (p *ProfileController) Update(ctx *gin.Context) {
	type request struct {
		FirstName          *string `json:"first_name"`
		LastName           *string `json:"last_name"`
		Phone              *string `json:"phone"`
		EmailNotifications *bool   `json:"email_notifications"`
		PushNotifications  *bool   `json:"push_notifications"`
		NotificationSound  *bool   `json:"notification_sound"`
		WeeklyReports      *bool   `json:"weekly_reports"`
		ReminderTime       *string `json:"reminder_time"`
		ReminderDays       *[]int  `json:"reminder_days"`
		QuietHoursStart    *string `json:"quiet_hours_start"`
		QuietHoursEnd      *string `json:"quiet_hours_end"`
		Timezone           *string `json:"timezone"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	fields := map[string]interface{}{}
	if req.FirstName != nil {
		fields["first_name"] = utils.Sanitize(strings.TrimSpace(*req.FirstName))
	}
	if req.LastName != nil {
		fields["last_name"] = utils.Sanitize(strings.TrimSpace(*req.LastName))
	}
	if req.Phone != nil {
		fields["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.EmailNotifications != nil {
		fields["email_notifications"] = *req.EmailNotifications
	}
	if req.PushNotifications != nil {
		fields["push_notifications"] = *req.PushNotifications
	}
	if req.NotificationSound != nil {
		fields["notification_sound"] = *req.NotificationSound
	}
	if req.WeeklyReports != nil {
		fields["weekly_reports"] = *req.WeeklyReports
	}
	if req.ReminderTime != nil {
		if !validClock(*req.ReminderTime) {
			utils.Error(ctx, http.StatusBadRequest, 40040, "reminder_time must be HH:MM")
			return
		}
		fields["reminder_time"] = *req.ReminderTime
	}
	if req.ReminderDays != nil {
		for _, d := range *req.ReminderDays {
			if d < 1 || d > 7 {
				utils.Error(ctx, http.StatusBadRequest, 40041, "reminder_days entries must be 1-7")
				return
			}
		}
		fields["reminder_days"] = *req.ReminderDays
	}
	if req.QuietHoursStart != nil {
		if !validClock(*req.QuietHoursStart) {
			utils.Error(ctx, http.StatusBadRequest, 40042, "quiet_hours_start must be HH:MM")
			return
		}
		fields["quiet_hours_start"] = *req.QuietHoursStart
	}
	if req.QuietHoursEnd != nil {
		if !validClock(*req.QuietHoursEnd) {
			utils.Error(ctx, http.StatusBadRequest, 40043, "quiet_hours_end must be HH:MM")
			return
		}
		fields["quiet_hours_end"] = *req.QuietHoursEnd
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40044, "unknown timezone")
			return
		}
		fields["timezone"] = *req.Timezone
	}

	if len(fields) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40045, "no profile fields to update")
		return
	}

	userID := ctx.GetUint(middleware.ContextUserIDKey)
	profile, err := p.svc.UpdateProfile(ctx.Request.Context(), userID, fields)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to update profile")
		return
	}

	// Preferences changed; rebuild the reminder schedule from them.
	if sess, ok := p.sessions.fromContext(ctx); ok {
		p.sessions.reschedule(sess, profile)
	}

	utils.Success(ctx, profile)
}

func validClock(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}
