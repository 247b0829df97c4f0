package models

import "time"

// UserProfile holds contact fields and notification preferences. Exactly one
// row per user (primary key = user id); created with defaults on first access.
type UserProfile struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Email              string    `gorm:"size:255" json:"email"`
	FirstName          string    `gorm:"size:64" json:"first_name"`
	LastName           string    `gorm:"size:64" json:"last_name"`
	Phone              string    `gorm:"size:32" json:"phone"`
	EmailNotifications bool      `gorm:"not null;default:true" json:"email_notifications"`
	PushNotifications  bool      `gorm:"not null;default:true" json:"push_notifications"`
	NotificationSound  bool      `gorm:"not null;default:true" json:"notification_sound"`
	WeeklyReports      bool      `gorm:"not null;default:false" json:"weekly_reports"`
	ReminderTime       string    `gorm:"size:8;not null;default:'09:00'" json:"reminder_time"`
	ReminderDays       []int     `gorm:"serializer:json;type:text" json:"reminder_days"`
	QuietHoursStart    string    `gorm:"size:8;not null;default:'22:00'" json:"quiet_hours_start"`
	QuietHoursEnd      string    `gorm:"size:8;not null;default:'08:00'" json:"quiet_hours_end"`
	Timezone           string    `gorm:"size:64;not null;default:'UTC'" json:"timezone"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// DefaultProfile returns the profile created for a user on first access.
// Reminder days cover the whole week (1=Monday .. 7=Sunday).
func DefaultProfile(userID uint, email string) UserProfile {
	return UserProfile{
		ID:                 userID,
		Email:              email,
		EmailNotifications: true,
		PushNotifications:  true,
		NotificationSound:  true,
		ReminderTime:       "09:00",
		ReminderDays:       []int{1, 2, 3, 4, 5, 6, 7},
		QuietHoursStart:    "22:00",
		QuietHoursEnd:      "08:00",
		Timezone:           "UTC",
	}
}
