package notify

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// EmailRequest mirrors the outbound email endpoint's payload.
type EmailRequest struct {
	To               string `json:"to"`
	Subject          string `json:"subject"`
	HabitTitle       string `json:"habitTitle"`
	HabitDescription string `json:"habitDescription,omitempty"`
	Type             string `json:"type"` // reminder | streak | weekly_report
	StreakCount      int    `json:"streakCount,omitempty"`
	UserName         string `json:"userName,omitempty"`
}

// EmailResult reports a delivered message.
type EmailResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
}

// SendFunc is the low-level mail transport (SMTP in production). It must fail
// when the provider is not configured.
type SendFunc func(to, subject, body string) error

// EmailSender renders notification emails and hands them to the transport.
// A default recipient and display name are bound per user session.
type EmailSender struct {
	send     SendFunc
	to       string
	userName string
}

// NewEmailSender binds the transport and the session's recipient.
func NewEmailSender(send SendFunc, to, userName string) *EmailSender {
	return &EmailSender{send: send, to: to, userName: userName}
}

// Send renders the message for its type and delivers it. Fails closed when the
// transport is unavailable or the type is unknown.
func (e *EmailSender) Send(req EmailRequest) (EmailResult, error) {
	if e == nil || e.send == nil {
		return EmailResult{}, fmt.Errorf("email provider not configured")
	}
	to := req.To
	if to == "" {
		to = e.to
	}
	if to == "" {
		return EmailResult{}, fmt.Errorf("missing recipient")
	}
	name := req.UserName
	if name == "" {
		name = e.userName
	}
	if name == "" {
		name = "there"
	}

	var body string
	switch req.Type {
	case TypeReminder:
		body = reminderBody(name, req.HabitTitle, req.HabitDescription)
	case TypeStreak:
		body = streakBody(name, req.HabitTitle, req.StreakCount)
	case TypeWeeklyReport:
		body = weeklyReportBody(name)
	default:
		return EmailResult{}, fmt.Errorf("invalid email type %q", req.Type)
	}

	if err := e.send(to, req.Subject, body); err != nil {
		return EmailResult{}, err
	}
	return EmailResult{Success: true, MessageID: uuid.NewString()}, nil
}

func reminderBody(name, habitTitle, habitDescription string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s!\n\n", name)
	fmt.Fprintf(&b, "Don't forget to complete your habit: %s\n\n", habitTitle)
	if habitDescription != "" {
		fmt.Fprintf(&b, "%s\n\n", habitDescription)
	}
	b.WriteString("Keep up the great work!\n\nBest regards,\nHabit Flow Team")
	return b.String()
}

func streakBody(name, habitTitle string, streakCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Congratulations %s!\n\n", name)
	fmt.Fprintf(&b, "You've achieved a %d-day streak with %q!\n\n", streakCount, habitTitle)
	b.WriteString("This is an amazing accomplishment. Keep up the fantastic work!\n\nBest regards,\nHabit Flow Team")
	return b.String()
}

func weeklyReportBody(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s!\n\n", name)
	b.WriteString("Here's your weekly habit progress report.\n\n")
	b.WriteString("Check out your dashboard to see your detailed progress!\n\nBest regards,\nHabit Flow Team")
	return b.String()
}
