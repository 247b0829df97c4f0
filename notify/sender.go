package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DeliveredNotification is a notification that made it past the permission and
// quiet-hours gates.
type DeliveredNotification struct {
	Title       string                 `json:"title"`
	Body        string                 `json:"body"`
	Tag         string                 `json:"tag"`
	Data        map[string]interface{} `json:"data,omitempty"`
	DeliveredAt time.Time              `json:"delivered_at"`
}

// PushSender hands notifications to the platform channel. Actual display is a
// platform capability; the server keeps a bounded recent-delivery log so
// clients can poll what fired while they were away.
type PushSender struct {
	log *zap.SugaredLogger

	mu     sync.Mutex
	recent []DeliveredNotification
	limit  int
}

// NewPushSender creates a sender keeping up to limit recent deliveries.
func NewPushSender(log *zap.SugaredLogger, limit int) *PushSender {
	if limit <= 0 {
		limit = 50
	}
	return &PushSender{log: log, limit: limit}
}

// Send records the delivery.
func (p *PushSender) Send(title, body, tag string, data map[string]interface{}) error {
	n := DeliveredNotification{
		Title:       title,
		Body:        body,
		Tag:         tag,
		Data:        data,
		DeliveredAt: time.Now(),
	}

	p.mu.Lock()
	p.recent = append(p.recent, n)
	if len(p.recent) > p.limit {
		p.recent = p.recent[len(p.recent)-p.limit:]
	}
	p.mu.Unlock()

	if p.log != nil {
		p.log.Infow("notification delivered", "title", title, "tag", tag)
	}
	return nil
}

// Recent returns the delivery log, oldest first.
func (p *PushSender) Recent() []DeliveredNotification {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]DeliveredNotification, len(p.recent))
	copy(out, p.recent)
	return out
}
