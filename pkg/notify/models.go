// Package notify delivers outbound owner notifications through a durable
// outbox: callers enqueue messages and a background worker drains them.
// Enqueue failures and delivery failures are logged and never propagate
// into the operation that triggered them.
package notify

import "time"

// State is the delivery state of a queued notification.
type State string

const (
	StateQueued  State = "queued"
	StateSending State = "sending"
	StateSent    State = "sent"
	StateFailed  State = "failed"
)

// Notification is the GORM model for one outbound message.
type Notification struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	Recipient string `gorm:"size:255;not null" json:"recipient"`
	Subject   string `gorm:"size:255;not null" json:"subject"`
	Body      string `gorm:"type:text;not null" json:"body"`
	State     State  `gorm:"type:varchar(16);not null;default:'queued';index" json:"state"`

	Attempts  int    `gorm:"not null;default:0" json:"attempts"`
	LastError string `gorm:"type:text" json:"lastError,omitempty"`

	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
	SentAt    *time.Time `json:"sentAt,omitempty"`
}

func (Notification) TableName() string { return "notifications" }

// Terminal reports whether the notification reached a final state.
func (n *Notification) Terminal() bool {
	return n.State == StateSent || n.State == StateFailed
}
