package notify

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store provides database operations for the notification outbox.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the notifications table.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&Notification{}); err != nil {
		return fmt.Errorf("auto-migrate notifications: %w", err)
	}
	return nil
}

// Enqueue queues a notification for delivery.
func (s *Store) Enqueue(n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.State == "" {
		n.State = StateQueued
	}
	if err := s.db.Create(n).Error; err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

// Claim atomically picks the oldest queued notification and transitions it
// to sending. The transition is guarded so two workers never claim the same
// row. Returns nil when nothing is queued.
func (s *Store) Claim() (*Notification, error) {
	var n Notification
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("state = ?", StateQueued).
			Order("created_at ASC").
			Limit(1).
			First(&n).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			return fmt.Errorf("find queued notification: %w", err)
		}

		res := tx.Model(&Notification{}).
			Where("id = ? AND state = ?", n.ID, StateQueued).
			Updates(map[string]any{
				"state":    StateSending,
				"attempts": gorm.Expr("attempts + 1"),
			})
		if res.Error != nil {
			return fmt.Errorf("claim notification: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Another worker took it between the read and the update.
			return gorm.ErrRecordNotFound
		}
		n.State = StateSending
		n.Attempts++
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

// MarkSent records a successful delivery.
func (s *Store) MarkSent(id string) error {
	now := time.Now()
	err := s.db.Model(&Notification{}).
		Where("id = ?", id).
		Updates(map[string]any{"state": StateSent, "sent_at": now, "last_error": ""}).Error
	if err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}
	return nil
}

// Fail records a delivery failure. The notification is requeued until it
// exhausts maxAttempts, then parked as failed.
func (s *Store) Fail(id, errMsg string, maxAttempts int) error {
	var n Notification
	if err := s.db.Where("id = ?", id).First(&n).Error; err != nil {
		return fmt.Errorf("load notification: %w", err)
	}
	next := StateQueued
	if n.Attempts >= maxAttempts {
		next = StateFailed
	}
	err := s.db.Model(&Notification{}).
		Where("id = ?", id).
		Updates(map[string]any{"state": next, "last_error": errMsg}).Error
	if err != nil {
		return fmt.Errorf("mark notification failed: %w", err)
	}
	return nil
}

// GetByID returns the notification with the given ID.
func (s *Store) GetByID(id string) (*Notification, error) {
	var n Notification
	if err := s.db.Where("id = ?", id).First(&n).Error; err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return &n, nil
}

// ListByRecipient returns all notifications for a recipient, newest first.
func (s *Store) ListByRecipient(recipient string) ([]Notification, error) {
	var out []Notification
	err := s.db.Where("recipient = ?", recipient).
		Order("created_at DESC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

// DeleteOlderThan removes terminal notifications created before the cutoff.
func (s *Store) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res := s.db.Where("created_at < ? AND state IN ?", cutoff,
		[]State{StateSent, StateFailed}).Delete(&Notification{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete old notifications: %w", res.Error)
	}
	return res.RowsAffected, nil
}
