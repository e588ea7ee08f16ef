package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store provides persistence for audit events.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx returns a copy of the store bound to the given transaction.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx}
}

// AutoMigrate creates or updates the audit_events table.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&Event{}); err != nil {
		return fmt.Errorf("auto-migrate audit events: %w", err)
	}
	return nil
}

// Append persists an audit event.
func (s *Store) Append(e *Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if err := s.db.Create(e).Error; err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListByVehicle returns up to limit events for a vehicle, newest first.
func (s *Store) ListByVehicle(vehicleID string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []Event
	err := s.db.Where("vehicle_id = ?", vehicleID).
		Order("created_at DESC").Limit(limit).Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return events, nil
}

// DeleteOlderThan removes events created before the cutoff and returns the
// number removed.
func (s *Store) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res := s.db.Where("created_at < ?", cutoff).Delete(&Event{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete old audit events: %w", res.Error)
	}
	return res.RowsAffected, nil
}
