package owner

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/transport-authority/vehicle-registry/pkg/registryerrors"
)

// Store provides persistence for owners.
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

// AutoMigrate creates or updates the owners table.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&Owner{}); err != nil {
		return fmt.Errorf("auto-migrate owners: %w", err)
	}
	return nil
}

// Create persists a new owner. Identity fields must be unique.
func (s *Store) Create(o *Owner) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.Status == "" {
		o.Status = StatusActive
	}
	if err := s.db.Create(o).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return registryerrors.New(registryerrors.CodeValidation,
				"owner email, phone number, and national ID must be unique")
		}
		return fmt.Errorf("create owner: %w", err)
	}
	return nil
}

// GetByID returns the owner with the given ID, excluding soft-deleted rows.
func (s *Store) GetByID(id string) (*Owner, error) {
	var o Owner
	err := s.db.Where("id = ? AND deleted = ?", id, false).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, registryerrors.NotFound("owner", "ID", id)
		}
		return nil, fmt.Errorf("get owner: %w", err)
	}
	return &o, nil
}

// GetByIDAny returns the owner regardless of its soft-delete flag. Used by
// history projections, which must resolve owners that no longer appear in
// normal lookups.
func (s *Store) GetByIDAny(id string) (*Owner, error) {
	var o Owner
	err := s.db.Where("id = ?", id).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, registryerrors.NotFound("owner", "ID", id)
		}
		return nil, fmt.Errorf("get owner: %w", err)
	}
	return &o, nil
}

// GetByNationalID returns the active owner with the given national ID.
func (s *Store) GetByNationalID(nationalID string) (*Owner, error) {
	nationalID = strings.TrimSpace(nationalID)
	var o Owner
	err := s.db.Where("national_id = ? AND deleted = ?", nationalID, false).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, registryerrors.NotFound("owner", "national ID", nationalID)
		}
		return nil, fmt.Errorf("get owner by national id: %w", err)
	}
	return &o, nil
}

// SoftDelete marks the owner deleted without erasing history.
func (s *Store) SoftDelete(id string) error {
	res := s.db.Model(&Owner{}).
		Where("id = ? AND deleted = ?", id, false).
		Updates(map[string]any{"deleted": true, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("soft-delete owner: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return registryerrors.NotFound("owner", "ID", id)
	}
	return nil
}
