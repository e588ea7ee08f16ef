package vehicle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/transport-authority/vehicle-registry/pkg/registryerrors"
)

// Store provides persistence for vehicles.
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

// AutoMigrate creates or updates the vehicles table.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&Vehicle{}); err != nil {
		return fmt.Errorf("auto-migrate vehicles: %w", err)
	}
	return nil
}

// Create persists a new vehicle.
func (s *Store) Create(v *Vehicle) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if err := s.db.Create(v).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return registryerrors.Newf(registryerrors.CodeValidation,
				"vehicle with chassis number %q already exists", v.ChassisNumber)
		}
		return fmt.Errorf("create vehicle: %w", err)
	}
	return nil
}

// GetByID returns the vehicle with the given ID, excluding soft-deleted rows.
func (s *Store) GetByID(id string) (*Vehicle, error) {
	var v Vehicle
	err := s.db.Where("id = ? AND deleted = ?", id, false).First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, registryerrors.NotFound("vehicle", "ID", id)
		}
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	return &v, nil
}

// GetByIDAny returns the vehicle regardless of its soft-delete flag.
func (s *Store) GetByIDAny(id string) (*Vehicle, error) {
	var v Vehicle
	err := s.db.Where("id = ?", id).First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, registryerrors.NotFound("vehicle", "ID", id)
		}
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	return &v, nil
}

// GetByChassisNumber returns the active vehicle with the given chassis number.
func (s *Store) GetByChassisNumber(chassis string) (*Vehicle, error) {
	chassis = strings.TrimSpace(chassis)
	var v Vehicle
	err := s.db.Where("chassis_number = ? AND deleted = ?", chassis, false).First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, registryerrors.NotFound("vehicle", "chassis number", chassis)
		}
		return nil, fmt.Errorf("get vehicle by chassis: %w", err)
	}
	return &v, nil
}

// ExistsByChassisNumber reports whether any vehicle row, deleted or not,
// carries the given chassis number. Chassis numbers are never reissued.
func (s *Store) ExistsByChassisNumber(chassis string) (bool, error) {
	var count int64
	err := s.db.Model(&Vehicle{}).Where("chassis_number = ?", strings.TrimSpace(chassis)).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count vehicles by chassis: %w", err)
	}
	return count > 0, nil
}

// UpdateMetadata updates mutable vehicle fields. The chassis number is
// immutable and ignored here.
func (s *Store) UpdateMetadata(id string, modelName, manufacturer string, year int, price int64) (*Vehicle, error) {
	v, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if modelName != "" {
		v.ModelName = modelName
	}
	if manufacturer != "" {
		v.ManufacturerCompany = manufacturer
	}
	if year > 0 {
		v.ManufacturedYear = year
	}
	if price > 0 {
		v.Price = price
	}
	if err := s.db.Save(v).Error; err != nil {
		return nil, fmt.Errorf("update vehicle: %w", err)
	}
	return v, nil
}

// SoftDelete marks the vehicle deleted. Plates and ownership history are
// kept; the caller cascades plate status changes in the same transaction.
func (s *Store) SoftDelete(id string) error {
	res := s.db.Model(&Vehicle{}).
		Where("id = ? AND deleted = ?", id, false).
		Updates(map[string]any{"deleted": true, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("soft-delete vehicle: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return registryerrors.NotFound("vehicle", "ID", id)
	}
	return nil
}
