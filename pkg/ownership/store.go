package ownership

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/transport-authority/vehicle-registry/pkg/registryerrors"
)

// Store provides persistence for the ownership ledger.
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

// AutoMigrate creates or updates the ownership_records table.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("auto-migrate ownership records: %w", err)
	}
	return nil
}

// Append persists a new ledger record.
func (s *Store) Append(r *Record) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if err := s.db.Create(r).Error; err != nil {
		return fmt.Errorf("append ownership record: %w", err)
	}
	return nil
}

// CurrentByVehicle returns the unique active (nil EndDate) record for the
// vehicle. A registered vehicle must always have exactly one; its absence
// is a validation error, not an empty result.
func (s *Store) CurrentByVehicle(vehicleID string) (*Record, error) {
	var records []Record
	err := s.db.Where("vehicle_id = ? AND end_date IS NULL", vehicleID).
		Order("start_date DESC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("find current ownership: %w", err)
	}
	if len(records) == 0 {
		return nil, registryerrors.Newf(registryerrors.CodeValidation,
			"vehicle %s has no active ownership record", vehicleID)
	}
	// More than one open record would violate the ledger invariant; take
	// the newest, matching how the original system resolved it.
	return &records[0], nil
}

// CloseAndOpen closes the given active record at now and appends the
// successor record for the new owner in the same transaction scope.
//
// The close is guarded: it only applies while the record is still open. A
// concurrent transfer that committed first will have closed it already, in
// which case the caller observes a conflict and must retry from scratch.
func (s *Store) CloseAndOpen(closing *Record, newOwnerID string, amount int64, now time.Time) (*Record, error) {
	res := s.db.Model(&Record{}).
		Where("id = ? AND end_date IS NULL", closing.ID).
		Update("end_date", now)
	if res.Error != nil {
		return nil, fmt.Errorf("close ownership record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, registryerrors.Newf(registryerrors.CodeConflict,
			"ownership of vehicle %s changed concurrently; retry the transfer", closing.VehicleID)
	}
	closing.EndDate = &now

	next := &Record{
		ID:             uuid.New().String(),
		VehicleID:      closing.VehicleID,
		OwnerID:        newOwnerID,
		StartDate:      now,
		EndDate:        nil,
		TransferAmount: amount,
	}
	if err := s.Append(next); err != nil {
		return nil, err
	}
	return next, nil
}

// HistoryByVehicle returns every record for the vehicle, most recent first.
func (s *Store) HistoryByVehicle(vehicleID string) ([]Record, error) {
	var records []Record
	err := s.db.Where("vehicle_id = ?", vehicleID).
		Order("start_date DESC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list ownership history: %w", err)
	}
	return records, nil
}

// CountByVehicle returns the ledger length for a vehicle.
func (s *Store) CountByVehicle(vehicleID string) (int64, error) {
	var count int64
	err := s.db.Model(&Record{}).Where("vehicle_id = ?", vehicleID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count ownership records: %w", err)
	}
	return count, nil
}
