package plate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/transport-authority/vehicle-registry/pkg/registryerrors"
)

// Store provides persistence and guarded status mutation for plates.
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

// AutoMigrate creates or updates the plates table.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&Plate{}); err != nil {
		return fmt.Errorf("auto-migrate plates: %w", err)
	}
	return nil
}

// GetByID returns the plate with the given ID.
func (s *Store) GetByID(id string) (*Plate, error) {
	var p Plate
	if err := s.db.Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, registryerrors.NotFound("plate", "ID", id)
		}
		return nil, fmt.Errorf("get plate: %w", err)
	}
	return &p, nil
}

// GetByValue returns the plate carrying the given string, or nil when no
// such plate has ever been issued.
func (s *Store) GetByValue(value string) (*Plate, error) {
	var p Plate
	err := s.db.Where("value = ?", strings.TrimSpace(value)).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plate by value: %w", err)
	}
	return &p, nil
}

// ActiveOnVehicle returns the IN_USE plate on the vehicle, or nil when the
// vehicle has none. More than one active plate is a broken invariant and is
// reported as a validation error.
func (s *Store) ActiveOnVehicle(vehicleID string) (*Plate, error) {
	var plates []Plate
	err := s.db.Where("vehicle_id = ? AND status = ?", vehicleID, StatusInUse).Find(&plates).Error
	if err != nil {
		return nil, fmt.Errorf("find active plate: %w", err)
	}
	switch len(plates) {
	case 0:
		return nil, nil
	case 1:
		return &plates[0], nil
	default:
		return nil, registryerrors.Newf(registryerrors.CodeValidation,
			"vehicle %s has %d IN_USE plates; expected at most one", vehicleID, len(plates))
	}
}

// ListByOwner returns all plates ever issued to the owner, newest first.
func (s *Store) ListByOwner(ownerID string) ([]Plate, error) {
	var plates []Plate
	err := s.db.Where("owner_id = ?", ownerID).Order("issued_at DESC").Find(&plates).Error
	if err != nil {
		return nil, fmt.Errorf("list plates by owner: %w", err)
	}
	return plates, nil
}

// ListByVehicle returns all plates ever bound to the vehicle, newest first.
func (s *Store) ListByVehicle(vehicleID string) ([]Plate, error) {
	var plates []Plate
	err := s.db.Where("vehicle_id = ?", vehicleID).Order("issued_at DESC").Find(&plates).Error
	if err != nil {
		return nil, fmt.Errorf("list plates by vehicle: %w", err)
	}
	return plates, nil
}

// Issue binds a plate string to an owner and vehicle in state IN_USE.
//
// A brand-new string creates a fresh plate. An existing string is accepted
// only when it belongs to the same owner and is AVAILABLE or TRANSFERRED_OUT
// (reactivation, rebinding owner and vehicle), or when it is already IN_USE
// on this very vehicle (idempotent no-op). Every other combination is a
// validation error.
func (s *Store) Issue(value, ownerID, vehicleID string) (*Plate, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, registryerrors.New(registryerrors.CodeValidation, "plate number is required")
	}

	existing, err := s.GetByValue(value)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		p := &Plate{
			ID:        uuid.New().String(),
			Value:     value,
			OwnerID:   ownerID,
			VehicleID: vehicleID,
			Status:    StatusInUse,
		}
		if err := s.db.Create(p).Error; err != nil {
			return nil, fmt.Errorf("create plate: %w", err)
		}
		return p, nil
	}

	if existing.OwnerID != ownerID {
		return nil, registryerrors.Newf(registryerrors.CodeValidation,
			"plate number %q is registered to a different owner", value)
	}
	switch existing.Status {
	case StatusInUse:
		if existing.VehicleID != vehicleID {
			return nil, registryerrors.Newf(registryerrors.CodeValidation,
				"plate number %q is already IN_USE on a different vehicle", value)
		}
		// Already active on this vehicle for this owner.
		return existing, nil
	case StatusAvailable, StatusTransferredOut:
		existing.VehicleID = vehicleID
		existing.Status = StatusInUse
		if err := s.db.Save(existing).Error; err != nil {
			return nil, fmt.Errorf("reactivate plate: %w", err)
		}
		return existing, nil
	default:
		return nil, registryerrors.Newf(registryerrors.CodeValidation,
			"plate number %q is not in an assignable status (current: %s)", value, existing.Status)
	}
}

// SetStatus applies an admin status transition guarded by the state machine.
func (s *Store) SetStatus(id string, to Status) (*Plate, error) {
	if !to.Valid() {
		return nil, registryerrors.Newf(registryerrors.CodeValidation, "unknown plate status %q", to)
	}
	p, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(p.Status, to); err != nil {
		return nil, registryerrors.Wrap(err, registryerrors.CodeValidation, err.Error())
	}
	if p.Status == to {
		return p, nil
	}
	p.Status = to
	if err := s.db.Save(p).Error; err != nil {
		return nil, fmt.Errorf("update plate status: %w", err)
	}
	return p, nil
}

// TransferOutActive moves every IN_USE plate on the vehicle to
// TRANSFERRED_OUT and returns them. The slice may be empty; callers that
// require an active plate check for themselves.
func (s *Store) TransferOutActive(vehicleID string) ([]Plate, error) {
	var plates []Plate
	err := s.db.Where("vehicle_id = ? AND status = ?", vehicleID, StatusInUse).Find(&plates).Error
	if err != nil {
		return nil, fmt.Errorf("find active plates: %w", err)
	}
	for i := range plates {
		plates[i].Status = StatusTransferredOut
		if err := s.db.Save(&plates[i]).Error; err != nil {
			return nil, fmt.Errorf("transfer out plate %s: %w", plates[i].Value, err)
		}
	}
	return plates, nil
}

// RetireActive moves every IN_USE plate on the vehicle to TRANSFERRED_OUT
// and fails when the vehicle has none: once registered, a vehicle is
// expected to carry exactly one active plate, so zero signals inconsistent
// data rather than a no-op.
func (s *Store) RetireActive(vehicleID string) ([]Plate, error) {
	plates, err := s.TransferOutActive(vehicleID)
	if err != nil {
		return nil, err
	}
	if len(plates) == 0 {
		return nil, registryerrors.Newf(registryerrors.CodeValidation,
			"no active IN_USE plate found for vehicle %s", vehicleID)
	}
	return plates, nil
}

// RetireAllOnVehicle force-retires every non-retired plate on the vehicle.
// Used when a vehicle is soft-deleted: its plates leave circulation but the
// rows, and all history referencing them, are kept.
func (s *Store) RetireAllOnVehicle(vehicleID string) error {
	err := s.db.Model(&Plate{}).
		Where("vehicle_id = ? AND status <> ?", vehicleID, StatusRetired).
		Update("status", StatusRetired).Error
	if err != nil {
		return fmt.Errorf("retire plates on vehicle: %w", err)
	}
	return nil
}
