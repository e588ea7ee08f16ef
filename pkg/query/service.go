// Package query builds read-only projections over the plate registry and
// ownership ledger: current vehicle state and ownership history by vehicle,
// chassis number, or plate. It never mutates.
package query

import (
	"time"

	"gorm.io/gorm"

	"github.com/transport-authority/vehicle-registry/pkg/owner"
	"github.com/transport-authority/vehicle-registry/pkg/ownership"
	"github.com/transport-authority/vehicle-registry/pkg/plate"
	"github.com/transport-authority/vehicle-registry/pkg/registryerrors"
	"github.com/transport-authority/vehicle-registry/pkg/vehicle"
)

// OwnerName is the compact owner reference embedded in views.
type OwnerName struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// RecordView is one ownership interval enriched with vehicle and owner
// references.
type RecordView struct {
	ID             string          `json:"id"`
	Vehicle        vehicle.Summary `json:"vehicle"`
	Owner          OwnerName       `json:"owner"`
	StartDate      time.Time       `json:"startDate"`
	EndDate        *time.Time      `json:"endDate"`
	TransferAmount int64           `json:"transferAmount"`
}

// VehicleState is the current projection of a vehicle: its active plate and
// active ownership record.
type VehicleState struct {
	Vehicle       *vehicle.Vehicle  `json:"vehicle"`
	CurrentPlate  *plate.Plate      `json:"currentPlate"`
	CurrentOwner  *OwnerName        `json:"currentOwner"`
	CurrentRecord *ownership.Record `json:"currentRecord"`
}

// Service answers read-only registry queries.
type Service struct {
	db       *gorm.DB
	vehicles *vehicle.Store
	owners   *owner.Store
	plates   *plate.Store
	ledger   *ownership.Store
}

// NewService creates a query Service over the given stores.
func NewService(db *gorm.DB, vehicles *vehicle.Store, owners *owner.Store, plates *plate.Store, ledger *ownership.Store) *Service {
	return &Service{db: db, vehicles: vehicles, owners: owners, plates: plates, ledger: ledger}
}

// VehicleState returns the current state of an active vehicle.
func (s *Service) VehicleState(vehicleID string) (*VehicleState, error) {
	v, err := s.vehicles.GetByID(vehicleID)
	if err != nil {
		return nil, err
	}

	state := &VehicleState{Vehicle: v}

	p, err := s.plates.ActiveOnVehicle(v.ID)
	if err != nil {
		return nil, err
	}
	state.CurrentPlate = p

	record, err := s.ledger.CurrentByVehicle(v.ID)
	if err != nil {
		if registryerrors.IsValidation(err) {
			// Vehicle exists but has no open record; surface what we have.
			return state, nil
		}
		return nil, err
	}
	state.CurrentRecord = record

	o, err := s.owners.GetByIDAny(record.OwnerID)
	if err != nil {
		return nil, err
	}
	state.CurrentOwner = &OwnerName{ID: o.ID, FirstName: o.FirstName, LastName: o.LastName}
	return state, nil
}

// HistoryByVehicle returns the full ownership history for a vehicle,
// most recent first.
func (s *Service) HistoryByVehicle(vehicleID string) ([]RecordView, error) {
	v, err := s.vehicles.GetByID(vehicleID)
	if err != nil {
		return nil, err
	}
	return s.historyOf(v)
}

// HistoryByChassis returns the ownership history for the vehicle carrying
// the given chassis number.
func (s *Service) HistoryByChassis(chassisNumber string) ([]RecordView, error) {
	v, err := s.vehicles.GetByChassisNumber(chassisNumber)
	if err != nil {
		return nil, err
	}
	return s.historyOf(v)
}

// HistoryByPlate returns the ownership history of the vehicle the plate is,
// or was most recently, bound to.
func (s *Service) HistoryByPlate(plateValue string) ([]RecordView, error) {
	p, err := s.plates.GetByValue(plateValue)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, registryerrors.NotFound("plate", "number", plateValue)
	}
	if p.VehicleID == "" {
		return nil, registryerrors.Newf(registryerrors.CodeNotFound,
			"plate number %q is not associated with any vehicle", plateValue)
	}
	v, err := s.vehicles.GetByID(p.VehicleID)
	if err != nil {
		return nil, err
	}
	return s.historyOf(v)
}

func (s *Service) historyOf(v *vehicle.Vehicle) ([]RecordView, error) {
	records, err := s.ledger.HistoryByVehicle(v.ID)
	if err != nil {
		return nil, err
	}

	// Owners repeat across intervals; resolve each once. Soft-deleted
	// owners still appear in history.
	names := make(map[string]OwnerName)
	views := make([]RecordView, 0, len(records))
	for _, r := range records {
		name, ok := names[r.OwnerID]
		if !ok {
			o, err := s.owners.GetByIDAny(r.OwnerID)
			if err != nil {
				return nil, err
			}
			name = OwnerName{ID: o.ID, FirstName: o.FirstName, LastName: o.LastName}
			names[r.OwnerID] = name
		}
		views = append(views, RecordView{
			ID:             r.ID,
			Vehicle:        v.Summarize(),
			Owner:          name,
			StartDate:      r.StartDate,
			EndDate:        r.EndDate,
			TransferAmount: r.TransferAmount,
		})
	}
	return views, nil
}
