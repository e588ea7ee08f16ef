// Package registration bootstraps brand-new vehicles: the vehicle row, its
// first IN_USE plate, and its first ownership record are created together
// or not at all.
package registration

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/transport-authority/vehicle-registry/pkg/audit"
	"github.com/transport-authority/vehicle-registry/pkg/owner"
	"github.com/transport-authority/vehicle-registry/pkg/ownership"
	"github.com/transport-authority/vehicle-registry/pkg/plate"
	"github.com/transport-authority/vehicle-registry/pkg/registryerrors"
	"github.com/transport-authority/vehicle-registry/pkg/vehicle"
)

// Input holds everything needed to register a vehicle and issue its first
// plate to its first owner.
type Input struct {
	ChassisNumber       string `json:"chassisNumber"`
	ModelName           string `json:"modelName"`
	ManufacturerCompany string `json:"manufacturerCompany"`
	ManufacturedYear    int    `json:"manufacturedYear"`
	Price               int64  `json:"price"`
	OwnerID             string `json:"ownerId"`
	PlateValue          string `json:"plateNumber"`
}

// VehicleView is the registration response: the new vehicle with its
// current owner and plate.
type VehicleView struct {
	Vehicle      *vehicle.Vehicle `json:"vehicle"`
	CurrentPlate *plate.Plate     `json:"currentPlate"`
	OwnerID      string           `json:"ownerId"`
	OwnerName    string           `json:"ownerName"`
}

// Service registers vehicles.
type Service struct {
	db       *gorm.DB
	vehicles *vehicle.Store
	owners   *owner.Store
	plates   *plate.Store
	ledger   *ownership.Store
	audits   *audit.Store
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithAuditStore enables best-effort audit trail writes.
func WithAuditStore(s *audit.Store) Option {
	return func(svc *Service) { svc.audits = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(svc *Service) { svc.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

// NewService creates a registration Service over the given stores.
func NewService(db *gorm.DB, vehicles *vehicle.Store, owners *owner.Store, plates *plate.Store, ledger *ownership.Store, opts ...Option) *Service {
	s := &Service{
		db:       db,
		vehicles: vehicles,
		owners:   owners,
		plates:   plates,
		ledger:   ledger,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates the vehicle, its first plate, and its initial ownership
// record in one transaction. The initial record's transfer amount is the
// vehicle price.
func (s *Service) Register(ctx context.Context, in Input) (*VehicleView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var view VehicleView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vehicles := s.vehicles.WithTx(tx)
		owners := s.owners.WithTx(tx)
		plates := s.plates.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		o, err := owners.GetByID(in.OwnerID)
		if err != nil {
			return err
		}

		exists, err := vehicles.ExistsByChassisNumber(in.ChassisNumber)
		if err != nil {
			return err
		}
		if exists {
			return registryerrors.Newf(registryerrors.CodeValidation,
				"vehicle with chassis number %q already exists", in.ChassisNumber)
		}

		existingPlate, err := plates.GetByValue(in.PlateValue)
		if err != nil {
			return err
		}
		if existingPlate != nil {
			return registryerrors.Newf(registryerrors.CodeValidation,
				"plate number %q is already registered", in.PlateValue)
		}

		v := &vehicle.Vehicle{
			ChassisNumber:       strings.TrimSpace(in.ChassisNumber),
			ModelName:           strings.TrimSpace(in.ModelName),
			ManufacturerCompany: strings.TrimSpace(in.ManufacturerCompany),
			ManufacturedYear:    in.ManufacturedYear,
			Price:               in.Price,
		}
		if err := vehicles.Create(v); err != nil {
			return err
		}

		p, err := plates.Issue(in.PlateValue, o.ID, v.ID)
		if err != nil {
			return err
		}

		record := &ownership.Record{
			VehicleID:      v.ID,
			OwnerID:        o.ID,
			StartDate:      s.now().UTC(),
			EndDate:        nil,
			TransferAmount: v.Price,
		}
		if err := ledger.Append(record); err != nil {
			return err
		}

		if s.audits != nil {
			_ = s.audits.WithTx(tx).Append(&audit.Event{
				EventType: audit.EventVehicleRegistered,
				Actor:     o.Email,
				VehicleID: v.ID,
				Detail: audit.JSONMap{
					"chassisNumber": v.ChassisNumber,
					"ownerId":       o.ID,
					"plateNumber":   p.Value,
					"price":         v.Price,
				},
			})
		}

		view = VehicleView{
			Vehicle:      v,
			CurrentPlate: p,
			OwnerID:      o.ID,
			OwnerName:    o.FullName(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("vehicle registered",
		"vehicleId", view.Vehicle.ID,
		"chassis", view.Vehicle.ChassisNumber,
		"plate", view.CurrentPlate.Value,
		"ownerId", view.OwnerID)
	return &view, nil
}

func (in *Input) validate() error {
	if strings.TrimSpace(in.ChassisNumber) == "" {
		return registryerrors.New(registryerrors.CodeValidation, "chassisNumber is required")
	}
	if strings.TrimSpace(in.ModelName) == "" {
		return registryerrors.New(registryerrors.CodeValidation, "modelName is required")
	}
	if strings.TrimSpace(in.PlateValue) == "" {
		return registryerrors.New(registryerrors.CodeValidation, "plateNumber is required")
	}
	if strings.TrimSpace(in.OwnerID) == "" {
		return registryerrors.New(registryerrors.CodeValidation, "ownerId is required")
	}
	if in.Price <= 0 {
		return registryerrors.New(registryerrors.CodeValidation, "price must be greater than zero")
	}
	return nil
}
