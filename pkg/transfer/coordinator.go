// Package transfer executes ownership transfers: the atomic operation
// moving a vehicle's current ownership and active plate from one owner to
// another while appending to the ownership ledger.
package transfer

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

// Notifier delivers transfer notifications to both parties. Delivery is
// best-effort: a failure is logged and never fails the transfer.
type Notifier interface {
	OwnershipTransferred(ctx context.Context, from, to *owner.Owner, v *vehicle.Vehicle, oldPlate, newPlate string, amount int64) error
}

// Request describes a single transfer. CurrentOwnerID is a confirmation
// supplied by the caller, not a source of truth: the actual current owner
// is re-derived from the ledger and the two must agree.
type Request struct {
	VehicleID      string `json:"vehicleId"`
	CurrentOwnerID string `json:"currentOwnerId"`
	NewOwnerID     string `json:"newOwnerId"`
	Amount         int64  `json:"transferAmount"`
	NewPlateValue  string `json:"newPlateNumber"`
}

// Result reports what a committed transfer changed.
type Result struct {
	Vehicle       vehicle.Summary   `json:"vehicle"`
	FromOwnerID   string            `json:"fromOwnerId"`
	ToOwnerID     string            `json:"toOwnerId"`
	OldPlateValue string            `json:"oldPlateNumber"`
	NewPlateValue string            `json:"newPlateNumber"`
	ClosedRecord  *ownership.Record `json:"closedRecord"`
	NewRecord     *ownership.Record `json:"newRecord"`
}

// Coordinator orchestrates transfers across the vehicle, owner, plate, and
// ledger stores inside one database transaction.
type Coordinator struct {
	db       *gorm.DB
	vehicles *vehicle.Store
	owners   *owner.Store
	plates   *plate.Store
	ledger   *ownership.Store
	audits   *audit.Store
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithNotifier sets the notification collaborator.
func WithNotifier(n Notifier) Option {
	return func(c *Coordinator) { c.notifier = n }
}

// WithAuditStore enables best-effort audit trail writes.
func WithAuditStore(s *audit.Store) Option {
	return func(c *Coordinator) { c.audits = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator creates a Coordinator over the given stores.
func NewCoordinator(db *gorm.DB, vehicles *vehicle.Store, owners *owner.Store, plates *plate.Store, ledger *ownership.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		db:       db,
		vehicles: vehicles,
		owners:   owners,
		plates:   plates,
		ledger:   ledger,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Transfer moves the vehicle and the right plate from its current owner to
// the new owner. Either every step is durably applied or none are; after
// commit the vehicle has exactly one active ownership record and one
// IN_USE plate, both pointing at the new owner.
func (c *Coordinator) Transfer(ctx context.Context, req Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var (
		result   Result
		fromOwn  *owner.Owner
		toOwn    *owner.Owner
		vehicleV *vehicle.Vehicle
	)

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vehicles := c.vehicles.WithTx(tx)
		owners := c.owners.WithTx(tx)
		plates := c.plates.WithTx(tx)
		ledger := c.ledger.WithTx(tx)

		v, err := vehicles.GetByID(req.VehicleID)
		if err != nil {
			return err
		}

		current, err := ledger.CurrentByVehicle(v.ID)
		if err != nil {
			return err
		}
		if current.OwnerID != req.CurrentOwnerID {
			return registryerrors.Newf(registryerrors.CodeValidation,
				"provided current owner %s does not match the vehicle's actual current owner %s",
				req.CurrentOwnerID, current.OwnerID)
		}

		actualOwner, err := owners.GetByID(current.OwnerID)
		if err != nil {
			return err
		}
		newOwner, err := owners.GetByID(req.NewOwnerID)
		if err != nil {
			return err
		}
		if actualOwner.ID == newOwner.ID {
			return registryerrors.New(registryerrors.CodeValidation,
				"cannot transfer vehicle to the same owner")
		}

		activePlate, err := plates.ActiveOnVehicle(v.ID)
		if err != nil {
			return err
		}
		if activePlate == nil {
			return registryerrors.Newf(registryerrors.CodeValidation,
				"no active IN_USE plate found for vehicle %s", v.ID)
		}
		if activePlate.OwnerID != actualOwner.ID {
			return registryerrors.Newf(registryerrors.CodeValidation,
				"active plate %s on vehicle %s is owned by %s, but the current vehicle owner is %s",
				activePlate.Value, v.ID, activePlate.OwnerID, actualOwner.ID)
		}

		if _, err := plates.SetStatus(activePlate.ID, plate.StatusTransferredOut); err != nil {
			return err
		}

		newPlate, err := plates.Issue(req.NewPlateValue, newOwner.ID, v.ID)
		if err != nil {
			return err
		}

		now := c.now().UTC()
		newRecord, err := ledger.CloseAndOpen(current, newOwner.ID, req.Amount, now)
		if err != nil {
			return err
		}

		if c.audits != nil {
			// Best-effort trail; a failed append never fails the transfer.
			_ = c.audits.WithTx(tx).Append(&audit.Event{
				EventType: audit.EventOwnershipTransferred,
				Actor:     actualOwner.Email,
				VehicleID: v.ID,
				Detail: audit.JSONMap{
					"fromOwnerId": actualOwner.ID,
					"toOwnerId":   newOwner.ID,
					"oldPlate":    activePlate.Value,
					"newPlate":    newPlate.Value,
					"amount":      req.Amount,
				},
			})
		}

		fromOwn, toOwn, vehicleV = actualOwner, newOwner, v
		result = Result{
			Vehicle:       v.Summarize(),
			FromOwnerID:   actualOwner.ID,
			ToOwnerID:     newOwner.ID,
			OldPlateValue: activePlate.Value,
			NewPlateValue: newPlate.Value,
			ClosedRecord:  current,
			NewRecord:     newRecord,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("ownership transferred",
		"vehicleId", result.Vehicle.ID,
		"chassis", result.Vehicle.ChassisNumber,
		"fromOwnerId", result.FromOwnerID,
		"toOwnerId", result.ToOwnerID,
		"oldPlate", result.OldPlateValue,
		"newPlate", result.NewPlateValue)

	if c.notifier != nil {
		if err := c.notifier.OwnershipTransferred(ctx, fromOwn, toOwn, vehicleV,
			result.OldPlateValue, result.NewPlateValue, req.Amount); err != nil {
			c.logger.Error("transfer notification failed",
				"vehicleId", result.Vehicle.ID, "error", err)
		}
	}

	return &result, nil
}

func (r *Request) validate() error {
	if strings.TrimSpace(r.VehicleID) == "" {
		return registryerrors.New(registryerrors.CodeValidation, "vehicleId is required")
	}
	if strings.TrimSpace(r.CurrentOwnerID) == "" {
		return registryerrors.New(registryerrors.CodeValidation, "currentOwnerId is required")
	}
	if strings.TrimSpace(r.NewOwnerID) == "" {
		return registryerrors.New(registryerrors.CodeValidation, "newOwnerId is required")
	}
	if strings.TrimSpace(r.NewPlateValue) == "" {
		return registryerrors.New(registryerrors.CodeValidation, "newPlateNumber is required")
	}
	if r.Amount <= 0 {
		return registryerrors.New(registryerrors.CodeValidation, "transferAmount must be greater than zero")
	}
	return nil
}
