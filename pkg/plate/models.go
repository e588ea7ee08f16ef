// Package plate owns the license plate lifecycle: issuance, status
// transitions, and lookups. It has no knowledge of ownership records;
// coordination with the ownership ledger happens one layer up.
package plate

import "time"

// Status is the lifecycle state of a plate.
type Status string

const (
	// StatusAvailable: not assigned to any vehicle, can be reassigned.
	StatusAvailable Status = "AVAILABLE"
	// StatusInUse: currently active on a vehicle.
	StatusInUse Status = "IN_USE"
	// StatusTransferredOut: association with the previous vehicle ended
	// through an ownership transfer; the plate may be reactivated later.
	StatusTransferredOut Status = "TRANSFERRED_OUT"
	// StatusDamaged: physically damaged, pending replacement or retirement.
	StatusDamaged Status = "DAMAGED"
	// StatusRetired: permanently out of commission. Terminal.
	StatusRetired Status = "RETIRED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusInUse, StatusTransferredOut, StatusDamaged, StatusRetired:
		return true
	}
	return false
}

// Plate is a GORM model. A plate string maps to exactly one row for its
// entire life: reissuing a string reuses and rebinds the same row, so two
// rows can never carry the same string in conflicting active states.
type Plate struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	Value     string `gorm:"size:16;not null;uniqueIndex" json:"plateNumber"`
	OwnerID   string `gorm:"size:36;not null;index" json:"ownerId"`
	VehicleID string `gorm:"size:36;not null;index" json:"vehicleId"`
	Status    Status `gorm:"type:varchar(16);not null;index" json:"status"`

	IssuedAt  time.Time `gorm:"autoCreateTime" json:"issuedAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Plate) TableName() string { return "plates" }
