// Package ownership is the append-only ledger of vehicle ownership
// intervals. Records are never deleted; closing one and opening its
// successor is the only mutation.
package ownership

import "time"

// Record is one interval during which a specific owner held a specific
// vehicle. A nil EndDate marks the currently active record. Immutable once
// created except for setting EndDate when superseded.
type Record struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	VehicleID      string     `gorm:"size:36;not null;index" json:"vehicleId"`
	OwnerID        string     `gorm:"size:36;not null;index" json:"ownerId"`
	StartDate      time.Time  `gorm:"not null" json:"startDate"`
	EndDate        *time.Time `json:"endDate"`
	TransferAmount int64      `json:"transferAmount"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Record) TableName() string { return "ownership_records" }

// Active reports whether this record is the vehicle's current ownership.
func (r *Record) Active() bool { return r.EndDate == nil }
