// Package audit keeps a trail of registry mutations (transfers,
// registrations, plate status changes) with periodic retention cleanup.
// Writes are best-effort at call sites; the trail never blocks the
// operation it describes.
package audit

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Event types recorded by the registry.
const (
	EventOwnershipTransferred = "ownership.transferred"
	EventVehicleRegistered    = "vehicle.registered"
	EventVehicleDeleted       = "vehicle.deleted"
	EventPlateStatusChanged   = "plate.status.changed"
)

// JSONMap stores an arbitrary key/value payload as a JSON column.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONMap column type %T", value)
	}
	return json.Unmarshal(data, m)
}

// Event is one audit trail entry.
type Event struct {
	ID        string  `gorm:"primaryKey;size:36" json:"id"`
	EventType string  `gorm:"size:64;not null;index" json:"eventType"`
	Actor     string  `gorm:"size:255" json:"actor"`
	VehicleID string  `gorm:"size:36;index" json:"vehicleId"`
	Detail    JSONMap `gorm:"type:text" json:"detail"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (Event) TableName() string { return "audit_events" }
