// Package vehicle holds registered vehicles and their core metadata.
package vehicle

import "time"

// Vehicle is a GORM model. The chassis number is globally unique and
// immutable once registered. Price is stored in minor currency units.
type Vehicle struct {
	ID                  string `gorm:"primaryKey;size:36" json:"id"`
	ChassisNumber       string `gorm:"size:64;not null;uniqueIndex" json:"chassisNumber"`
	ModelName           string `gorm:"size:100;not null" json:"modelName"`
	ManufacturerCompany string `gorm:"size:100" json:"manufacturerCompany"`
	ManufacturedYear    int    `gorm:"not null" json:"manufacturedYear"`
	Price               int64  `gorm:"not null" json:"price"`

	Deleted bool `gorm:"not null;default:false" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Vehicle) TableName() string { return "vehicles" }

// Summary is the compact vehicle reference embedded in history views.
type Summary struct {
	ID            string `json:"id"`
	ChassisNumber string `json:"chassisNumber"`
	ModelName     string `json:"modelName"`
}

// Summarize returns the compact reference for v.
func (v *Vehicle) Summarize() Summary {
	return Summary{ID: v.ID, ChassisNumber: v.ChassisNumber, ModelName: v.ModelName}
}
