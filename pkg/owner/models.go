// Package owner holds registered parties able to hold vehicles, plates,
// and ownership records.
package owner

import (
	"strings"
	"time"
)

// Status is the account standing of an owner.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusDisabled Status = "DISABLED"
)

// Identity is the personal identity of an owner. It is embedded by value
// rather than inherited: an owner *has* an identity and capabilities on top
// of it (holding plates and ownership records).
type Identity struct {
	FirstName   string `gorm:"size:100;not null" json:"firstName"`
	LastName    string `gorm:"size:100;not null" json:"lastName"`
	Email       string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PhoneNumber string `gorm:"size:10;not null;uniqueIndex" json:"phoneNumber"`
	NationalID  string `gorm:"size:16;not null;uniqueIndex" json:"nationalId"`
}

// FullName returns the display name used in notifications.
func (i Identity) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

// Owner is a GORM model. Soft-deleted owners are excluded from normal
// lookups but their historical records remain queryable.
type Owner struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	Identity `gorm:"embedded"`

	Status  Status `gorm:"type:varchar(16);not null;default:'ACTIVE'" json:"status"`
	Deleted bool   `gorm:"not null;default:false" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Owner) TableName() string { return "owners" }
