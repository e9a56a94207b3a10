package entities

import "time"

// Price override status values. Pending requests await manager approval.
const (
	OverrideStatusPending  = "pending"
	OverrideStatusApproved = "approved"
	OverrideStatusRejected = "rejected"
)

// PriceOverride is a staff request to deviate from the published rate,
// e.g. a negotiated discount that exceeds the clerk's own authority.
type PriceOverride struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	VehicleClass string    `gorm:"size:50;not null" json:"vehicle_class"`
	RequestedBy  string    `gorm:"size:200;not null" json:"requested_by"`
	CurrentRate  float64   `gorm:"not null" json:"current_rate"`
	ProposedRate float64   `gorm:"not null" json:"proposed_rate"`
	Reason       string    `gorm:"size:1000;default:''" json:"reason"`
	Status       string    `gorm:"size:20;not null;default:'pending';index" json:"status"`
	RequestedAt  time.Time `gorm:"not null;index" json:"requested_at"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for GORM.
func (PriceOverride) TableName() string {
	return "price_overrides"
}
