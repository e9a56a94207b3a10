package entities

import "time"

// Rental status values. Open rentals are the only alertable ones.
const (
	RentalStatusOpen      = "open"
	RentalStatusCompleted = "completed"
	RentalStatusCancelled = "cancelled"
)

// Rental is a customer rental agreement.
type Rental struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	VehicleID    uint      `gorm:"not null;index" json:"vehicle_id"`
	PlateNumber  string    `gorm:"size:20;not null" json:"plate_number"`
	CustomerName string    `gorm:"size:200;not null" json:"customer_name"`
	Status       string    `gorm:"size:20;not null;default:'open';index" json:"status"`
	StartedAt    time.Time `gorm:"not null" json:"started_at"`
	DueAt        time.Time `gorm:"not null;index" json:"due_at"`
	TotalAmount  float64   `gorm:"not null" json:"total_amount"`
	PaidAmount   float64   `gorm:"not null;default:0" json:"paid_amount"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Rental) TableName() string {
	return "rentals"
}

// AmountDue returns the outstanding balance, clamped at zero so an
// overpaid rental never surfaces a negative amount.
func (r *Rental) AmountDue() float64 {
	due := r.TotalAmount - r.PaidAmount
	if due < 0 {
		return 0
	}
	return due
}
