package entities

import "time"

// FuelLevel is the latest reported tank state for a vehicle.
type FuelLevel struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	VehicleID      uint      `gorm:"not null;uniqueIndex" json:"vehicle_id"`
	PlateNumber    string    `gorm:"size:20;not null" json:"plate_number"`
	CapacityLiters float64   `gorm:"not null" json:"capacity_liters"`
	CurrentLiters  float64   `gorm:"not null" json:"current_liters"`
	RecordedAt     time.Time `gorm:"not null;index" json:"recorded_at"`
}

// TableName returns the table name for GORM.
func (FuelLevel) TableName() string {
	return "fuel_levels"
}

// Percent returns the remaining fuel as a percentage of capacity.
// A zero or negative capacity yields 0 so a bad record cannot divide by zero.
func (f *FuelLevel) Percent() float64 {
	if f.CapacityLiters <= 0 {
		return 0
	}
	return f.CurrentLiters / f.CapacityLiters * 100
}
