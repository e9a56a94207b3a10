package entities

import "time"

// PriceEntry is the published rate card row for a vehicle class.
type PriceEntry struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	VehicleClass      string    `gorm:"size:50;not null;uniqueIndex" json:"vehicle_class"`
	DailyRate         float64   `gorm:"not null" json:"daily_rate"`
	WeeklyRate        float64   `gorm:"not null" json:"weekly_rate"`
	TransportFeePerKm float64   `gorm:"not null;default:0" json:"transport_fee_per_km"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for GORM.
func (PriceEntry) TableName() string {
	return "price_entries"
}
