package entities

import "time"

// Maintenance status values. Only scheduled records are alertable.
const (
	MaintenanceStatusScheduled = "scheduled"
	MaintenanceStatusCompleted = "completed"
	MaintenanceStatusCancelled = "cancelled"
)

// MaintenanceRecord is a planned service appointment for a vehicle.
type MaintenanceRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	VehicleID   uint      `gorm:"not null;index" json:"vehicle_id"`
	PlateNumber string    `gorm:"size:20;not null" json:"plate_number"`
	ServiceType string    `gorm:"size:100;not null" json:"service_type"`
	Status      string    `gorm:"size:20;not null;default:'scheduled';index" json:"status"`
	ScheduledAt time.Time `gorm:"not null;index" json:"scheduled_at"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for GORM.
func (MaintenanceRecord) TableName() string {
	return "maintenance_records"
}
