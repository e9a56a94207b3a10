package entities

import "time"

// Vehicle status values.
const (
	VehicleStatusActive       = "active"
	VehicleStatusInService    = "in_service"
	VehicleStatusOutOfService = "out_of_service"
)

// Fault severity values reported by telematics or staff.
const (
	FaultSeverityMinor    = "minor"
	FaultSeverityCritical = "critical"
)

// Vehicle is a fleet unit. A non-empty FaultCode marks an open fault.
type Vehicle struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	PlateNumber     string     `gorm:"size:20;not null;uniqueIndex" json:"plate_number"`
	Model           string     `gorm:"size:100;not null" json:"model"`
	VehicleClass    string     `gorm:"size:50;not null;index" json:"vehicle_class"`
	Status          string     `gorm:"size:20;not null;default:'active';index" json:"status"`
	FaultCode       string     `gorm:"size:50;default:''" json:"fault_code"`
	FaultSeverity   string     `gorm:"size:20;default:''" json:"fault_severity"`
	FaultReportedAt *time.Time `json:"fault_reported_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Vehicle) TableName() string {
	return "vehicles"
}

// HasOpenFault reports whether the vehicle currently carries a fault.
func (v *Vehicle) HasOpenFault() bool {
	return v.FaultCode != ""
}
