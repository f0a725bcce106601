package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MaintenanceType string

const (
	MaintenanceOilChange         MaintenanceType = "OilChange"
	MaintenanceTireReplacement   MaintenanceType = "TireReplacement"
	MaintenanceTireRotation      MaintenanceType = "TireRotation"
	MaintenanceBrakeCheck        MaintenanceType = "BrakeCheck"
	MaintenanceBrakeReplacement  MaintenanceType = "BrakeReplacement"
	MaintenanceGeneralInspection MaintenanceType = "GeneralInspection"
	MaintenanceEngineRepair      MaintenanceType = "EngineRepair"
	MaintenanceOther             MaintenanceType = "Other"
)

type MaintenanceRule struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	MaintenanceType  MaintenanceType `gorm:"type:varchar(32);not null" json:"maintenance_type"`
	Vehicle          VehicleRef      `gorm:"embedded" json:"vehicle"`
	IntervalDistance int64           `gorm:"not null" json:"interval_distance"`
	IntervalMonths   int             `gorm:"not null;default:0" json:"interval_months"`
	EstimatedCost    float64         `gorm:"not null;default:0" json:"estimated_cost"`
	Description      string          `gorm:"type:text" json:"description"`
	IsActive         bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MaintenanceRule) TableName() string {
	return "maintenance_rules"
}

func (r *MaintenanceRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

const (
	DueReasonDistance = "distance interval reached"
	DueReasonTime     = "time interval reached"
)

// DueResult is the outcome of evaluating one rule against a vehicle.
type DueResult struct {
	Due             bool   `json:"due"`
	Reason          string `json:"reason,omitempty"`
	OverdueDistance int64  `json:"overdue_distance,omitempty"`
	OverdueMonths   int    `json:"overdue_months,omitempty"`
}

// EvaluateDue checks whether maintenance is due given the vehicle's
// current odometer and its last maintenance of this type. The distance
// check takes priority over the time check. Elapsed months use a fixed
// 30-day approximation, intentionally not calendar-accurate.
func (r *MaintenanceRule) EvaluateDue(currentOdometer, lastMaintenanceOdometer int64, lastMaintenanceOrPurchase time.Time, now time.Time) DueResult {
	sinceLast := currentOdometer - lastMaintenanceOdometer
	if sinceLast >= r.IntervalDistance {
		return DueResult{
			Due:             true,
			Reason:          DueReasonDistance,
			OverdueDistance: sinceLast - r.IntervalDistance,
		}
	}

	if r.IntervalMonths > 0 {
		elapsed := int(now.Sub(lastMaintenanceOrPurchase).Hours() / (24 * 30))
		if elapsed >= r.IntervalMonths {
			return DueResult{
				Due:           true,
				Reason:        DueReasonTime,
				OverdueMonths: elapsed - r.IntervalMonths,
			}
		}
	}

	return DueResult{Due: false}
}

type MaintenanceRecordStatus string

const (
	MaintenanceRecordScheduled  MaintenanceRecordStatus = "Scheduled"
	MaintenanceRecordInProgress MaintenanceRecordStatus = "InProgress"
	MaintenanceRecordCompleted  MaintenanceRecordStatus = "Completed"
	MaintenanceRecordCancelled  MaintenanceRecordStatus = "Cancelled"
)

type MaintenanceRecord struct {
	ID                    uuid.UUID               `gorm:"type:uuid;primaryKey" json:"id"`
	Vehicle               VehicleRef              `gorm:"embedded" json:"vehicle"`
	MaintenanceType       MaintenanceType         `gorm:"type:varchar(32);not null" json:"maintenance_type"`
	Date                  time.Time               `gorm:"not null" json:"date"`
	OdometerAtMaintenance int64                   `gorm:"not null" json:"odometer_at_maintenance"`
	Cost                  float64                 `gorm:"not null;default:0" json:"cost"`
	PerformedBy           string                  `gorm:"type:varchar(128);not null" json:"performed_by"`
	Workshop              string                  `gorm:"type:varchar(128)" json:"workshop"`
	Description           string                  `gorm:"type:text;not null" json:"description"`
	Notes                 string                  `gorm:"type:text" json:"notes"`
	Status                MaintenanceRecordStatus `gorm:"type:varchar(20);not null;default:Scheduled" json:"status"`
	CreatedAt             time.Time               `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time               `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MaintenanceRecord) TableName() string {
	return "maintenance_records"
}

func (m *MaintenanceRecord) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
