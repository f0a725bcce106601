package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RouteStatus string

const (
	RouteStatusPlanned    RouteStatus = "Planned"
	RouteStatusInProgress RouteStatus = "InProgress"
	RouteStatusCompleted  RouteStatus = "Completed"
	RouteStatusCancelled  RouteStatus = "Cancelled"
)

// routeTransitions defines the allowed status flow. Completed and
// Cancelled are terminal.
var routeTransitions = map[RouteStatus][]RouteStatus{
	RouteStatusPlanned:    {RouteStatusInProgress, RouteStatusCancelled},
	RouteStatusInProgress: {RouteStatusCompleted, RouteStatusCancelled},
	RouteStatusCompleted:  {},
	RouteStatusCancelled:  {},
}

func CanTransitionRoute(from, to RouteStatus) bool {
	allowed, ok := routeTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

func (s RouteStatus) IsTerminal() bool {
	return s == RouteStatusCompleted || s == RouteStatusCancelled
}

type Route struct {
	ID                uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	RouteNumber       string      `gorm:"type:varchar(32);uniqueIndex;not null" json:"route_number"`
	DriverID          uuid.UUID   `gorm:"type:uuid;not null;index" json:"driver_id"`
	TruckID           uuid.UUID   `gorm:"type:uuid;not null;index" json:"truck_id"`
	Description       string      `gorm:"type:text;not null" json:"description"`
	DepartureLocation string      `gorm:"type:varchar(128);not null" json:"departure_location"`
	ArrivalLocation   string      `gorm:"type:varchar(128);not null" json:"arrival_location"`
	PlannedDistance   int64       `gorm:"not null" json:"planned_distance"`
	DepartureOdometer *int64      `json:"departure_odometer"`
	ArrivalOdometer   *int64      `json:"arrival_odometer"`
	FuelVolume        float64     `gorm:"not null;default:0" json:"fuel_volume"`
	FuelCost          float64     `gorm:"not null;default:0" json:"fuel_cost"`
	VehicleRemarks    string      `gorm:"type:text" json:"vehicle_remarks"`
	Status            RouteStatus `gorm:"type:varchar(20);not null;default:Planned;index" json:"status"`
	CreatedAt         time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Route) TableName() string {
	return "routes"
}

func (r *Route) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ActualDistance is defined only once both odometer readings are set.
func (r *Route) ActualDistance() (int64, bool) {
	if r.DepartureOdometer == nil || r.ArrivalOdometer == nil {
		return 0, false
	}
	return *r.ArrivalOdometer - *r.DepartureOdometer, true
}

// FuelConsumptionRate is liters per 100 km, recomputed from the stored
// fuel volume and odometer pair, never cached.
func (r *Route) FuelConsumptionRate() (float64, bool) {
	dist, ok := r.ActualDistance()
	if !ok || dist <= 0 || r.FuelVolume <= 0 {
		return 0, false
	}
	return r.FuelVolume / float64(dist) * 100, true
}
