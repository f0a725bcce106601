package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VehicleType string

const (
	VehicleTypeTruck   VehicleType = "Truck"
	VehicleTypeTrailer VehicleType = "Trailer"
)

type VehicleStatus string

const (
	VehicleStatusAvailable    VehicleStatus = "Available"
	VehicleStatusInRoute      VehicleStatus = "InRoute"
	VehicleStatusMaintenance  VehicleStatus = "Maintenance"
	VehicleStatusOutOfService VehicleStatus = "OutOfService"
)

// VehicleRef identifies the owning vehicle of a tire or maintenance
// rule; the type tag discriminates between trucks and trailers.
type VehicleRef struct {
	Type VehicleType `gorm:"column:vehicle_type;type:varchar(10);not null" json:"vehicle_type"`
	ID   uuid.UUID   `gorm:"column:vehicle_id;type:uuid;not null" json:"vehicle_id"`
}

type Truck struct {
	ID                 uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	RegistrationNumber string        `gorm:"type:varchar(32);uniqueIndex;not null" json:"registration_number"`
	Model              string        `gorm:"type:varchar(64);not null" json:"model"`
	Year               int           `gorm:"not null" json:"year"`
	PurchaseDate       time.Time     `gorm:"not null" json:"purchase_date"`
	CurrentOdometer    int64         `gorm:"not null;default:0" json:"current_odometer"`
	FuelCapacity       float64       `gorm:"not null" json:"fuel_capacity"`
	Status             VehicleStatus `gorm:"type:varchar(20);not null;default:Available" json:"status"`
	AttachedTrailerID  *uuid.UUID    `gorm:"type:uuid" json:"attached_trailer_id"`
	CreatedAt          time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Truck) TableName() string {
	return "trucks"
}

func (t *Truck) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type Trailer struct {
	ID                 uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	RegistrationNumber string        `gorm:"type:varchar(32);uniqueIndex;not null" json:"registration_number"`
	Brand              string        `gorm:"type:varchar(64);not null" json:"brand"`
	Year               int           `gorm:"not null" json:"year"`
	MaxCapacity        float64       `gorm:"not null" json:"max_capacity"`
	PurchaseDate       time.Time     `gorm:"not null" json:"purchase_date"`
	CurrentOdometer    int64         `gorm:"not null;default:0" json:"current_odometer"`
	Status             VehicleStatus `gorm:"type:varchar(20);not null;default:Available" json:"status"`
	CreatedAt          time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Trailer) TableName() string {
	return "trailers"
}

func (t *Trailer) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
