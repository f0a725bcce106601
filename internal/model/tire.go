package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WearLifeDistance is the assumed total tread life of a tire in
// kilometers. Wear percentage is derived from usage against it.
const WearLifeDistance int64 = 50000

type TireStatus string

const (
	TireStatusGood            TireStatus = "Good"
	TireStatusWarning         TireStatus = "Warning"
	TireStatusNeedReplacement TireStatus = "NeedReplacement"
)

type Tire struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SerialNumber         string     `gorm:"type:varchar(32);uniqueIndex;not null" json:"serial_number"`
	Size                 string     `gorm:"type:varchar(32);not null" json:"size"`
	Brand                string     `gorm:"type:varchar(64);not null" json:"brand"`
	PurchaseDate         time.Time  `gorm:"not null" json:"purchase_date"`
	InstallationDate     *time.Time `json:"installation_date"`
	InstallationOdometer int64      `gorm:"not null;default:0" json:"installation_odometer"`
	CurrentOdometer      int64      `gorm:"not null;default:0" json:"current_odometer"`
	WearPercent          float64    `gorm:"not null;default:0" json:"wear_percent"`
	Status               TireStatus `gorm:"type:varchar(20);not null;default:Good" json:"status"`
	Vehicle              VehicleRef `gorm:"embedded" json:"vehicle"`
	Retired              bool       `gorm:"not null;default:false" json:"retired"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Tire) TableName() string {
	return "tires"
}

func (t *Tire) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *Tire) UsageDistance() int64 {
	return t.CurrentOdometer - t.InstallationOdometer
}

// ComputeWear derives the wear percentage and status tier from an
// installation baseline and a current odometer reading. Thresholds are
// inclusive lower bounds: >=80 NeedReplacement, >=60 Warning.
func ComputeWear(installationOdometer, currentOdometer int64) (float64, TireStatus) {
	usage := currentOdometer - installationOdometer
	pct := float64(usage) / float64(WearLifeDistance) * 100
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}

	switch {
	case pct >= 80:
		return pct, TireStatusNeedReplacement
	case pct >= 60:
		return pct, TireStatusWarning
	default:
		return pct, TireStatusGood
	}
}
