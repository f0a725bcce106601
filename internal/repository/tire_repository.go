package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

type TireRepository struct {
	db *gorm.DB
}

func NewTireRepository(db *gorm.DB) *TireRepository {
	return &TireRepository{db: db}
}

func (r *TireRepository) WithTx(tx *gorm.DB) *TireRepository {
	return &TireRepository{db: tx}
}

func (r *TireRepository) Create(ctx context.Context, tire *model.Tire) error {
	return r.db.WithContext(ctx).Create(tire).Error
}

func (r *TireRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Tire, error) {
	var tire model.Tire
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tire).Error; err != nil {
		return nil, err
	}
	return &tire, nil
}

func (r *TireRepository) GetBySerial(ctx context.Context, serial string) (*model.Tire, error) {
	var tire model.Tire
	if err := r.db.WithContext(ctx).Where("serial_number = ?", serial).First(&tire).Error; err != nil {
		return nil, err
	}
	return &tire, nil
}

func (r *TireRepository) Update(ctx context.Context, tire *model.Tire) error {
	return r.db.WithContext(ctx).Save(tire).Error
}

// ListByVehicle returns the tires currently mounted on a vehicle,
// excluding retired ones.
func (r *TireRepository) ListByVehicle(ctx context.Context, ref model.VehicleRef) ([]model.Tire, error) {
	tires := []model.Tire{}
	err := r.db.WithContext(ctx).
		Where("vehicle_type = ? AND vehicle_id = ? AND retired = ?", ref.Type, ref.ID, false).
		Order("created_at ASC").
		Find(&tires).Error
	return tires, err
}

type TireListFilter struct {
	Status  *model.TireStatus
	Search  string
	Retired *bool
	Page    int
	Limit   int
}

func (r *TireRepository) List(ctx context.Context, filter TireListFilter) ([]model.Tire, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Tire{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Retired != nil {
		query = query.Where("retired = ?", *filter.Retired)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("LOWER(serial_number) LIKE LOWER(?) OR LOWER(brand) LIKE LOWER(?)", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tires []model.Tire
	err := query.Order("created_at DESC").
		Offset(offsetFor(filter.Page, filter.Limit)).
		Limit(limitOr(filter.Limit)).
		Find(&tires).Error
	if err != nil {
		return nil, 0, err
	}

	return tires, total, nil
}

type TireStatistics struct {
	Total       int64                      `json:"total"`
	ByStatus    map[model.TireStatus]int64 `json:"by_status"`
	AverageWear float64                    `json:"average_wear"`
}

func (r *TireRepository) Statistics(ctx context.Context) (*TireStatistics, error) {
	stats := &TireStatistics{ByStatus: make(map[model.TireStatus]int64)}

	base := r.db.WithContext(ctx).Model(&model.Tire{}).Where("retired = ?", false)

	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		Status model.TireStatus
		Count  int64
	}
	err := base.Session(&gorm.Session{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
	}

	if stats.Total > 0 {
		err = base.Session(&gorm.Session{}).
			Select("AVG(wear_percent)").
			Scan(&stats.AverageWear).Error
		if err != nil {
			return nil, err
		}
	}

	return stats, nil
}
