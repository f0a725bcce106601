package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

type TruckRepository struct {
	db *gorm.DB
}

func NewTruckRepository(db *gorm.DB) *TruckRepository {
	return &TruckRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *TruckRepository) WithTx(tx *gorm.DB) *TruckRepository {
	return &TruckRepository{db: tx}
}

func (r *TruckRepository) Create(ctx context.Context, truck *model.Truck) error {
	return r.db.WithContext(ctx).Create(truck).Error
}

func (r *TruckRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Truck, error) {
	var truck model.Truck
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&truck).Error; err != nil {
		return nil, err
	}
	return &truck, nil
}

func (r *TruckRepository) GetByRegistration(ctx context.Context, registration string) (*model.Truck, error) {
	var truck model.Truck
	if err := r.db.WithContext(ctx).Where("registration_number = ?", registration).First(&truck).Error; err != nil {
		return nil, err
	}
	return &truck, nil
}

func (r *TruckRepository) Update(ctx context.Context, truck *model.Truck) error {
	return r.db.WithContext(ctx).Save(truck).Error
}

func (r *TruckRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Truck{}).Error
}

type TruckListFilter struct {
	Status *model.VehicleStatus
	Search string
	Page   int
	Limit  int
}

func (r *TruckRepository) List(ctx context.Context, filter TruckListFilter) ([]model.Truck, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Truck{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		// LOWER(...) LIKE keeps the match case-insensitive on both
		// postgres and the sqlite test driver
		pattern := "%" + filter.Search + "%"
		query = query.Where("LOWER(registration_number) LIKE LOWER(?) OR LOWER(model) LIKE LOWER(?)", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var trucks []model.Truck
	err := query.Order("created_at DESC").
		Offset(offsetFor(filter.Page, filter.Limit)).
		Limit(limitOr(filter.Limit)).
		Find(&trucks).Error
	if err != nil {
		return nil, 0, err
	}

	return trucks, total, nil
}

type TruckStatistics struct {
	Total           int64                         `json:"total"`
	ByStatus        map[model.VehicleStatus]int64 `json:"by_status"`
	AverageOdometer float64                       `json:"average_odometer"`
}

func (r *TruckRepository) Statistics(ctx context.Context) (*TruckStatistics, error) {
	stats := &TruckStatistics{ByStatus: make(map[model.VehicleStatus]int64)}

	if err := r.db.WithContext(ctx).Model(&model.Truck{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		Status model.VehicleStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&model.Truck{}).
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
		err = r.db.WithContext(ctx).Model(&model.Truck{}).
			Select("AVG(current_odometer)").
			Scan(&stats.AverageOdometer).Error
		if err != nil {
			return nil, err
		}
	}

	return stats, nil
}

func offsetFor(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limitOr(limit)
}

func limitOr(limit int) int {
	if limit <= 0 {
		return 10
	}
	return limit
}
