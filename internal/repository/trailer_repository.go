package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

type TrailerRepository struct {
	db *gorm.DB
}

func NewTrailerRepository(db *gorm.DB) *TrailerRepository {
	return &TrailerRepository{db: db}
}

func (r *TrailerRepository) WithTx(tx *gorm.DB) *TrailerRepository {
	return &TrailerRepository{db: tx}
}

func (r *TrailerRepository) Create(ctx context.Context, trailer *model.Trailer) error {
	return r.db.WithContext(ctx).Create(trailer).Error
}

func (r *TrailerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Trailer, error) {
	var trailer model.Trailer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&trailer).Error; err != nil {
		return nil, err
	}
	return &trailer, nil
}

func (r *TrailerRepository) GetByRegistration(ctx context.Context, registration string) (*model.Trailer, error) {
	var trailer model.Trailer
	if err := r.db.WithContext(ctx).Where("registration_number = ?", registration).First(&trailer).Error; err != nil {
		return nil, err
	}
	return &trailer, nil
}

func (r *TrailerRepository) Update(ctx context.Context, trailer *model.Trailer) error {
	return r.db.WithContext(ctx).Save(trailer).Error
}

func (r *TrailerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Trailer{}).Error
}

type TrailerListFilter struct {
	Status *model.VehicleStatus
	Search string
	Page   int
	Limit  int
}

func (r *TrailerRepository) List(ctx context.Context, filter TrailerListFilter) ([]model.Trailer, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Trailer{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("LOWER(registration_number) LIKE LOWER(?) OR LOWER(brand) LIKE LOWER(?)", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var trailers []model.Trailer
	err := query.Order("created_at DESC").
		Offset(offsetFor(filter.Page, filter.Limit)).
		Limit(limitOr(filter.Limit)).
		Find(&trailers).Error
	if err != nil {
		return nil, 0, err
	}

	return trailers, total, nil
}
