package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

type RouteRepository struct {
	db *gorm.DB
}

func NewRouteRepository(db *gorm.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

func (r *RouteRepository) WithTx(tx *gorm.DB) *RouteRepository {
	return &RouteRepository{db: tx}
}

func (r *RouteRepository) Create(ctx context.Context, route *model.Route) error {
	return r.db.WithContext(ctx).Create(route).Error
}

func (r *RouteRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Route, error) {
	var route model.Route
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&route).Error; err != nil {
		return nil, err
	}
	return &route, nil
}

func (r *RouteRepository) GetByNumber(ctx context.Context, routeNumber string) (*model.Route, error) {
	var route model.Route
	if err := r.db.WithContext(ctx).Where("route_number = ?", routeNumber).First(&route).Error; err != nil {
		return nil, err
	}
	return &route, nil
}

func (r *RouteRepository) Update(ctx context.Context, route *model.Route) error {
	return r.db.WithContext(ctx).Save(route).Error
}

func (r *RouteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Route{}).Error
}

// TransitionStatus flips the route status only if the current status
// still matches. Racing lifecycle calls serialize on this compare-and-set:
// the loser sees zero affected rows.
func (r *RouteRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.RouteStatus) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Route{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

type RouteListFilter struct {
	Status   *model.RouteStatus
	DriverID *uuid.UUID
	TruckID  *uuid.UUID
	Page     int
	Limit    int
}

func (r *RouteRepository) List(ctx context.Context, filter RouteListFilter) ([]model.Route, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Route{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DriverID != nil {
		query = query.Where("driver_id = ?", *filter.DriverID)
	}
	if filter.TruckID != nil {
		query = query.Where("truck_id = ?", *filter.TruckID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var routes []model.Route
	err := query.Order("created_at DESC").
		Offset(offsetFor(filter.Page, filter.Limit)).
		Limit(limitOr(filter.Limit)).
		Find(&routes).Error
	if err != nil {
		return nil, 0, err
	}

	return routes, total, nil
}
