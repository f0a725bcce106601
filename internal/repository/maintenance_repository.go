package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

type MaintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

// Rules

func (r *MaintenanceRepository) CreateRule(ctx context.Context, rule *model.MaintenanceRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *MaintenanceRepository) GetRuleByID(ctx context.Context, id uuid.UUID) (*model.MaintenanceRule, error) {
	var rule model.MaintenanceRule
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rule).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *MaintenanceRepository) UpdateRule(ctx context.Context, rule *model.MaintenanceRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *MaintenanceRepository) DeleteRule(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.MaintenanceRule{}).Error
}

func (r *MaintenanceRepository) ListActiveRulesByVehicle(ctx context.Context, ref model.VehicleRef) ([]model.MaintenanceRule, error) {
	var rules []model.MaintenanceRule
	err := r.db.WithContext(ctx).
		Where("vehicle_type = ? AND vehicle_id = ? AND is_active = ?", ref.Type, ref.ID, true).
		Order("created_at DESC").
		Find(&rules).Error
	return rules, err
}

type RuleListFilter struct {
	VehicleType *model.VehicleType
	IsActive    *bool
	Page        int
	Limit       int
}

func (r *MaintenanceRepository) ListRules(ctx context.Context, filter RuleListFilter) ([]model.MaintenanceRule, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.MaintenanceRule{})

	if filter.VehicleType != nil {
		query = query.Where("vehicle_type = ?", *filter.VehicleType)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rules []model.MaintenanceRule
	err := query.Order("created_at DESC").
		Offset(offsetFor(filter.Page, filter.Limit)).
		Limit(limitOr(filter.Limit)).
		Find(&rules).Error
	if err != nil {
		return nil, 0, err
	}

	return rules, total, nil
}

// Records

func (r *MaintenanceRepository) CreateRecord(ctx context.Context, record *model.MaintenanceRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *MaintenanceRepository) GetRecordByID(ctx context.Context, id uuid.UUID) (*model.MaintenanceRecord, error) {
	var record model.MaintenanceRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *MaintenanceRepository) UpdateRecord(ctx context.Context, record *model.MaintenanceRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *MaintenanceRepository) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.MaintenanceRecord{}).Error
}

// LastCompletedRecord returns the most recent completed maintenance of
// the given type for a vehicle, or nil when there is none.
func (r *MaintenanceRepository) LastCompletedRecord(ctx context.Context, ref model.VehicleRef, maintenanceType model.MaintenanceType) (*model.MaintenanceRecord, error) {
	var record model.MaintenanceRecord
	err := r.db.WithContext(ctx).
		Where("vehicle_type = ? AND vehicle_id = ? AND maintenance_type = ? AND status = ?",
			ref.Type, ref.ID, maintenanceType, model.MaintenanceRecordCompleted).
		Order("date DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

type RecordListFilter struct {
	VehicleType *model.VehicleType
	VehicleID   *uuid.UUID
	Status      *model.MaintenanceRecordStatus
	Page        int
	Limit       int
}

func (r *MaintenanceRepository) ListRecords(ctx context.Context, filter RecordListFilter) ([]model.MaintenanceRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.MaintenanceRecord{})

	if filter.VehicleType != nil {
		query = query.Where("vehicle_type = ?", *filter.VehicleType)
	}
	if filter.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *filter.VehicleID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []model.MaintenanceRecord
	err := query.Order("date DESC").
		Offset(offsetFor(filter.Page, filter.Limit)).
		Limit(limitOr(filter.Limit)).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
