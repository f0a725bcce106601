package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

// MaintenanceService manages interval rules and maintenance history.
// Due evaluation itself is the pure MaintenanceRule.EvaluateDue; this
// service feeds it current vehicle state and the last completed record.
type MaintenanceService struct {
	maintenanceRepo *repository.MaintenanceRepository
	truckRepo       *repository.TruckRepository
	trailerRepo     *repository.TrailerRepository
	now             func() time.Time
}

func NewMaintenanceService(
	maintenanceRepo *repository.MaintenanceRepository,
	truckRepo *repository.TruckRepository,
	trailerRepo *repository.TrailerRepository,
) *MaintenanceService {
	return &MaintenanceService{
		maintenanceRepo: maintenanceRepo,
		truckRepo:       truckRepo,
		trailerRepo:     trailerRepo,
		now:             time.Now,
	}
}

type CreateRuleInput struct {
	MaintenanceType  model.MaintenanceType
	VehicleType      model.VehicleType
	VehicleID        string
	IntervalDistance int64
	IntervalMonths   int
	EstimatedCost    float64
	Description      string
}

func (s *MaintenanceService) CreateRule(ctx context.Context, input CreateRuleInput) (*model.MaintenanceRule, error) {
	if input.IntervalDistance < 1 {
		return nil, fmt.Errorf("%w: interval distance must be positive", ErrInvalidInput)
	}
	if input.IntervalMonths < 0 {
		return nil, fmt.Errorf("%w: interval months cannot be negative", ErrInvalidInput)
	}
	if input.EstimatedCost < 0 {
		return nil, fmt.Errorf("%w: estimated cost cannot be negative", ErrInvalidInput)
	}

	vehicleID, err := uuid.Parse(input.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid vehicle id", ErrInvalidInput)
	}
	ref := model.VehicleRef{Type: input.VehicleType, ID: vehicleID}
	if _, _, err := s.vehicleState(ctx, ref); err != nil {
		return nil, err
	}

	rule := &model.MaintenanceRule{
		MaintenanceType:  input.MaintenanceType,
		Vehicle:          ref,
		IntervalDistance: input.IntervalDistance,
		IntervalMonths:   input.IntervalMonths,
		EstimatedCost:    input.EstimatedCost,
		Description:      input.Description,
		IsActive:         true,
	}

	if err := s.maintenanceRepo.CreateRule(ctx, rule); err != nil {
		return nil, err
	}

	return rule, nil
}

func (s *MaintenanceService) GetRule(ctx context.Context, ruleID string) (*model.MaintenanceRule, error) {
	id, err := uuid.Parse(ruleID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid rule id", ErrInvalidInput)
	}

	rule, err := s.maintenanceRepo.GetRuleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: maintenance rule", ErrNotFound)
		}
		return nil, err
	}
	return rule, nil
}

func (s *MaintenanceService) ListRules(ctx context.Context, filter repository.RuleListFilter) ([]model.MaintenanceRule, int64, error) {
	return s.maintenanceRepo.ListRules(ctx, filter)
}

type UpdateRuleInput struct {
	IntervalDistance *int64
	IntervalMonths   *int
	EstimatedCost    *float64
	Description      *string
}

func (s *MaintenanceService) UpdateRule(ctx context.Context, ruleID string, input UpdateRuleInput) (*model.MaintenanceRule, error) {
	rule, err := s.GetRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	if input.IntervalDistance != nil {
		if *input.IntervalDistance < 1 {
			return nil, fmt.Errorf("%w: interval distance must be positive", ErrInvalidInput)
		}
		rule.IntervalDistance = *input.IntervalDistance
	}
	if input.IntervalMonths != nil {
		if *input.IntervalMonths < 0 {
			return nil, fmt.Errorf("%w: interval months cannot be negative", ErrInvalidInput)
		}
		rule.IntervalMonths = *input.IntervalMonths
	}
	if input.EstimatedCost != nil {
		if *input.EstimatedCost < 0 {
			return nil, fmt.Errorf("%w: estimated cost cannot be negative", ErrInvalidInput)
		}
		rule.EstimatedCost = *input.EstimatedCost
	}
	if input.Description != nil {
		rule.Description = *input.Description
	}

	if err := s.maintenanceRepo.UpdateRule(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *MaintenanceService) ToggleRule(ctx context.Context, ruleID string, isActive bool) (*model.MaintenanceRule, error) {
	rule, err := s.GetRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	rule.IsActive = isActive
	if err := s.maintenanceRepo.UpdateRule(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *MaintenanceService) DeleteRule(ctx context.Context, ruleID string) error {
	rule, err := s.GetRule(ctx, ruleID)
	if err != nil {
		return err
	}
	return s.maintenanceRepo.DeleteRule(ctx, rule.ID)
}

type CreateRecordInput struct {
	VehicleType           model.VehicleType
	VehicleID             string
	MaintenanceType       model.MaintenanceType
	Date                  time.Time
	OdometerAtMaintenance int64
	Cost                  float64
	PerformedBy           string
	Workshop              string
	Description           string
}

func (s *MaintenanceService) CreateRecord(ctx context.Context, input CreateRecordInput) (*model.MaintenanceRecord, error) {
	if input.PerformedBy == "" || input.Description == "" {
		return nil, fmt.Errorf("%w: performer and description are required", ErrInvalidInput)
	}
	if input.OdometerAtMaintenance < 0 {
		return nil, fmt.Errorf("%w: odometer cannot be negative", ErrInvalidOdometer)
	}
	if input.Cost < 0 {
		return nil, fmt.Errorf("%w: cost cannot be negative", ErrInvalidInput)
	}

	vehicleID, err := uuid.Parse(input.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid vehicle id", ErrInvalidInput)
	}
	ref := model.VehicleRef{Type: input.VehicleType, ID: vehicleID}
	if _, _, err := s.vehicleState(ctx, ref); err != nil {
		return nil, err
	}

	date := input.Date
	if date.IsZero() {
		date = s.now()
	}

	record := &model.MaintenanceRecord{
		Vehicle:               ref,
		MaintenanceType:       input.MaintenanceType,
		Date:                  date,
		OdometerAtMaintenance: input.OdometerAtMaintenance,
		Cost:                  input.Cost,
		PerformedBy:           input.PerformedBy,
		Workshop:              input.Workshop,
		Description:           input.Description,
		Status:                model.MaintenanceRecordScheduled,
	}

	if err := s.maintenanceRepo.CreateRecord(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

func (s *MaintenanceService) GetRecord(ctx context.Context, recordID string) (*model.MaintenanceRecord, error) {
	id, err := uuid.Parse(recordID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid record id", ErrInvalidInput)
	}

	record, err := s.maintenanceRepo.GetRecordByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: maintenance record", ErrNotFound)
		}
		return nil, err
	}
	return record, nil
}

func (s *MaintenanceService) ListRecords(ctx context.Context, filter repository.RecordListFilter) ([]model.MaintenanceRecord, int64, error) {
	return s.maintenanceRepo.ListRecords(ctx, filter)
}

type CompleteRecordInput struct {
	Cost  *float64
	Notes string
}

func (s *MaintenanceService) CompleteRecord(ctx context.Context, recordID string, input CompleteRecordInput) (*model.MaintenanceRecord, error) {
	record, err := s.GetRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}

	switch record.Status {
	case model.MaintenanceRecordScheduled, model.MaintenanceRecordInProgress:
	default:
		return nil, fmt.Errorf("%w: record is %s", ErrInvalidState, record.Status)
	}

	record.Status = model.MaintenanceRecordCompleted
	if input.Cost != nil {
		if *input.Cost < 0 {
			return nil, fmt.Errorf("%w: cost cannot be negative", ErrInvalidInput)
		}
		record.Cost = *input.Cost
	}
	if input.Notes != "" {
		record.Notes = input.Notes
	}

	if err := s.maintenanceRepo.UpdateRecord(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *MaintenanceService) CancelRecord(ctx context.Context, recordID, reason string) (*model.MaintenanceRecord, error) {
	record, err := s.GetRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}

	switch record.Status {
	case model.MaintenanceRecordScheduled, model.MaintenanceRecordInProgress:
	default:
		return nil, fmt.Errorf("%w: record is %s", ErrInvalidState, record.Status)
	}

	record.Status = model.MaintenanceRecordCancelled
	if reason != "" {
		record.Notes = "Cancelled: " + reason
	} else {
		record.Notes = "Cancelled"
	}

	if err := s.maintenanceRepo.UpdateRecord(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *MaintenanceService) DeleteRecord(ctx context.Context, recordID string) error {
	record, err := s.GetRecord(ctx, recordID)
	if err != nil {
		return err
	}
	return s.maintenanceRepo.DeleteRecord(ctx, record.ID)
}

// DueMaintenance pairs a rule with its evaluation outcome.
type DueMaintenance struct {
	Rule            model.MaintenanceRule    `json:"rule"`
	LastMaintenance *model.MaintenanceRecord `json:"last_maintenance"`
	Result          model.DueResult          `json:"result"`
}

type DueCheck struct {
	Vehicle         model.VehicleRef `json:"vehicle"`
	CurrentOdometer int64            `json:"current_odometer"`
	Due             []DueMaintenance `json:"due"`
	HasDue          bool             `json:"has_due"`
}

// CheckDue evaluates every active rule for a vehicle against its
// current odometer and the last completed maintenance of each type.
func (s *MaintenanceService) CheckDue(ctx context.Context, vehicleType model.VehicleType, vehicleID string) (*DueCheck, error) {
	id, err := uuid.Parse(vehicleID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid vehicle id", ErrInvalidInput)
	}
	ref := model.VehicleRef{Type: vehicleType, ID: id}

	currentOdometer, purchaseDate, err := s.vehicleState(ctx, ref)
	if err != nil {
		return nil, err
	}

	rules, err := s.maintenanceRepo.ListActiveRulesByVehicle(ctx, ref)
	if err != nil {
		return nil, err
	}

	check := &DueCheck{
		Vehicle:         ref,
		CurrentOdometer: currentOdometer,
		Due:             []DueMaintenance{},
	}

	now := s.now()
	for i := range rules {
		rule := rules[i]

		last, err := s.maintenanceRepo.LastCompletedRecord(ctx, ref, rule.MaintenanceType)
		if err != nil {
			return nil, err
		}

		lastOdometer := int64(0)
		lastDate := purchaseDate
		if last != nil {
			lastOdometer = last.OdometerAtMaintenance
			lastDate = last.Date
		}

		result := rule.EvaluateDue(currentOdometer, lastOdometer, lastDate, now)
		if result.Due {
			check.Due = append(check.Due, DueMaintenance{
				Rule:            rule,
				LastMaintenance: last,
				Result:          result,
			})
		}
	}

	check.HasDue = len(check.Due) > 0
	return check, nil
}

// vehicleState resolves a vehicle reference to its current odometer and
// purchase date.
func (s *MaintenanceService) vehicleState(ctx context.Context, ref model.VehicleRef) (int64, time.Time, error) {
	switch ref.Type {
	case model.VehicleTypeTruck:
		truck, err := s.truckRepo.GetByID(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, time.Time{}, fmt.Errorf("%w: truck", ErrNotFound)
			}
			return 0, time.Time{}, err
		}
		return truck.CurrentOdometer, truck.PurchaseDate, nil
	case model.VehicleTypeTrailer:
		trailer, err := s.trailerRepo.GetByID(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, time.Time{}, fmt.Errorf("%w: trailer", ErrNotFound)
			}
			return 0, time.Time{}, err
		}
		return trailer.CurrentOdometer, trailer.PurchaseDate, nil
	default:
		return 0, time.Time{}, fmt.Errorf("%w: unknown vehicle type %q", ErrInvalidInput, ref.Type)
	}
}
