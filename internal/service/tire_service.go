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
	"fleet-service/internal/utils"
)

// TireService tracks tire wear. Wear and status are derived from the
// odometer pair through model.ComputeWear and never edited directly.
type TireService struct {
	tireRepo    *repository.TireRepository
	truckRepo   *repository.TruckRepository
	trailerRepo *repository.TrailerRepository
}

func NewTireService(
	tireRepo *repository.TireRepository,
	truckRepo *repository.TruckRepository,
	trailerRepo *repository.TrailerRepository,
) *TireService {
	return &TireService{
		tireRepo:    tireRepo,
		truckRepo:   truckRepo,
		trailerRepo: trailerRepo,
	}
}

type CreateTireInput struct {
	SerialNumber         string
	Size                 string
	Brand                string
	PurchaseDate         time.Time
	InstallationDate     *time.Time
	InstallationOdometer int64
	VehicleType          model.VehicleType
	VehicleID            string
}

func (s *TireService) Create(ctx context.Context, input CreateTireInput) (*model.Tire, error) {
	serial := utils.NormalizeIdentifier(input.SerialNumber)
	if serial == "" || input.Size == "" || input.Brand == "" {
		return nil, fmt.Errorf("%w: serial number, size and brand are required", ErrInvalidInput)
	}
	if input.PurchaseDate.IsZero() {
		return nil, fmt.Errorf("%w: purchase date is required", ErrInvalidInput)
	}
	if input.InstallationOdometer < 0 {
		return nil, fmt.Errorf("%w: installation odometer cannot be negative", ErrInvalidOdometer)
	}

	vehicleID, err := uuid.Parse(input.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid vehicle id", ErrInvalidInput)
	}
	ref := model.VehicleRef{Type: input.VehicleType, ID: vehicleID}
	if err := s.requireVehicle(ctx, ref); err != nil {
		return nil, err
	}

	if _, err := s.tireRepo.GetBySerial(ctx, serial); err == nil {
		return nil, fmt.Errorf("%w: serial %s already in use", ErrDuplicateKey, serial)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tire := &model.Tire{
		SerialNumber:         serial,
		Size:                 input.Size,
		Brand:                input.Brand,
		PurchaseDate:         input.PurchaseDate,
		InstallationDate:     input.InstallationDate,
		InstallationOdometer: input.InstallationOdometer,
		CurrentOdometer:      input.InstallationOdometer,
		Status:               model.TireStatusGood,
		Vehicle:              ref,
	}

	if err := s.tireRepo.Create(ctx, tire); err != nil {
		return nil, translateCreateError(err)
	}

	return tire, nil
}

func (s *TireService) GetByID(ctx context.Context, tireID string) (*model.Tire, error) {
	id, err := uuid.Parse(tireID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid tire id", ErrInvalidInput)
	}

	tire, err := s.tireRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: tire", ErrNotFound)
		}
		return nil, err
	}
	return tire, nil
}

func (s *TireService) List(ctx context.Context, filter repository.TireListFilter) ([]model.Tire, int64, error) {
	return s.tireRepo.List(ctx, filter)
}

func (s *TireService) Statistics(ctx context.Context) (*repository.TireStatistics, error) {
	return s.tireRepo.Statistics(ctx)
}

// ListByVehicle returns the tires mounted on a vehicle; an empty slice
// when there are none.
func (s *TireService) ListByVehicle(ctx context.Context, vehicleType model.VehicleType, vehicleID string) ([]model.Tire, error) {
	id, err := uuid.Parse(vehicleID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid vehicle id", ErrInvalidInput)
	}
	if vehicleType != model.VehicleTypeTruck && vehicleType != model.VehicleTypeTrailer {
		return nil, fmt.Errorf("%w: unknown vehicle type %q", ErrInvalidInput, vehicleType)
	}
	return s.tireRepo.ListByVehicle(ctx, model.VehicleRef{Type: vehicleType, ID: id})
}

// AdvanceWear moves a tire to a new odometer reading and recomputes its
// wear percentage and status tier.
func (s *TireService) AdvanceWear(ctx context.Context, tireID string, newOdometer int64) (*model.Tire, error) {
	tire, err := s.GetByID(ctx, tireID)
	if err != nil {
		return nil, err
	}

	if newOdometer < tire.CurrentOdometer {
		return nil, fmt.Errorf("%w: new reading %d is below current %d", ErrInvalidOdometer, newOdometer, tire.CurrentOdometer)
	}

	tire.CurrentOdometer = newOdometer
	tire.WearPercent, tire.Status = model.ComputeWear(tire.InstallationOdometer, tire.CurrentOdometer)

	if err := s.tireRepo.Update(ctx, tire); err != nil {
		return nil, err
	}
	return tire, nil
}

type UpdateTireInput struct {
	Size  *string
	Brand *string
}

func (s *TireService) Update(ctx context.Context, tireID string, input UpdateTireInput) (*model.Tire, error) {
	tire, err := s.GetByID(ctx, tireID)
	if err != nil {
		return nil, err
	}

	if input.Size != nil {
		if *input.Size == "" {
			return nil, fmt.Errorf("%w: size cannot be empty", ErrInvalidInput)
		}
		tire.Size = *input.Size
	}
	if input.Brand != nil {
		if *input.Brand == "" {
			return nil, fmt.Errorf("%w: brand cannot be empty", ErrInvalidInput)
		}
		tire.Brand = *input.Brand
	}

	if err := s.tireRepo.Update(ctx, tire); err != nil {
		return nil, err
	}
	return tire, nil
}

// Retire logically removes a tire from service; the record is kept for
// history.
func (s *TireService) Retire(ctx context.Context, tireID string) (*model.Tire, error) {
	tire, err := s.GetByID(ctx, tireID)
	if err != nil {
		return nil, err
	}

	if tire.Retired {
		return nil, fmt.Errorf("%w: tire already retired", ErrInvalidState)
	}

	tire.Retired = true
	if err := s.tireRepo.Update(ctx, tire); err != nil {
		return nil, err
	}
	return tire, nil
}

func (s *TireService) requireVehicle(ctx context.Context, ref model.VehicleRef) error {
	switch ref.Type {
	case model.VehicleTypeTruck:
		if _, err := s.truckRepo.GetByID(ctx, ref.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: truck", ErrNotFound)
			}
			return err
		}
	case model.VehicleTypeTrailer:
		if _, err := s.trailerRepo.GetByID(ctx, ref.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: trailer", ErrNotFound)
			}
			return err
		}
	default:
		return fmt.Errorf("%w: unknown vehicle type %q", ErrInvalidInput, ref.Type)
	}
	return nil
}
