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

// VehicleService is the registry for trucks and trailers: identity,
// odometer and operational status. Odometer advances are monotonic;
// status writes are unguarded here, lifecycle guards live in
// RouteService.
type VehicleService struct {
	truckRepo   *repository.TruckRepository
	trailerRepo *repository.TrailerRepository
	routeRepo   *repository.RouteRepository
}

func NewVehicleService(
	truckRepo *repository.TruckRepository,
	trailerRepo *repository.TrailerRepository,
	routeRepo *repository.RouteRepository,
) *VehicleService {
	return &VehicleService{
		truckRepo:   truckRepo,
		trailerRepo: trailerRepo,
		routeRepo:   routeRepo,
	}
}

type CreateTruckInput struct {
	RegistrationNumber string
	Model              string
	Year               int
	PurchaseDate       time.Time
	CurrentOdometer    int64
	FuelCapacity       float64
}

func (s *VehicleService) CreateTruck(ctx context.Context, input CreateTruckInput) (*model.Truck, error) {
	registration := utils.NormalizeIdentifier(input.RegistrationNumber)
	if registration == "" || input.Model == "" {
		return nil, fmt.Errorf("%w: registration number and model are required", ErrInvalidInput)
	}
	if input.Year < 1900 || input.Year > time.Now().Year()+1 {
		return nil, fmt.Errorf("%w: invalid year", ErrInvalidInput)
	}
	if input.PurchaseDate.IsZero() {
		return nil, fmt.Errorf("%w: purchase date is required", ErrInvalidInput)
	}
	if input.CurrentOdometer < 0 || input.FuelCapacity <= 0 {
		return nil, fmt.Errorf("%w: odometer and fuel capacity must be valid", ErrInvalidInput)
	}

	if _, err := s.truckRepo.GetByRegistration(ctx, registration); err == nil {
		return nil, fmt.Errorf("%w: registration %s already in use", ErrDuplicateKey, registration)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	truck := &model.Truck{
		RegistrationNumber: registration,
		Model:              input.Model,
		Year:               input.Year,
		PurchaseDate:       input.PurchaseDate,
		CurrentOdometer:    input.CurrentOdometer,
		FuelCapacity:       input.FuelCapacity,
		Status:             model.VehicleStatusAvailable,
	}

	if err := s.truckRepo.Create(ctx, truck); err != nil {
		return nil, translateCreateError(err)
	}

	return truck, nil
}

func (s *VehicleService) GetTruck(ctx context.Context, truckID string) (*model.Truck, error) {
	id, err := uuid.Parse(truckID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid truck id", ErrInvalidInput)
	}

	truck, err := s.truckRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: truck", ErrNotFound)
		}
		return nil, err
	}
	return truck, nil
}

func (s *VehicleService) ListTrucks(ctx context.Context, filter repository.TruckListFilter) ([]model.Truck, int64, error) {
	return s.truckRepo.List(ctx, filter)
}

func (s *VehicleService) TruckStatistics(ctx context.Context) (*repository.TruckStatistics, error) {
	return s.truckRepo.Statistics(ctx)
}

type UpdateTruckInput struct {
	Model        *string
	Year         *int
	FuelCapacity *float64
}

func (s *VehicleService) UpdateTruck(ctx context.Context, truckID string, input UpdateTruckInput) (*model.Truck, error) {
	truck, err := s.GetTruck(ctx, truckID)
	if err != nil {
		return nil, err
	}

	if input.Model != nil {
		if *input.Model == "" {
			return nil, fmt.Errorf("%w: model cannot be empty", ErrInvalidInput)
		}
		truck.Model = *input.Model
	}
	if input.Year != nil {
		if *input.Year < 1900 || *input.Year > time.Now().Year()+1 {
			return nil, fmt.Errorf("%w: invalid year", ErrInvalidInput)
		}
		truck.Year = *input.Year
	}
	if input.FuelCapacity != nil {
		if *input.FuelCapacity <= 0 {
			return nil, fmt.Errorf("%w: fuel capacity must be positive", ErrInvalidInput)
		}
		truck.FuelCapacity = *input.FuelCapacity
	}

	if err := s.truckRepo.Update(ctx, truck); err != nil {
		return nil, err
	}
	return truck, nil
}

// DeleteTruck refuses while an InProgress route references the truck.
func (s *VehicleService) DeleteTruck(ctx context.Context, truckID string) error {
	truck, err := s.GetTruck(ctx, truckID)
	if err != nil {
		return err
	}

	inProgress := model.RouteStatusInProgress
	_, total, err := s.routeRepo.List(ctx, repository.RouteListFilter{
		Status:  &inProgress,
		TruckID: &truck.ID,
		Limit:   1,
	})
	if err != nil {
		return err
	}
	if total > 0 {
		return fmt.Errorf("%w: truck has a route in progress", ErrInvalidState)
	}

	return s.truckRepo.Delete(ctx, truck.ID)
}

// AdvanceOdometer sets a new reading for a truck or trailer, rejecting
// any regression.
func (s *VehicleService) AdvanceOdometer(ctx context.Context, ref model.VehicleRef, newReading int64) error {
	if newReading < 0 {
		return fmt.Errorf("%w: reading cannot be negative", ErrInvalidOdometer)
	}

	switch ref.Type {
	case model.VehicleTypeTruck:
		truck, err := s.truckRepo.GetByID(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: truck", ErrNotFound)
			}
			return err
		}
		if newReading < truck.CurrentOdometer {
			return fmt.Errorf("%w: new reading %d is below current %d", ErrInvalidOdometer, newReading, truck.CurrentOdometer)
		}
		truck.CurrentOdometer = newReading
		return s.truckRepo.Update(ctx, truck)
	case model.VehicleTypeTrailer:
		trailer, err := s.trailerRepo.GetByID(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: trailer", ErrNotFound)
			}
			return err
		}
		if newReading < trailer.CurrentOdometer {
			return fmt.Errorf("%w: new reading %d is below current %d", ErrInvalidOdometer, newReading, trailer.CurrentOdometer)
		}
		trailer.CurrentOdometer = newReading
		return s.trailerRepo.Update(ctx, trailer)
	default:
		return fmt.Errorf("%w: unknown vehicle type %q", ErrInvalidInput, ref.Type)
	}
}

// SetStatus overwrites a vehicle's operational status without any
// transition guard.
func (s *VehicleService) SetStatus(ctx context.Context, ref model.VehicleRef, status model.VehicleStatus) error {
	switch status {
	case model.VehicleStatusAvailable, model.VehicleStatusInRoute,
		model.VehicleStatusMaintenance, model.VehicleStatusOutOfService:
	default:
		return fmt.Errorf("%w: invalid status %q", ErrInvalidInput, status)
	}

	switch ref.Type {
	case model.VehicleTypeTruck:
		truck, err := s.truckRepo.GetByID(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: truck", ErrNotFound)
			}
			return err
		}
		truck.Status = status
		return s.truckRepo.Update(ctx, truck)
	case model.VehicleTypeTrailer:
		trailer, err := s.trailerRepo.GetByID(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: trailer", ErrNotFound)
			}
			return err
		}
		trailer.Status = status
		return s.trailerRepo.Update(ctx, trailer)
	default:
		return fmt.Errorf("%w: unknown vehicle type %q", ErrInvalidInput, ref.Type)
	}
}

type CreateTrailerInput struct {
	RegistrationNumber string
	Brand              string
	Year               int
	MaxCapacity        float64
	PurchaseDate       time.Time
	CurrentOdometer    int64
}

func (s *VehicleService) CreateTrailer(ctx context.Context, input CreateTrailerInput) (*model.Trailer, error) {
	registration := utils.NormalizeIdentifier(input.RegistrationNumber)
	if registration == "" || input.Brand == "" {
		return nil, fmt.Errorf("%w: registration number and brand are required", ErrInvalidInput)
	}
	if input.Year < 1900 || input.Year > time.Now().Year()+1 {
		return nil, fmt.Errorf("%w: invalid year", ErrInvalidInput)
	}
	if input.PurchaseDate.IsZero() {
		return nil, fmt.Errorf("%w: purchase date is required", ErrInvalidInput)
	}
	if input.CurrentOdometer < 0 || input.MaxCapacity <= 0 {
		return nil, fmt.Errorf("%w: odometer and max capacity must be valid", ErrInvalidInput)
	}

	if _, err := s.trailerRepo.GetByRegistration(ctx, registration); err == nil {
		return nil, fmt.Errorf("%w: registration %s already in use", ErrDuplicateKey, registration)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	trailer := &model.Trailer{
		RegistrationNumber: registration,
		Brand:              input.Brand,
		Year:               input.Year,
		MaxCapacity:        input.MaxCapacity,
		PurchaseDate:       input.PurchaseDate,
		CurrentOdometer:    input.CurrentOdometer,
		Status:             model.VehicleStatusAvailable,
	}

	if err := s.trailerRepo.Create(ctx, trailer); err != nil {
		return nil, translateCreateError(err)
	}

	return trailer, nil
}

func (s *VehicleService) GetTrailer(ctx context.Context, trailerID string) (*model.Trailer, error) {
	id, err := uuid.Parse(trailerID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid trailer id", ErrInvalidInput)
	}

	trailer, err := s.trailerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: trailer", ErrNotFound)
		}
		return nil, err
	}
	return trailer, nil
}

func (s *VehicleService) ListTrailers(ctx context.Context, filter repository.TrailerListFilter) ([]model.Trailer, int64, error) {
	return s.trailerRepo.List(ctx, filter)
}

type UpdateTrailerInput struct {
	Brand       *string
	Year        *int
	MaxCapacity *float64
}

func (s *VehicleService) UpdateTrailer(ctx context.Context, trailerID string, input UpdateTrailerInput) (*model.Trailer, error) {
	trailer, err := s.GetTrailer(ctx, trailerID)
	if err != nil {
		return nil, err
	}

	if input.Brand != nil {
		if *input.Brand == "" {
			return nil, fmt.Errorf("%w: brand cannot be empty", ErrInvalidInput)
		}
		trailer.Brand = *input.Brand
	}
	if input.Year != nil {
		if *input.Year < 1900 || *input.Year > time.Now().Year()+1 {
			return nil, fmt.Errorf("%w: invalid year", ErrInvalidInput)
		}
		trailer.Year = *input.Year
	}
	if input.MaxCapacity != nil {
		if *input.MaxCapacity <= 0 {
			return nil, fmt.Errorf("%w: max capacity must be positive", ErrInvalidInput)
		}
		trailer.MaxCapacity = *input.MaxCapacity
	}

	if err := s.trailerRepo.Update(ctx, trailer); err != nil {
		return nil, err
	}
	return trailer, nil
}

func (s *VehicleService) DeleteTrailer(ctx context.Context, trailerID string) error {
	trailer, err := s.GetTrailer(ctx, trailerID)
	if err != nil {
		return err
	}
	return s.trailerRepo.Delete(ctx, trailer.ID)
}

// AttachTrailer couples a trailer to a truck so route completion
// cascades the distance delta to it.
func (s *VehicleService) AttachTrailer(ctx context.Context, truckID, trailerID string) (*model.Truck, error) {
	truck, err := s.GetTruck(ctx, truckID)
	if err != nil {
		return nil, err
	}
	trailer, err := s.GetTrailer(ctx, trailerID)
	if err != nil {
		return nil, err
	}

	if truck.AttachedTrailerID != nil {
		return nil, fmt.Errorf("%w: truck already has a trailer attached", ErrInvalidState)
	}

	truck.AttachedTrailerID = &trailer.ID
	if err := s.truckRepo.Update(ctx, truck); err != nil {
		return nil, err
	}
	return truck, nil
}

func (s *VehicleService) DetachTrailer(ctx context.Context, truckID string) (*model.Truck, error) {
	truck, err := s.GetTruck(ctx, truckID)
	if err != nil {
		return nil, err
	}

	if truck.AttachedTrailerID == nil {
		return nil, fmt.Errorf("%w: truck has no trailer attached", ErrInvalidState)
	}

	truck.AttachedTrailerID = nil
	if err := s.truckRepo.Update(ctx, truck); err != nil {
		return nil, err
	}
	return truck, nil
}
