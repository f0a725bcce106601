package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
	"fleet-service/internal/utils"
)

type DriverService struct {
	driverRepo *repository.DriverRepository
	routeRepo  *repository.RouteRepository
}

func NewDriverService(driverRepo *repository.DriverRepository, routeRepo *repository.RouteRepository) *DriverService {
	return &DriverService{driverRepo: driverRepo, routeRepo: routeRepo}
}

type CreateDriverInput struct {
	Name          string
	LicenseNumber string
	Phone         string
}

func (s *DriverService) Create(ctx context.Context, input CreateDriverInput) (*model.Driver, error) {
	license := utils.NormalizeIdentifier(input.LicenseNumber)
	if input.Name == "" || license == "" {
		return nil, fmt.Errorf("%w: name and license number are required", ErrInvalidInput)
	}

	if _, err := s.driverRepo.GetByLicense(ctx, license); err == nil {
		return nil, fmt.Errorf("%w: license %s already registered", ErrDuplicateKey, license)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	driver := &model.Driver{
		Name:          input.Name,
		LicenseNumber: license,
		Phone:         input.Phone,
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, translateCreateError(err)
	}

	return driver, nil
}

func (s *DriverService) GetByID(ctx context.Context, driverID string) (*model.Driver, error) {
	id, err := uuid.Parse(driverID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid driver id", ErrInvalidInput)
	}

	driver, err := s.driverRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: driver", ErrNotFound)
		}
		return nil, err
	}
	return driver, nil
}

func (s *DriverService) List(ctx context.Context) ([]model.Driver, error) {
	return s.driverRepo.List(ctx)
}

type UpdateDriverInput struct {
	Name  *string
	Phone *string
}

func (s *DriverService) Update(ctx context.Context, driverID string, input UpdateDriverInput) (*model.Driver, error) {
	driver, err := s.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		driver.Name = *input.Name
	}
	if input.Phone != nil {
		driver.Phone = *input.Phone
	}

	if err := s.driverRepo.Update(ctx, driver); err != nil {
		return nil, err
	}
	return driver, nil
}

// Delete refuses while the driver still has a route underway.
func (s *DriverService) Delete(ctx context.Context, driverID string) error {
	driver, err := s.GetByID(ctx, driverID)
	if err != nil {
		return err
	}

	inProgress := model.RouteStatusInProgress
	_, total, err := s.routeRepo.List(ctx, repository.RouteListFilter{
		Status:   &inProgress,
		DriverID: &driver.ID,
		Limit:    1,
	})
	if err != nil {
		return err
	}
	if total > 0 {
		return fmt.Errorf("%w: driver has a route in progress", ErrInvalidState)
	}

	return s.driverRepo.Delete(ctx, driver.ID)
}

// Routes lists the routes assigned to a driver, newest first.
func (s *DriverService) Routes(ctx context.Context, driverID string, filter repository.RouteListFilter) ([]model.Route, int64, error) {
	driver, err := s.GetByID(ctx, driverID)
	if err != nil {
		return nil, 0, err
	}

	filter.DriverID = &driver.ID
	return s.routeRepo.List(ctx, filter)
}
