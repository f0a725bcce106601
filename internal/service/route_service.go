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

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrInvalidState       = errors.New("invalid state")
	ErrInvalidOdometer    = errors.New("invalid odometer")
	ErrMissingDeparture   = errors.New("departure odometer not set")
	ErrVehicleUnavailable = errors.New("vehicle unavailable")
	ErrInvalidInput       = errors.New("invalid input")
	ErrPermissionDenied   = errors.New("permission denied")
)

// translateCreateError maps a unique violation raised by a concurrent
// insert onto the duplicate-key sentinel; the pre-insert lookup cannot
// catch that race.
func translateCreateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: already exists", ErrDuplicateKey)
	}
	return err
}

// RouteService owns the route lifecycle: Planned -> InProgress ->
// Completed/Cancelled. Start, Complete and Cancel each run as a single
// transaction spanning the route and every vehicle and tire they touch.
type RouteService struct {
	db          *gorm.DB
	routeRepo   *repository.RouteRepository
	truckRepo   *repository.TruckRepository
	trailerRepo *repository.TrailerRepository
	tireRepo    *repository.TireRepository
	driverRepo  *repository.DriverRepository
}

func NewRouteService(
	db *gorm.DB,
	routeRepo *repository.RouteRepository,
	truckRepo *repository.TruckRepository,
	trailerRepo *repository.TrailerRepository,
	tireRepo *repository.TireRepository,
	driverRepo *repository.DriverRepository,
) *RouteService {
	return &RouteService{
		db:          db,
		routeRepo:   routeRepo,
		truckRepo:   truckRepo,
		trailerRepo: trailerRepo,
		tireRepo:    tireRepo,
		driverRepo:  driverRepo,
	}
}

// RouteView augments a route with its derived figures for responses.
type RouteView struct {
	model.Route
	ActualDistance      *int64   `json:"actual_distance"`
	FuelConsumptionRate *float64 `json:"fuel_consumption_rate"`
}

func NewRouteView(route *model.Route) RouteView {
	view := RouteView{Route: *route}
	if dist, ok := route.ActualDistance(); ok {
		view.ActualDistance = &dist
	}
	if rate, ok := route.FuelConsumptionRate(); ok {
		view.FuelConsumptionRate = &rate
	}
	return view
}

type CreateRouteInput struct {
	RouteNumber       string
	DriverID          string
	TruckID           string
	Description       string
	DepartureLocation string
	ArrivalLocation   string
	PlannedDistance   int64
}

// Create registers a route in Planned state. Truck availability is not
// checked here so routes can be planned ahead of availability; the
// check happens at Start.
func (s *RouteService) Create(ctx context.Context, input CreateRouteInput) (*model.Route, error) {
	routeNumber := utils.NormalizeIdentifier(input.RouteNumber)
	if routeNumber == "" || input.Description == "" || input.DepartureLocation == "" || input.ArrivalLocation == "" {
		return nil, fmt.Errorf("%w: route number, description and locations are required", ErrInvalidInput)
	}
	if input.PlannedDistance < 0 {
		return nil, fmt.Errorf("%w: planned distance cannot be negative", ErrInvalidInput)
	}

	driverID, err := uuid.Parse(input.DriverID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid driver id", ErrInvalidInput)
	}
	truckID, err := uuid.Parse(input.TruckID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid truck id", ErrInvalidInput)
	}

	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: driver", ErrNotFound)
		}
		return nil, err
	}
	if _, err := s.truckRepo.GetByID(ctx, truckID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: truck", ErrNotFound)
		}
		return nil, err
	}

	if _, err := s.routeRepo.GetByNumber(ctx, routeNumber); err == nil {
		return nil, fmt.Errorf("%w: route number %s already in use", ErrDuplicateKey, routeNumber)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	route := &model.Route{
		RouteNumber:       routeNumber,
		DriverID:          driverID,
		TruckID:           truckID,
		Description:       input.Description,
		DepartureLocation: input.DepartureLocation,
		ArrivalLocation:   input.ArrivalLocation,
		PlannedDistance:   input.PlannedDistance,
		Status:            model.RouteStatusPlanned,
	}

	if err := s.routeRepo.Create(ctx, route); err != nil {
		return nil, translateCreateError(err)
	}

	return route, nil
}

// Start transitions a Planned route to InProgress, records the
// departure odometer and flags the truck InRoute, all in one
// transaction.
func (s *RouteService) Start(ctx context.Context, principal model.Principal, routeID string, departureOdometer int64) (*model.Route, error) {
	id, err := uuid.Parse(routeID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid route id", ErrInvalidInput)
	}
	if departureOdometer < 0 {
		return nil, fmt.Errorf("%w: departure odometer cannot be negative", ErrInvalidOdometer)
	}

	var started *model.Route
	err = s.db.Transaction(func(tx *gorm.DB) error {
		routeRepo := s.routeRepo.WithTx(tx)
		truckRepo := s.truckRepo.WithTx(tx)

		route, err := routeRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: route", ErrNotFound)
			}
			return err
		}

		if err := requireRouteAccess(principal, route); err != nil {
			return err
		}

		if route.Status != model.RouteStatusPlanned {
			return fmt.Errorf("%w: route is %s, expected Planned", ErrInvalidState, route.Status)
		}

		truck, err := truckRepo.GetByID(ctx, route.TruckID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: truck", ErrNotFound)
			}
			return err
		}
		if truck.Status != model.VehicleStatusAvailable {
			return fmt.Errorf("%w: truck is %s", ErrVehicleUnavailable, truck.Status)
		}

		ok, err := routeRepo.TransitionStatus(ctx, route.ID, model.RouteStatusPlanned, model.RouteStatusInProgress)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: route no longer Planned", ErrInvalidState)
		}

		route.Status = model.RouteStatusInProgress
		route.DepartureOdometer = &departureOdometer
		if err := routeRepo.Update(ctx, route); err != nil {
			return err
		}

		truck.Status = model.VehicleStatusInRoute
		if err := truckRepo.Update(ctx, truck); err != nil {
			return err
		}

		started = route
		return nil
	})
	if err != nil {
		return nil, err
	}

	return started, nil
}

type CompleteRouteInput struct {
	ArrivalOdometer int64
	FuelVolume      float64
	FuelCost        float64
	VehicleRemarks  string
}

// Complete closes an InProgress route and propagates the travelled
// distance to the truck, its attached trailer and every mounted tire as
// one unit of work. Partial failure rolls everything back.
func (s *RouteService) Complete(ctx context.Context, principal model.Principal, routeID string, input CompleteRouteInput) (*model.Route, error) {
	id, err := uuid.Parse(routeID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid route id", ErrInvalidInput)
	}
	if input.FuelVolume < 0 || input.FuelCost < 0 {
		return nil, fmt.Errorf("%w: fuel figures cannot be negative", ErrInvalidInput)
	}

	var completed *model.Route
	err = s.db.Transaction(func(tx *gorm.DB) error {
		routeRepo := s.routeRepo.WithTx(tx)
		truckRepo := s.truckRepo.WithTx(tx)
		trailerRepo := s.trailerRepo.WithTx(tx)
		tireRepo := s.tireRepo.WithTx(tx)

		route, err := routeRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: route", ErrNotFound)
			}
			return err
		}

		if err := requireRouteAccess(principal, route); err != nil {
			return err
		}

		if route.Status != model.RouteStatusInProgress {
			return fmt.Errorf("%w: route is %s, expected InProgress", ErrInvalidState, route.Status)
		}
		if route.DepartureOdometer == nil {
			return ErrMissingDeparture
		}
		if input.ArrivalOdometer <= *route.DepartureOdometer {
			return fmt.Errorf("%w: arrival odometer must exceed departure odometer", ErrInvalidOdometer)
		}

		ok, err := routeRepo.TransitionStatus(ctx, route.ID, model.RouteStatusInProgress, model.RouteStatusCompleted)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: route no longer InProgress", ErrInvalidState)
		}

		actualDistance := input.ArrivalOdometer - *route.DepartureOdometer

		route.Status = model.RouteStatusCompleted
		route.ArrivalOdometer = &input.ArrivalOdometer
		route.FuelVolume = input.FuelVolume
		route.FuelCost = input.FuelCost
		route.VehicleRemarks = input.VehicleRemarks
		if err := routeRepo.Update(ctx, route); err != nil {
			return err
		}

		truck, err := truckRepo.GetByID(ctx, route.TruckID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: truck", ErrNotFound)
			}
			return err
		}

		truck.CurrentOdometer += actualDistance
		truck.Status = model.VehicleStatusAvailable
		if err := truckRepo.Update(ctx, truck); err != nil {
			return err
		}

		truckRef := model.VehicleRef{Type: model.VehicleTypeTruck, ID: truck.ID}
		if err := advanceMountedTires(ctx, tireRepo, truckRef, actualDistance); err != nil {
			return err
		}

		if truck.AttachedTrailerID != nil {
			trailer, err := trailerRepo.GetByID(ctx, *truck.AttachedTrailerID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: attached trailer", ErrNotFound)
				}
				return err
			}

			trailer.CurrentOdometer += actualDistance
			if err := trailerRepo.Update(ctx, trailer); err != nil {
				return err
			}

			trailerRef := model.VehicleRef{Type: model.VehicleTypeTrailer, ID: trailer.ID}
			if err := advanceMountedTires(ctx, tireRepo, trailerRef, actualDistance); err != nil {
				return err
			}
		}

		completed = route
		return nil
	})
	if err != nil {
		return nil, err
	}

	return completed, nil
}

// advanceMountedTires applies a distance delta to every tire mounted on
// a vehicle, recomputing wear and status for each.
func advanceMountedTires(ctx context.Context, tireRepo *repository.TireRepository, ref model.VehicleRef, delta int64) error {
	tires, err := tireRepo.ListByVehicle(ctx, ref)
	if err != nil {
		return err
	}
	for i := range tires {
		tire := &tires[i]
		tire.CurrentOdometer += delta
		tire.WearPercent, tire.Status = model.ComputeWear(tire.InstallationOdometer, tire.CurrentOdometer)
		if err := tireRepo.Update(ctx, tire); err != nil {
			return err
		}
	}
	return nil
}

// Cancel aborts a route from any non-terminal state and releases the
// truck if it had been put InRoute.
func (s *RouteService) Cancel(ctx context.Context, principal model.Principal, routeID, reason string) (*model.Route, error) {
	id, err := uuid.Parse(routeID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid route id", ErrInvalidInput)
	}

	var cancelled *model.Route
	err = s.db.Transaction(func(tx *gorm.DB) error {
		routeRepo := s.routeRepo.WithTx(tx)
		truckRepo := s.truckRepo.WithTx(tx)

		route, err := routeRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: route", ErrNotFound)
			}
			return err
		}

		if err := requireRouteAccess(principal, route); err != nil {
			return err
		}

		if route.Status.IsTerminal() {
			return fmt.Errorf("%w: route is %s", ErrInvalidState, route.Status)
		}

		wasInProgress := route.Status == model.RouteStatusInProgress

		ok, err := routeRepo.TransitionStatus(ctx, route.ID, route.Status, model.RouteStatusCancelled)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: route status changed concurrently", ErrInvalidState)
		}

		route.Status = model.RouteStatusCancelled
		if reason != "" {
			if route.VehicleRemarks != "" {
				route.VehicleRemarks += "\n"
			}
			route.VehicleRemarks += "Cancelled: " + reason
		}
		if err := routeRepo.Update(ctx, route); err != nil {
			return err
		}

		if wasInProgress {
			truck, err := truckRepo.GetByID(ctx, route.TruckID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: truck", ErrNotFound)
				}
				return err
			}
			if truck.Status == model.VehicleStatusInRoute {
				truck.Status = model.VehicleStatusAvailable
				if err := truckRepo.Update(ctx, truck); err != nil {
					return err
				}
			}
		}

		cancelled = route
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}

type UpdateRouteInput struct {
	Description       *string
	DepartureLocation *string
	ArrivalLocation   *string
	PlannedDistance   *int64
	FuelVolume        *float64
	FuelCost          *float64
	VehicleRemarks    *string
}

// Update edits non-lifecycle fields only. Odometer readings and status
// are writable solely through Start, Complete and Cancel.
func (s *RouteService) Update(ctx context.Context, routeID string, input UpdateRouteInput) (*model.Route, error) {
	id, err := uuid.Parse(routeID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid route id", ErrInvalidInput)
	}

	route, err := s.routeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: route", ErrNotFound)
		}
		return nil, err
	}

	if route.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: route is %s", ErrInvalidState, route.Status)
	}

	if input.Description != nil {
		route.Description = *input.Description
	}
	if input.DepartureLocation != nil {
		route.DepartureLocation = *input.DepartureLocation
	}
	if input.ArrivalLocation != nil {
		route.ArrivalLocation = *input.ArrivalLocation
	}
	if input.PlannedDistance != nil {
		if *input.PlannedDistance < 0 {
			return nil, fmt.Errorf("%w: planned distance cannot be negative", ErrInvalidInput)
		}
		route.PlannedDistance = *input.PlannedDistance
	}
	if input.FuelVolume != nil {
		if *input.FuelVolume < 0 {
			return nil, fmt.Errorf("%w: fuel volume cannot be negative", ErrInvalidInput)
		}
		route.FuelVolume = *input.FuelVolume
	}
	if input.FuelCost != nil {
		if *input.FuelCost < 0 {
			return nil, fmt.Errorf("%w: fuel cost cannot be negative", ErrInvalidInput)
		}
		route.FuelCost = *input.FuelCost
	}
	if input.VehicleRemarks != nil {
		route.VehicleRemarks = *input.VehicleRemarks
	}

	if err := s.routeRepo.Update(ctx, route); err != nil {
		return nil, err
	}

	return route, nil
}

// Delete removes a route that is not InProgress.
func (s *RouteService) Delete(ctx context.Context, routeID string) error {
	id, err := uuid.Parse(routeID)
	if err != nil {
		return fmt.Errorf("%w: invalid route id", ErrInvalidInput)
	}

	route, err := s.routeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: route", ErrNotFound)
		}
		return err
	}

	if route.Status == model.RouteStatusInProgress {
		return fmt.Errorf("%w: cannot delete a route in progress", ErrInvalidState)
	}

	return s.routeRepo.Delete(ctx, id)
}

func (s *RouteService) GetByID(ctx context.Context, routeID string) (*model.Route, error) {
	id, err := uuid.Parse(routeID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid route id", ErrInvalidInput)
	}

	route, err := s.routeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: route", ErrNotFound)
		}
		return nil, err
	}
	return route, nil
}

func (s *RouteService) List(ctx context.Context, filter repository.RouteListFilter) ([]model.Route, int64, error) {
	return s.routeRepo.List(ctx, filter)
}

// requireRouteAccess lets admins operate on any route and drivers only
// on routes assigned to them.
func requireRouteAccess(principal model.Principal, route *model.Route) error {
	if principal.IsAdmin() {
		return nil
	}
	if principal.IsDriver() && principal.DriverID != nil && *principal.DriverID == route.DriverID {
		return nil
	}
	return ErrPermissionDenied
}
