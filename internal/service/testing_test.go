package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

type testEnv struct {
	db          *gorm.DB
	trucks      *repository.TruckRepository
	trailers    *repository.TrailerRepository
	tires       *repository.TireRepository
	drivers     *repository.DriverRepository
	routes      *repository.RouteRepository
	maintenance *repository.MaintenanceRepository

	vehicleService     *VehicleService
	tireService        *TireService
	routeService       *RouteService
	driverService      *DriverService
	maintenanceService *MaintenanceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&model.Truck{},
		&model.Trailer{},
		&model.Driver{},
		&model.Tire{},
		&model.Route{},
		&model.MaintenanceRule{},
		&model.MaintenanceRecord{},
	)
	require.NoError(t, err)

	env := &testEnv{
		db:          db,
		trucks:      repository.NewTruckRepository(db),
		trailers:    repository.NewTrailerRepository(db),
		tires:       repository.NewTireRepository(db),
		drivers:     repository.NewDriverRepository(db),
		routes:      repository.NewRouteRepository(db),
		maintenance: repository.NewMaintenanceRepository(db),
	}

	env.vehicleService = NewVehicleService(env.trucks, env.trailers, env.routes)
	env.tireService = NewTireService(env.tires, env.trucks, env.trailers)
	env.routeService = NewRouteService(db, env.routes, env.trucks, env.trailers, env.tires, env.drivers)
	env.driverService = NewDriverService(env.drivers, env.routes)
	env.maintenanceService = NewMaintenanceService(env.maintenance, env.trucks, env.trailers)

	return env
}

func adminPrincipal() model.Principal {
	return model.Principal{UserID: uuid.New(), Role: model.RoleAdmin}
}

func driverPrincipal(driverID uuid.UUID) model.Principal {
	return model.Principal{UserID: uuid.New(), Role: model.RoleDriver, DriverID: &driverID}
}

func (e *testEnv) seedTruck(t *testing.T, registration string, odometer int64) *model.Truck {
	t.Helper()
	truck := &model.Truck{
		RegistrationNumber: registration,
		Model:              "Volvo FH16",
		Year:               2022,
		PurchaseDate:       time.Date(2022, 1, 15, 0, 0, 0, 0, time.UTC),
		CurrentOdometer:    odometer,
		FuelCapacity:       600,
		Status:             model.VehicleStatusAvailable,
	}
	require.NoError(t, e.db.Create(truck).Error)
	return truck
}

func (e *testEnv) seedTrailer(t *testing.T, registration string, odometer int64) *model.Trailer {
	t.Helper()
	trailer := &model.Trailer{
		RegistrationNumber: registration,
		Brand:              "Schmitz",
		Year:               2021,
		MaxCapacity:        24000,
		PurchaseDate:       time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC),
		CurrentOdometer:    odometer,
		Status:             model.VehicleStatusAvailable,
	}
	require.NoError(t, e.db.Create(trailer).Error)
	return trailer
}

func (e *testEnv) seedDriver(t *testing.T, license string) *model.Driver {
	t.Helper()
	driver := &model.Driver{
		Name:          "Test Driver",
		LicenseNumber: license,
		Phone:         "+77010000000",
	}
	require.NoError(t, e.db.Create(driver).Error)
	return driver
}

func (e *testEnv) seedTire(t *testing.T, serial string, ref model.VehicleRef, installation, current int64) *model.Tire {
	t.Helper()
	pct, status := model.ComputeWear(installation, current)
	tire := &model.Tire{
		SerialNumber:         serial,
		Size:                 "315/70R22.5",
		Brand:                "Michelin",
		PurchaseDate:         time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
		InstallationOdometer: installation,
		CurrentOdometer:      current,
		WearPercent:          pct,
		Status:               status,
		Vehicle:              ref,
	}
	require.NoError(t, e.db.Create(tire).Error)
	return tire
}

func (e *testEnv) seedPlannedRoute(t *testing.T, number string, driverID, truckID uuid.UUID) *model.Route {
	t.Helper()
	route := &model.Route{
		RouteNumber:       number,
		DriverID:          driverID,
		TruckID:           truckID,
		Description:       "Grain haul",
		DepartureLocation: "Astana",
		ArrivalLocation:   "Karaganda",
		PlannedDistance:   230,
		Status:            model.RouteStatusPlanned,
	}
	require.NoError(t, e.db.Create(route).Error)
	return route
}
