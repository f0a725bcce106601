package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

func TestCreateTruckNormalizesRegistration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	truck, err := env.vehicleService.CreateTruck(ctx, CreateTruckInput{
		RegistrationNumber: "  kz123abc ",
		Model:              "Volvo FH16",
		Year:               2022,
		PurchaseDate:       time.Date(2022, 1, 15, 0, 0, 0, 0, time.UTC),
		FuelCapacity:       600,
	})
	require.NoError(t, err)
	assert.Equal(t, "KZ123ABC", truck.RegistrationNumber)
	assert.Equal(t, model.VehicleStatusAvailable, truck.Status)

	_, err = env.vehicleService.CreateTruck(ctx, CreateTruckInput{
		RegistrationNumber: "KZ123ABC",
		Model:              "Scania R500",
		Year:               2023,
		PurchaseDate:       time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
		FuelCapacity:       550,
	})
	require.ErrorIs(t, err, ErrDuplicateKey)
}

func TestListTrucksSearchIgnoresCase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedTruck(t, "KZ123ABC", 100000)
	env.seedTruck(t, "KZ999ZZZ", 200000)

	trucks, total, err := env.vehicleService.ListTrucks(ctx, repository.TruckListFilter{Search: "kz123"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, trucks, 1)
	assert.Equal(t, "KZ123ABC", trucks[0].RegistrationNumber)
}

func TestCreateTruckConcurrentDuplicateTranslated(t *testing.T) {
	env := newTestEnv(t)

	truck := env.seedTruck(t, "KZ123ABC", 100000)

	// an insert that slips past the pre-insert lookup must still surface
	// as a duplicate-key conflict rather than a raw driver error
	dup := &model.Truck{
		RegistrationNumber: truck.RegistrationNumber,
		Model:              "Scania R500",
		Year:               2023,
		PurchaseDate:       time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
		FuelCapacity:       550,
		Status:             model.VehicleStatusAvailable,
	}
	err := env.db.Create(dup).Error
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	require.ErrorIs(t, translateCreateError(err), ErrDuplicateKey)
}

func TestAdvanceOdometerMonotonic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	truck := env.seedTruck(t, "KZ123ABC", 100000)
	ref := model.VehicleRef{Type: model.VehicleTypeTruck, ID: truck.ID}

	require.NoError(t, env.vehicleService.AdvanceOdometer(ctx, ref, 100500))

	err := env.vehicleService.AdvanceOdometer(ctx, ref, 100400)
	require.ErrorIs(t, err, ErrInvalidOdometer)

	reloaded, err := env.trucks.GetByID(ctx, truck.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100500), reloaded.CurrentOdometer)
}

func TestAdvanceOdometerTrailer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	trailer := env.seedTrailer(t, "KZ456DEF", 80000)
	ref := model.VehicleRef{Type: model.VehicleTypeTrailer, ID: trailer.ID}

	require.NoError(t, env.vehicleService.AdvanceOdometer(ctx, ref, 81000))

	reloaded, err := env.trailers.GetByID(ctx, trailer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(81000), reloaded.CurrentOdometer)
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	truck := env.seedTruck(t, "KZ123ABC", 100000)
	ref := model.VehicleRef{Type: model.VehicleTypeTruck, ID: truck.ID}

	err := env.vehicleService.SetStatus(ctx, ref, model.VehicleStatus("Parked"))
	require.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, env.vehicleService.SetStatus(ctx, ref, model.VehicleStatusMaintenance))

	reloaded, err := env.trucks.GetByID(ctx, truck.ID)
	require.NoError(t, err)
	assert.Equal(t, model.VehicleStatusMaintenance, reloaded.Status)
}

func TestAttachTrailer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	truck := env.seedTruck(t, "KZ123ABC", 100000)
	first := env.seedTrailer(t, "KZ456DEF", 80000)
	second := env.seedTrailer(t, "KZ789GHI", 50000)

	attached, err := env.vehicleService.AttachTrailer(ctx, truck.ID.String(), first.ID.String())
	require.NoError(t, err)
	require.NotNil(t, attached.AttachedTrailerID)
	assert.Equal(t, first.ID, *attached.AttachedTrailerID)

	_, err = env.vehicleService.AttachTrailer(ctx, truck.ID.String(), second.ID.String())
	require.ErrorIs(t, err, ErrInvalidState)

	detached, err := env.vehicleService.DetachTrailer(ctx, truck.ID.String())
	require.NoError(t, err)
	assert.Nil(t, detached.AttachedTrailerID)

	_, err = env.vehicleService.DetachTrailer(ctx, truck.ID.String())
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestDeleteTruckWithRouteInProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	driver := env.seedDriver(t, "DL-1001")
	truck := env.seedTruck(t, "KZ123ABC", 100000)
	route := env.seedPlannedRoute(t, "RT-2026-001", driver.ID, truck.ID)

	_, err := env.routeService.Start(ctx, adminPrincipal(), route.ID.String(), 100000)
	require.NoError(t, err)

	err = env.vehicleService.DeleteTruck(ctx, truck.ID.String())
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = env.routeService.Cancel(ctx, adminPrincipal(), route.ID.String(), "")
	require.NoError(t, err)

	require.NoError(t, env.vehicleService.DeleteTruck(ctx, truck.ID.String()))
}

func TestTruckStatistics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedTruck(t, "KZ111AAA", 100000)
	env.seedTruck(t, "KZ222BBB", 200000)
	busy := env.seedTruck(t, "KZ333CCC", 300000)
	busy.Status = model.VehicleStatusInRoute
	require.NoError(t, env.db.Save(busy).Error)

	stats, err := env.vehicleService.TruckStatistics(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.ByStatus[model.VehicleStatusAvailable])
	assert.Equal(t, int64(1), stats.ByStatus[model.VehicleStatusInRoute])
	assert.InDelta(t, 200000, stats.AverageOdometer, 1e-9)
}
