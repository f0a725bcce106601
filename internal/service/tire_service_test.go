package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-service/internal/model"
)

func TestCreateTire(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	truck := env.seedTruck(t, "KZ123ABC", 100000)

	tire, err := env.tireService.Create(ctx, CreateTireInput{
		SerialNumber:         "sn-0001",
		Size:                 "315/70R22.5",
		Brand:                "Michelin",
		PurchaseDate:         time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		InstallationOdometer: 100000,
		VehicleType:          model.VehicleTypeTruck,
		VehicleID:            truck.ID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, "SN-0001", tire.SerialNumber)
	assert.Equal(t, int64(100000), tire.CurrentOdometer)
	assert.Equal(t, model.TireStatusGood, tire.Status)
	assert.Zero(t, tire.WearPercent)

	_, err = env.tireService.Create(ctx, CreateTireInput{
		SerialNumber:         "SN-0001",
		Size:                 "315/70R22.5",
		Brand:                "Michelin",
		PurchaseDate:         time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		InstallationOdometer: 100000,
		VehicleType:          model.VehicleTypeTruck,
		VehicleID:            truck.ID.String(),
	})
	require.ErrorIs(t, err, ErrDuplicateKey)
}

func TestCreateTireUnknownVehicle(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.tireService.Create(context.Background(), CreateTireInput{
		SerialNumber:         "SN-0001",
		Size:                 "315/70R22.5",
		Brand:                "Michelin",
		PurchaseDate:         time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		InstallationOdometer: 0,
		VehicleType:          model.VehicleTypeTruck,
		VehicleID:            "00000000-0000-0000-0000-000000000001",
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAdvanceWear(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	truck := env.seedTruck(t, "KZ123ABC", 100000)
	ref := model.VehicleRef{Type: model.VehicleTypeTruck, ID: truck.ID}
	tire := env.seedTire(t, "SN-0001", ref, 100000, 100000)

	updated, err := env.tireService.AdvanceWear(ctx, tire.ID.String(), 130000)
	require.NoError(t, err)
	assert.InDelta(t, 60, updated.WearPercent, 1e-9)
	assert.Equal(t, model.TireStatusWarning, updated.Status)

	updated, err = env.tireService.AdvanceWear(ctx, tire.ID.String(), 140000)
	require.NoError(t, err)
	assert.InDelta(t, 80, updated.WearPercent, 1e-9)
	assert.Equal(t, model.TireStatusNeedReplacement, updated.Status)
}

func TestAdvanceWearRejectsRegression(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	truck := env.seedTruck(t, "KZ123ABC", 100000)
	ref := model.VehicleRef{Type: model.VehicleTypeTruck, ID: truck.ID}
	tire := env.seedTire(t, "SN-0001", ref, 100000, 120000)

	_, err := env.tireService.AdvanceWear(ctx, tire.ID.String(), 110000)
	require.ErrorIs(t, err, ErrInvalidOdometer)

	reloaded, err := env.tires.GetByID(ctx, tire.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(120000), reloaded.CurrentOdometer)
}

func TestRetireTire(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	truck := env.seedTruck(t, "KZ123ABC", 100000)
	ref := model.VehicleRef{Type: model.VehicleTypeTruck, ID: truck.ID}
	tire := env.seedTire(t, "SN-0001", ref, 100000, 145000)

	retired, err := env.tireService.Retire(ctx, tire.ID.String())
	require.NoError(t, err)
	assert.True(t, retired.Retired)

	_, err = env.tireService.Retire(ctx, tire.ID.String())
	require.ErrorIs(t, err, ErrInvalidState)

	// retired tires no longer count as mounted
	mounted, err := env.tireService.ListByVehicle(ctx, model.VehicleTypeTruck, truck.ID.String())
	require.NoError(t, err)
	assert.Empty(t, mounted)
}

func TestListByVehicleEmpty(t *testing.T) {
	env := newTestEnv(t)

	truck := env.seedTruck(t, "KZ123ABC", 100000)

	mounted, err := env.tireService.ListByVehicle(context.Background(), model.VehicleTypeTruck, truck.ID.String())
	require.NoError(t, err)
	assert.NotNil(t, mounted)
	assert.Empty(t, mounted)
}
