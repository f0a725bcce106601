package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-service/internal/repository"
)

func TestCreateDriverDuplicateLicense(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	driver, err := env.driverService.Create(ctx, CreateDriverInput{
		Name:          "Aidos K.",
		LicenseNumber: " dl-1001 ",
	})
	require.NoError(t, err)
	assert.Equal(t, "DL-1001", driver.LicenseNumber)

	_, err = env.driverService.Create(ctx, CreateDriverInput{
		Name:          "Someone Else",
		LicenseNumber: "DL-1001",
	})
	require.ErrorIs(t, err, ErrDuplicateKey)

	// a case variant of the same license is still the same license
	_, err = env.driverService.Create(ctx, CreateDriverInput{
		Name:          "Another One",
		LicenseNumber: "dl-1001",
	})
	require.ErrorIs(t, err, ErrDuplicateKey)
}

func TestDeleteDriverWithRouteInProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	driver := env.seedDriver(t, "DL-1001")
	truck := env.seedTruck(t, "KZ123ABC", 100000)
	route := env.seedPlannedRoute(t, "RT-2026-001", driver.ID, truck.ID)

	_, err := env.routeService.Start(ctx, adminPrincipal(), route.ID.String(), 100000)
	require.NoError(t, err)

	err = env.driverService.Delete(ctx, driver.ID.String())
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestDriverRoutes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	driver := env.seedDriver(t, "DL-1001")
	other := env.seedDriver(t, "DL-2002")
	truck := env.seedTruck(t, "KZ123ABC", 100000)

	env.seedPlannedRoute(t, "RT-2026-001", driver.ID, truck.ID)
	env.seedPlannedRoute(t, "RT-2026-002", driver.ID, truck.ID)
	env.seedPlannedRoute(t, "RT-2026-003", other.ID, truck.ID)

	routes, total, err := env.driverService.Routes(ctx, driver.ID.String(), repository.RouteListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, routes, 2)
	for _, route := range routes {
		assert.Equal(t, driver.ID, route.DriverID)
	}
}
