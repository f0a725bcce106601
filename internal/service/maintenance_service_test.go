package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-service/internal/model"
)

func TestCheckDueByDistance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	truck := env.seedTruck(t, "KZ123ABC", 105000)

	_, err := env.maintenanceService.CreateRule(ctx, CreateRuleInput{
		MaintenanceType:  model.MaintenanceOilChange,
		VehicleType:      model.VehicleTypeTruck,
		VehicleID:        truck.ID.String(),
		IntervalDistance: 100000,
	})
	require.NoError(t, err)

	// no maintenance on record yet, distance counts from zero
	check, err := env.maintenanceService.CheckDue(ctx, model.VehicleTypeTruck, truck.ID.String())
	require.NoError(t, err)

	assert.True(t, check.HasDue)
	require.Len(t, check.Due, 1)
	assert.Equal(t, model.DueReasonDistance, check.Due[0].Result.Reason)
	assert.Equal(t, int64(5000), check.Due[0].Result.OverdueDistance)
	assert.Nil(t, check.Due[0].LastMaintenance)
}

func TestCheckDueResetByCompletedRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	truck := env.seedTruck(t, "KZ123ABC", 105000)

	_, err := env.maintenanceService.CreateRule(ctx, CreateRuleInput{
		MaintenanceType:  model.MaintenanceOilChange,
		VehicleType:      model.VehicleTypeTruck,
		VehicleID:        truck.ID.String(),
		IntervalDistance: 100000,
	})
	require.NoError(t, err)

	record, err := env.maintenanceService.CreateRecord(ctx, CreateRecordInput{
		VehicleType:           model.VehicleTypeTruck,
		VehicleID:             truck.ID.String(),
		MaintenanceType:       model.MaintenanceOilChange,
		Date:                  time.Now().AddDate(0, 0, -7),
		OdometerAtMaintenance: 100000,
		PerformedBy:           "Workshop A",
		Description:           "oil and filters",
	})
	require.NoError(t, err)

	// a scheduled record does not reset the counter yet
	check, err := env.maintenanceService.CheckDue(ctx, model.VehicleTypeTruck, truck.ID.String())
	require.NoError(t, err)
	assert.True(t, check.HasDue)

	_, err = env.maintenanceService.CompleteRecord(ctx, record.ID.String(), CompleteRecordInput{})
	require.NoError(t, err)

	check, err = env.maintenanceService.CheckDue(ctx, model.VehicleTypeTruck, truck.ID.String())
	require.NoError(t, err)
	assert.False(t, check.HasDue)
	assert.Empty(t, check.Due)
}

func TestCheckDueByTimeFromPurchase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// purchased long ago, barely driven
	truck := env.seedTruck(t, "KZ123ABC", 5000)

	_, err := env.maintenanceService.CreateRule(ctx, CreateRuleInput{
		MaintenanceType:  model.MaintenanceGeneralInspection,
		VehicleType:      model.VehicleTypeTruck,
		VehicleID:        truck.ID.String(),
		IntervalDistance: 100000,
		IntervalMonths:   12,
	})
	require.NoError(t, err)

	env.maintenanceService.now = func() time.Time {
		return truck.PurchaseDate.AddDate(0, 0, 400)
	}

	check, err := env.maintenanceService.CheckDue(ctx, model.VehicleTypeTruck, truck.ID.String())
	require.NoError(t, err)

	assert.True(t, check.HasDue)
	require.Len(t, check.Due, 1)
	assert.Equal(t, model.DueReasonTime, check.Due[0].Result.Reason)
}

func TestCheckDueIgnoresInactiveRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	truck := env.seedTruck(t, "KZ123ABC", 250000)

	rule, err := env.maintenanceService.CreateRule(ctx, CreateRuleInput{
		MaintenanceType:  model.MaintenanceOilChange,
		VehicleType:      model.VehicleTypeTruck,
		VehicleID:        truck.ID.String(),
		IntervalDistance: 100000,
	})
	require.NoError(t, err)

	_, err = env.maintenanceService.ToggleRule(ctx, rule.ID.String(), false)
	require.NoError(t, err)

	check, err := env.maintenanceService.CheckDue(ctx, model.VehicleTypeTruck, truck.ID.String())
	require.NoError(t, err)
	assert.False(t, check.HasDue)
}

func TestCompleteRecordTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	truck := env.seedTruck(t, "KZ123ABC", 100000)

	record, err := env.maintenanceService.CreateRecord(ctx, CreateRecordInput{
		VehicleType:           model.VehicleTypeTruck,
		VehicleID:             truck.ID.String(),
		MaintenanceType:       model.MaintenanceBrakeCheck,
		OdometerAtMaintenance: 100000,
		PerformedBy:           "Workshop A",
		Description:           "brake pads inspection",
	})
	require.NoError(t, err)
	assert.Equal(t, model.MaintenanceRecordScheduled, record.Status)

	cost := 15000.0
	completed, err := env.maintenanceService.CompleteRecord(ctx, record.ID.String(), CompleteRecordInput{
		Cost:  &cost,
		Notes: "pads replaced",
	})
	require.NoError(t, err)
	assert.Equal(t, model.MaintenanceRecordCompleted, completed.Status)
	assert.Equal(t, 15000.0, completed.Cost)

	_, err = env.maintenanceService.CompleteRecord(ctx, record.ID.String(), CompleteRecordInput{})
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = env.maintenanceService.CancelRecord(ctx, record.ID.String(), "too late")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	truck := env.seedTruck(t, "KZ123ABC", 100000)

	record, err := env.maintenanceService.CreateRecord(ctx, CreateRecordInput{
		VehicleType:           model.VehicleTypeTruck,
		VehicleID:             truck.ID.String(),
		MaintenanceType:       model.MaintenanceBrakeCheck,
		OdometerAtMaintenance: 100000,
		PerformedBy:           "Workshop A",
		Description:           "brake pads inspection",
	})
	require.NoError(t, err)

	cancelled, err := env.maintenanceService.CancelRecord(ctx, record.ID.String(), "truck sold")
	require.NoError(t, err)
	assert.Equal(t, model.MaintenanceRecordCancelled, cancelled.Status)
	assert.Equal(t, "Cancelled: truck sold", cancelled.Notes)
}

func TestCreateRuleValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	truck := env.seedTruck(t, "KZ123ABC", 100000)

	_, err := env.maintenanceService.CreateRule(ctx, CreateRuleInput{
		MaintenanceType:  model.MaintenanceOilChange,
		VehicleType:      model.VehicleTypeTruck,
		VehicleID:        truck.ID.String(),
		IntervalDistance: 0,
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.maintenanceService.CreateRule(ctx, CreateRuleInput{
		MaintenanceType:  model.MaintenanceOilChange,
		VehicleType:      model.VehicleTypeTruck,
		VehicleID:        "00000000-0000-0000-0000-000000000001",
		IntervalDistance: 10000,
	})
	require.ErrorIs(t, err, ErrNotFound)
}
