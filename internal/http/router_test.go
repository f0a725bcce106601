package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
	"fleet-service/internal/service"
)

// newTestRouter builds the full engine on an in-memory database with the
// auth middleware stubbed out to inject the given principal.
func newTestRouter(t *testing.T, principal model.Principal) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	trucks := repository.NewTruckRepository(db)
	trailers := repository.NewTrailerRepository(db)
	tires := repository.NewTireRepository(db)
	drivers := repository.NewDriverRepository(db)
	routes := repository.NewRouteRepository(db)
	maintenance := repository.NewMaintenanceRepository(db)

	handler := NewHandler(
		service.NewVehicleService(trucks, trailers, routes),
		service.NewTireService(tires, trucks, trailers),
		service.NewRouteService(db, routes, trucks, trailers, tires, drivers),
		service.NewDriverService(drivers, routes),
		service.NewMaintenanceService(maintenance, trucks, trailers),
		zerolog.Nop(),
	)

	stubAuth := func(c *gin.Context) {
		c.Set("principal", principal)
		c.Next()
	}

	return NewRouter(handler, stubAuth, "test"), db
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t, model.Principal{UserID: uuid.New(), Role: model.RoleAdmin})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "fleet-service", body["service"])
}

func TestAdvanceOdometerAcceptsZeroReading(t *testing.T) {
	router, db := newTestRouter(t, model.Principal{UserID: uuid.New(), Role: model.RoleAdmin})

	truck := &model.Truck{
		RegistrationNumber: "KZ123ABC",
		Model:              "Volvo FH16",
		Year:               2022,
		PurchaseDate:       time.Date(2022, 1, 15, 0, 0, 0, 0, time.UTC),
		CurrentOdometer:    0,
		FuelCapacity:       600,
		Status:             model.VehicleStatusAvailable,
	}
	require.NoError(t, db.Create(truck).Error)

	// a brand-new truck legitimately reports zero kilometres
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/trucks/"+truck.ID.String()+"/odometer",
		bytes.NewBufferString(`{"odometer": 0}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// an absent reading is still rejected
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, "/api/trucks/"+truck.ID.String()+"/odometer",
		bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
