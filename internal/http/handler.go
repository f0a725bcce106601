package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fleet-service/internal/http/middleware"
	"fleet-service/internal/model"
	"fleet-service/internal/repository"
	"fleet-service/internal/service"
)

type Handler struct {
	vehicleService     *service.VehicleService
	tireService        *service.TireService
	routeService       *service.RouteService
	driverService      *service.DriverService
	maintenanceService *service.MaintenanceService
	log                zerolog.Logger
}

func NewHandler(
	vehicleService *service.VehicleService,
	tireService *service.TireService,
	routeService *service.RouteService,
	driverService *service.DriverService,
	maintenanceService *service.MaintenanceService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		vehicleService:     vehicleService,
		tireService:        tireService,
		routeService:       routeService,
		driverService:      driverService,
		maintenanceService: maintenanceService,
		log:                log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	api := r.Group("/api")
	api.Use(authMiddleware)

	admin := middleware.RequireAdmin()

	trucks := api.Group("/trucks")
	{
		trucks.GET("", h.listTrucks)
		trucks.GET("/statistics", h.truckStatistics)
		trucks.GET("/:id", h.getTruck)
		trucks.GET("/:id/tires", h.listTruckTires)
		trucks.POST("", admin, h.createTruck)
		trucks.PUT("/:id", admin, h.updateTruck)
		trucks.DELETE("/:id", admin, h.deleteTruck)
		trucks.PATCH("/:id/odometer", admin, h.advanceTruckOdometer)
		trucks.PATCH("/:id/status", admin, h.setTruckStatus)
		trucks.POST("/:id/trailer", admin, h.attachTrailer)
		trucks.DELETE("/:id/trailer", admin, h.detachTrailer)
	}

	trailers := api.Group("/trailers")
	{
		trailers.GET("", h.listTrailers)
		trailers.GET("/:id", h.getTrailer)
		trailers.GET("/:id/tires", h.listTrailerTires)
		trailers.POST("", admin, h.createTrailer)
		trailers.PUT("/:id", admin, h.updateTrailer)
		trailers.DELETE("/:id", admin, h.deleteTrailer)
	}

	tires := api.Group("/tires")
	{
		tires.GET("", h.listTires)
		tires.GET("/statistics", h.tireStatistics)
		tires.GET("/:id", h.getTire)
		tires.POST("", admin, h.createTire)
		tires.PUT("/:id", admin, h.updateTire)
		tires.PATCH("/:id/wear", admin, h.advanceTireWear)
		tires.DELETE("/:id", admin, h.retireTire)
	}

	drivers := api.Group("/drivers")
	{
		drivers.GET("", h.listDrivers)
		drivers.GET("/me/routes", h.listMyRoutes)
		drivers.GET("/:id", h.getDriver)
		drivers.GET("/:id/routes", h.listDriverRoutes)
		drivers.POST("", admin, h.createDriver)
		drivers.PUT("/:id", admin, h.updateDriver)
		drivers.DELETE("/:id", admin, h.deleteDriver)
	}

	routes := api.Group("/routes")
	{
		routes.GET("", h.listRoutes)
		routes.GET("/:id", h.getRoute)
		routes.POST("", admin, h.createRoute)
		routes.PUT("/:id", admin, h.updateRoute)
		routes.DELETE("/:id", admin, h.deleteRoute)
		// lifecycle transitions are open to the assigned driver as well;
		// the service enforces ownership
		routes.PATCH("/:id/start", h.startRoute)
		routes.PATCH("/:id/complete", h.completeRoute)
		routes.PATCH("/:id/cancel", h.cancelRoute)
	}

	maintenance := api.Group("/maintenance")
	{
		maintenance.GET("/rules", h.listMaintenanceRules)
		maintenance.GET("/rules/:id", h.getMaintenanceRule)
		maintenance.POST("/rules", admin, h.createMaintenanceRule)
		maintenance.PUT("/rules/:id", admin, h.updateMaintenanceRule)
		maintenance.PATCH("/rules/:id/toggle", admin, h.toggleMaintenanceRule)
		maintenance.DELETE("/rules/:id", admin, h.deleteMaintenanceRule)

		maintenance.GET("/records", h.listMaintenanceRecords)
		maintenance.GET("/records/:id", h.getMaintenanceRecord)
		maintenance.POST("/records", admin, h.createMaintenanceRecord)
		maintenance.PATCH("/records/:id/complete", admin, h.completeMaintenanceRecord)
		maintenance.PATCH("/records/:id/cancel", admin, h.cancelMaintenanceRecord)
		maintenance.DELETE("/records/:id", admin, h.deleteMaintenanceRecord)

		maintenance.GET("/due/:vehicleType/:id", h.checkMaintenanceDue)
	}
}

// Truck handlers

func (h *Handler) createTruck(c *gin.Context) {
	var req struct {
		RegistrationNumber string  `json:"registration_number" binding:"required"`
		Model              string  `json:"model" binding:"required"`
		Year               int     `json:"year" binding:"required"`
		PurchaseDate       string  `json:"purchase_date" binding:"required"`
		CurrentOdometer    int64   `json:"current_odometer"`
		FuelCapacity       float64 `json:"fuel_capacity" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	purchaseDate, err := parseTime(req.PurchaseDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid purchase_date"))
		return
	}

	truck, err := h.vehicleService.CreateTruck(c.Request.Context(), service.CreateTruckInput{
		RegistrationNumber: req.RegistrationNumber,
		Model:              req.Model,
		Year:               req.Year,
		PurchaseDate:       purchaseDate,
		CurrentOdometer:    req.CurrentOdometer,
		FuelCapacity:       req.FuelCapacity,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(truck))
}

func (h *Handler) getTruck(c *gin.Context) {
	truck, err := h.vehicleService.GetTruck(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(truck))
}

func (h *Handler) listTrucks(c *gin.Context) {
	filter := repository.TruckListFilter{Search: strings.TrimSpace(c.Query("search"))}
	filter.Page, filter.Limit = pageParams(c)

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := model.VehicleStatus(raw)
		filter.Status = &status
	}

	trucks, total, err := h.vehicleService.ListTrucks(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginatedResponse(trucks, total, filter.Page, filter.Limit))
}

func (h *Handler) truckStatistics(c *gin.Context) {
	stats, err := h.vehicleService.TruckStatistics(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(stats))
}

func (h *Handler) updateTruck(c *gin.Context) {
	var req struct {
		Model        *string  `json:"model"`
		Year         *int     `json:"year"`
		FuelCapacity *float64 `json:"fuel_capacity"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	truck, err := h.vehicleService.UpdateTruck(c.Request.Context(), c.Param("id"), service.UpdateTruckInput{
		Model:        req.Model,
		Year:         req.Year,
		FuelCapacity: req.FuelCapacity,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(truck))
}

func (h *Handler) deleteTruck(c *gin.Context) {
	if err := h.vehicleService.DeleteTruck(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) advanceTruckOdometer(c *gin.Context) {
	ref, ok := h.vehicleRefParam(c, model.VehicleTypeTruck)
	if !ok {
		return
	}

	// pointer so that a reading of zero still binds
	var req struct {
		Odometer *int64 `json:"odometer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.vehicleService.AdvanceOdometer(c.Request.Context(), ref, *req.Odometer); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"message": "odometer updated"}))
}

func (h *Handler) setTruckStatus(c *gin.Context) {
	ref, ok := h.vehicleRefParam(c, model.VehicleTypeTruck)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.vehicleService.SetStatus(c.Request.Context(), ref, model.VehicleStatus(req.Status)); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"message": "status updated"}))
}

func (h *Handler) attachTrailer(c *gin.Context) {
	var req struct {
		TrailerID string `json:"trailer_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	truck, err := h.vehicleService.AttachTrailer(c.Request.Context(), c.Param("id"), req.TrailerID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(truck))
}

func (h *Handler) detachTrailer(c *gin.Context) {
	truck, err := h.vehicleService.DetachTrailer(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(truck))
}

func (h *Handler) listTruckTires(c *gin.Context) {
	tires, err := h.tireService.ListByVehicle(c.Request.Context(), model.VehicleTypeTruck, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(tires))
}

// Trailer handlers

func (h *Handler) createTrailer(c *gin.Context) {
	var req struct {
		RegistrationNumber string  `json:"registration_number" binding:"required"`
		Brand              string  `json:"brand" binding:"required"`
		Year               int     `json:"year" binding:"required"`
		MaxCapacity        float64 `json:"max_capacity" binding:"required"`
		PurchaseDate       string  `json:"purchase_date" binding:"required"`
		CurrentOdometer    int64   `json:"current_odometer"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	purchaseDate, err := parseTime(req.PurchaseDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid purchase_date"))
		return
	}

	trailer, err := h.vehicleService.CreateTrailer(c.Request.Context(), service.CreateTrailerInput{
		RegistrationNumber: req.RegistrationNumber,
		Brand:              req.Brand,
		Year:               req.Year,
		MaxCapacity:        req.MaxCapacity,
		PurchaseDate:       purchaseDate,
		CurrentOdometer:    req.CurrentOdometer,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(trailer))
}

func (h *Handler) getTrailer(c *gin.Context) {
	trailer, err := h.vehicleService.GetTrailer(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(trailer))
}

func (h *Handler) listTrailers(c *gin.Context) {
	filter := repository.TrailerListFilter{Search: strings.TrimSpace(c.Query("search"))}
	filter.Page, filter.Limit = pageParams(c)

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := model.VehicleStatus(raw)
		filter.Status = &status
	}

	trailers, total, err := h.vehicleService.ListTrailers(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginatedResponse(trailers, total, filter.Page, filter.Limit))
}

func (h *Handler) updateTrailer(c *gin.Context) {
	var req struct {
		Brand       *string  `json:"brand"`
		Year        *int     `json:"year"`
		MaxCapacity *float64 `json:"max_capacity"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	trailer, err := h.vehicleService.UpdateTrailer(c.Request.Context(), c.Param("id"), service.UpdateTrailerInput{
		Brand:       req.Brand,
		Year:        req.Year,
		MaxCapacity: req.MaxCapacity,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(trailer))
}

func (h *Handler) deleteTrailer(c *gin.Context) {
	if err := h.vehicleService.DeleteTrailer(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listTrailerTires(c *gin.Context) {
	tires, err := h.tireService.ListByVehicle(c.Request.Context(), model.VehicleTypeTrailer, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(tires))
}

// Tire handlers

func (h *Handler) createTire(c *gin.Context) {
	var req struct {
		SerialNumber         string  `json:"serial_number" binding:"required"`
		Size                 string  `json:"size" binding:"required"`
		Brand                string  `json:"brand" binding:"required"`
		PurchaseDate         string  `json:"purchase_date" binding:"required"`
		InstallationDate     *string `json:"installation_date"`
		InstallationOdometer int64   `json:"installation_odometer"`
		VehicleType          string  `json:"vehicle_type" binding:"required"`
		VehicleID            string  `json:"vehicle_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	purchaseDate, err := parseTime(req.PurchaseDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid purchase_date"))
		return
	}

	var installationDate *time.Time
	if req.InstallationDate != nil && *req.InstallationDate != "" {
		t, err := parseTime(*req.InstallationDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid installation_date"))
			return
		}
		installationDate = &t
	}

	vehicleType, err := parseVehicleType(req.VehicleType)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	tire, err := h.tireService.Create(c.Request.Context(), service.CreateTireInput{
		SerialNumber:         req.SerialNumber,
		Size:                 req.Size,
		Brand:                req.Brand,
		PurchaseDate:         purchaseDate,
		InstallationDate:     installationDate,
		InstallationOdometer: req.InstallationOdometer,
		VehicleType:          vehicleType,
		VehicleID:            req.VehicleID,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(tire))
}

func (h *Handler) getTire(c *gin.Context) {
	tire, err := h.tireService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(tire))
}

func (h *Handler) listTires(c *gin.Context) {
	filter := repository.TireListFilter{Search: strings.TrimSpace(c.Query("search"))}
	filter.Page, filter.Limit = pageParams(c)

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := model.TireStatus(raw)
		filter.Status = &status
	}
	if raw := strings.TrimSpace(c.Query("retired")); raw != "" {
		retired := raw == "true"
		filter.Retired = &retired
	}

	tires, total, err := h.tireService.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginatedResponse(tires, total, filter.Page, filter.Limit))
}

func (h *Handler) tireStatistics(c *gin.Context) {
	stats, err := h.tireService.Statistics(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(stats))
}

func (h *Handler) updateTire(c *gin.Context) {
	var req struct {
		Size  *string `json:"size"`
		Brand *string `json:"brand"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	tire, err := h.tireService.Update(c.Request.Context(), c.Param("id"), service.UpdateTireInput{
		Size:  req.Size,
		Brand: req.Brand,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(tire))
}

func (h *Handler) advanceTireWear(c *gin.Context) {
	var req struct {
		Odometer *int64 `json:"odometer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	tire, err := h.tireService.AdvanceWear(c.Request.Context(), c.Param("id"), *req.Odometer)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(tire))
}

func (h *Handler) retireTire(c *gin.Context) {
	tire, err := h.tireService.Retire(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(tire))
}

// Driver handlers

func (h *Handler) createDriver(c *gin.Context) {
	var req struct {
		Name          string `json:"name" binding:"required"`
		LicenseNumber string `json:"license_number" binding:"required"`
		Phone         string `json:"phone"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	driver, err := h.driverService.Create(c.Request.Context(), service.CreateDriverInput{
		Name:          req.Name,
		LicenseNumber: req.LicenseNumber,
		Phone:         req.Phone,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(driver))
}

func (h *Handler) getDriver(c *gin.Context) {
	driver, err := h.driverService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(driver))
}

func (h *Handler) listDrivers(c *gin.Context) {
	drivers, err := h.driverService.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(drivers))
}

func (h *Handler) updateDriver(c *gin.Context) {
	var req struct {
		Name  *string `json:"name"`
		Phone *string `json:"phone"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	driver, err := h.driverService.Update(c.Request.Context(), c.Param("id"), service.UpdateDriverInput{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(driver))
}

func (h *Handler) deleteDriver(c *gin.Context) {
	if err := h.driverService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listDriverRoutes(c *gin.Context) {
	filter := repository.RouteListFilter{}
	filter.Page, filter.Limit = pageParams(c)

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := model.RouteStatus(raw)
		filter.Status = &status
	}

	routes, total, err := h.driverService.Routes(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginatedResponse(routeViews(routes), total, filter.Page, filter.Limit))
}

// listMyRoutes serves the calling driver's own assignments.
func (h *Handler) listMyRoutes(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}
	if principal.DriverID == nil {
		c.JSON(http.StatusForbidden, errorResponse("driver account required"))
		return
	}

	filter := repository.RouteListFilter{}
	filter.Page, filter.Limit = pageParams(c)

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := model.RouteStatus(raw)
		filter.Status = &status
	}

	routes, total, err := h.driverService.Routes(c.Request.Context(), principal.DriverID.String(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginatedResponse(routeViews(routes), total, filter.Page, filter.Limit))
}

// Route handlers

func (h *Handler) createRoute(c *gin.Context) {
	var req struct {
		RouteNumber       string `json:"route_number" binding:"required"`
		DriverID          string `json:"driver_id" binding:"required"`
		TruckID           string `json:"truck_id" binding:"required"`
		Description       string `json:"description" binding:"required"`
		DepartureLocation string `json:"departure_location" binding:"required"`
		ArrivalLocation   string `json:"arrival_location" binding:"required"`
		PlannedDistance   int64  `json:"planned_distance"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	route, err := h.routeService.Create(c.Request.Context(), service.CreateRouteInput{
		RouteNumber:       req.RouteNumber,
		DriverID:          req.DriverID,
		TruckID:           req.TruckID,
		Description:       req.Description,
		DepartureLocation: req.DepartureLocation,
		ArrivalLocation:   req.ArrivalLocation,
		PlannedDistance:   req.PlannedDistance,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(service.NewRouteView(route)))
}

func (h *Handler) getRoute(c *gin.Context) {
	route, err := h.routeService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(service.NewRouteView(route)))
}

func (h *Handler) listRoutes(c *gin.Context) {
	filter := repository.RouteListFilter{}
	filter.Page, filter.Limit = pageParams(c)

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := model.RouteStatus(raw)
		filter.Status = &status
	}
	if raw := strings.TrimSpace(c.Query("driver_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid driver_id"))
			return
		}
		filter.DriverID = &id
	}
	if raw := strings.TrimSpace(c.Query("truck_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid truck_id"))
			return
		}
		filter.TruckID = &id
	}

	routes, total, err := h.routeService.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginatedResponse(routeViews(routes), total, filter.Page, filter.Limit))
}

func (h *Handler) updateRoute(c *gin.Context) {
	var req struct {
		Description       *string  `json:"description"`
		DepartureLocation *string  `json:"departure_location"`
		ArrivalLocation   *string  `json:"arrival_location"`
		PlannedDistance   *int64   `json:"planned_distance"`
		FuelVolume        *float64 `json:"fuel_volume"`
		FuelCost          *float64 `json:"fuel_cost"`
		VehicleRemarks    *string  `json:"vehicle_remarks"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	route, err := h.routeService.Update(c.Request.Context(), c.Param("id"), service.UpdateRouteInput{
		Description:       req.Description,
		DepartureLocation: req.DepartureLocation,
		ArrivalLocation:   req.ArrivalLocation,
		PlannedDistance:   req.PlannedDistance,
		FuelVolume:        req.FuelVolume,
		FuelCost:          req.FuelCost,
		VehicleRemarks:    req.VehicleRemarks,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(service.NewRouteView(route)))
}

func (h *Handler) deleteRoute(c *gin.Context) {
	if err := h.routeService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) startRoute(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		DepartureOdometer *int64 `json:"departure_odometer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	route, err := h.routeService.Start(c.Request.Context(), principal, c.Param("id"), *req.DepartureOdometer)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(service.NewRouteView(route)))
}

func (h *Handler) completeRoute(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		ArrivalOdometer *int64  `json:"arrival_odometer" binding:"required"`
		FuelVolume      float64 `json:"fuel_volume"`
		FuelCost        float64 `json:"fuel_cost"`
		VehicleRemarks  string  `json:"vehicle_remarks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	route, err := h.routeService.Complete(c.Request.Context(), principal, c.Param("id"), service.CompleteRouteInput{
		ArrivalOdometer: *req.ArrivalOdometer,
		FuelVolume:      req.FuelVolume,
		FuelCost:        req.FuelCost,
		VehicleRemarks:  req.VehicleRemarks,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(service.NewRouteView(route)))
}

func (h *Handler) cancelRoute(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// reason is optional; an empty or absent body is fine
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Reason = ""
	}

	route, err := h.routeService.Cancel(c.Request.Context(), principal, c.Param("id"), req.Reason)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(service.NewRouteView(route)))
}

// Maintenance handlers

func (h *Handler) createMaintenanceRule(c *gin.Context) {
	var req struct {
		MaintenanceType  string  `json:"maintenance_type" binding:"required"`
		VehicleType      string  `json:"vehicle_type" binding:"required"`
		VehicleID        string  `json:"vehicle_id" binding:"required"`
		IntervalDistance int64   `json:"interval_distance" binding:"required"`
		IntervalMonths   int     `json:"interval_months"`
		EstimatedCost    float64 `json:"estimated_cost"`
		Description      string  `json:"description"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	vehicleType, err := parseVehicleType(req.VehicleType)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	rule, err := h.maintenanceService.CreateRule(c.Request.Context(), service.CreateRuleInput{
		MaintenanceType:  model.MaintenanceType(req.MaintenanceType),
		VehicleType:      vehicleType,
		VehicleID:        req.VehicleID,
		IntervalDistance: req.IntervalDistance,
		IntervalMonths:   req.IntervalMonths,
		EstimatedCost:    req.EstimatedCost,
		Description:      req.Description,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(rule))
}

func (h *Handler) getMaintenanceRule(c *gin.Context) {
	rule, err := h.maintenanceService.GetRule(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(rule))
}

func (h *Handler) listMaintenanceRules(c *gin.Context) {
	filter := repository.RuleListFilter{}
	filter.Page, filter.Limit = pageParams(c)

	if raw := strings.TrimSpace(c.Query("vehicle_type")); raw != "" {
		vehicleType, err := parseVehicleType(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		filter.VehicleType = &vehicleType
	}
	if raw := strings.TrimSpace(c.Query("is_active")); raw != "" {
		isActive := raw == "true"
		filter.IsActive = &isActive
	}

	rules, total, err := h.maintenanceService.ListRules(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginatedResponse(rules, total, filter.Page, filter.Limit))
}

func (h *Handler) updateMaintenanceRule(c *gin.Context) {
	var req struct {
		IntervalDistance *int64   `json:"interval_distance"`
		IntervalMonths   *int     `json:"interval_months"`
		EstimatedCost    *float64 `json:"estimated_cost"`
		Description      *string  `json:"description"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	rule, err := h.maintenanceService.UpdateRule(c.Request.Context(), c.Param("id"), service.UpdateRuleInput{
		IntervalDistance: req.IntervalDistance,
		IntervalMonths:   req.IntervalMonths,
		EstimatedCost:    req.EstimatedCost,
		Description:      req.Description,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(rule))
}

func (h *Handler) toggleMaintenanceRule(c *gin.Context) {
	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	rule, err := h.maintenanceService.ToggleRule(c.Request.Context(), c.Param("id"), *req.IsActive)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(rule))
}

func (h *Handler) deleteMaintenanceRule(c *gin.Context) {
	if err := h.maintenanceService.DeleteRule(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) createMaintenanceRecord(c *gin.Context) {
	var req struct {
		VehicleType     string  `json:"vehicle_type" binding:"required"`
		VehicleID       string  `json:"vehicle_id" binding:"required"`
		MaintenanceType string  `json:"maintenance_type" binding:"required"`
		Date            string  `json:"date"`
		Odometer        int64   `json:"odometer"`
		Cost            float64 `json:"cost"`
		PerformedBy     string  `json:"performed_by" binding:"required"`
		Workshop        string  `json:"workshop"`
		Description     string  `json:"description" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	vehicleType, err := parseVehicleType(req.VehicleType)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	var date time.Time
	if req.Date != "" {
		date, err = parseTime(req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid date"))
			return
		}
	}

	record, err := h.maintenanceService.CreateRecord(c.Request.Context(), service.CreateRecordInput{
		VehicleType:           vehicleType,
		VehicleID:             req.VehicleID,
		MaintenanceType:       model.MaintenanceType(req.MaintenanceType),
		Date:                  date,
		OdometerAtMaintenance: req.Odometer,
		Cost:                  req.Cost,
		PerformedBy:           req.PerformedBy,
		Workshop:              req.Workshop,
		Description:           req.Description,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(record))
}

func (h *Handler) getMaintenanceRecord(c *gin.Context) {
	record, err := h.maintenanceService.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) listMaintenanceRecords(c *gin.Context) {
	filter := repository.RecordListFilter{}
	filter.Page, filter.Limit = pageParams(c)

	if raw := strings.TrimSpace(c.Query("vehicle_type")); raw != "" {
		vehicleType, err := parseVehicleType(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		filter.VehicleType = &vehicleType
	}
	if raw := strings.TrimSpace(c.Query("vehicle_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle_id"))
			return
		}
		filter.VehicleID = &id
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := model.MaintenanceRecordStatus(raw)
		filter.Status = &status
	}

	records, total, err := h.maintenanceService.ListRecords(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginatedResponse(records, total, filter.Page, filter.Limit))
}

func (h *Handler) completeMaintenanceRecord(c *gin.Context) {
	var req struct {
		Cost  *float64 `json:"cost"`
		Notes string   `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Cost = nil
		req.Notes = ""
	}

	record, err := h.maintenanceService.CompleteRecord(c.Request.Context(), c.Param("id"), service.CompleteRecordInput{
		Cost:  req.Cost,
		Notes: req.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) cancelMaintenanceRecord(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Reason = ""
	}

	record, err := h.maintenanceService.CancelRecord(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) deleteMaintenanceRecord(c *gin.Context) {
	if err := h.maintenanceService.DeleteRecord(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) checkMaintenanceDue(c *gin.Context) {
	vehicleType, err := parseVehicleType(c.Param("vehicleType"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	check, err := h.maintenanceService.CheckDue(c.Request.Context(), vehicleType, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(check))
}

// Helpers

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidOdometer),
		errors.Is(err, service.ErrMissingDeparture):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrDuplicateKey),
		errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrVehicleUnavailable):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func (h *Handler) vehicleRefParam(c *gin.Context, vehicleType model.VehicleType) (model.VehicleRef, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle id"))
		return model.VehicleRef{}, false
	}
	return model.VehicleRef{Type: vehicleType, ID: id}, true
}

func parseVehicleType(raw string) (model.VehicleType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "truck":
		return model.VehicleTypeTruck, nil
	case "trailer":
		return model.VehicleTypeTrailer, nil
	default:
		return "", errors.New("vehicle type must be truck or trailer")
	}
}

func routeViews(routes []model.Route) []service.RouteView {
	views := make([]service.RouteView, 0, len(routes))
	for i := range routes {
		views = append(views, service.NewRouteView(&routes[i]))
	}
	return views
}

func pageParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"success": true,
		"data":    data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"success": false,
		"error":   message,
	}
}

func paginatedResponse(data interface{}, total int64, page, limit int) gin.H {
	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return gin.H{
		"success": true,
		"data":    data,
		"pagination": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
			"pages": pages,
		},
	}
}

func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, errors.New("invalid time format")
}
