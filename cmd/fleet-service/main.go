package main

import (
	"fmt"
	"os"

	"fleet-service/internal/auth"
	"fleet-service/internal/config"
	"fleet-service/internal/db"
	httphandler "fleet-service/internal/http"
	"fleet-service/internal/http/middleware"
	"fleet-service/internal/logger"
	"fleet-service/internal/repository"
	"fleet-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	truckRepo := repository.NewTruckRepository(database)
	trailerRepo := repository.NewTrailerRepository(database)
	tireRepo := repository.NewTireRepository(database)
	driverRepo := repository.NewDriverRepository(database)
	routeRepo := repository.NewRouteRepository(database)
	maintenanceRepo := repository.NewMaintenanceRepository(database)

	vehicleService := service.NewVehicleService(truckRepo, trailerRepo, routeRepo)
	tireService := service.NewTireService(tireRepo, truckRepo, trailerRepo)
	routeService := service.NewRouteService(database, routeRepo, truckRepo, trailerRepo, tireRepo, driverRepo)
	driverService := service.NewDriverService(driverRepo, routeRepo)
	maintenanceService := service.NewMaintenanceService(maintenanceRepo, truckRepo, trailerRepo)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(vehicleService, tireService, routeService, driverService, maintenanceService, appLogger)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting fleet service")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}
