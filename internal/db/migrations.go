package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`CREATE TABLE IF NOT EXISTS trucks (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		registration_number VARCHAR(32) NOT NULL UNIQUE,
		model VARCHAR(64) NOT NULL,
		year INTEGER NOT NULL,
		purchase_date TIMESTAMPTZ NOT NULL,
		current_odometer BIGINT NOT NULL DEFAULT 0,
		fuel_capacity DOUBLE PRECISION NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'Available',
		attached_trailer_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE TABLE IF NOT EXISTS trailers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		registration_number VARCHAR(32) NOT NULL UNIQUE,
		brand VARCHAR(64) NOT NULL,
		year INTEGER NOT NULL,
		max_capacity DOUBLE PRECISION NOT NULL,
		purchase_date TIMESTAMPTZ NOT NULL,
		current_odometer BIGINT NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL DEFAULT 'Available',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(128) NOT NULL,
		license_number VARCHAR(32) NOT NULL UNIQUE,
		phone VARCHAR(32),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE TABLE IF NOT EXISTS tires (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		serial_number VARCHAR(64) NOT NULL UNIQUE,
		size VARCHAR(32) NOT NULL,
		brand VARCHAR(64) NOT NULL,
		purchase_date TIMESTAMPTZ NOT NULL,
		installation_date TIMESTAMPTZ,
		installation_odometer BIGINT NOT NULL DEFAULT 0,
		current_odometer BIGINT NOT NULL DEFAULT 0,
		wear_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL DEFAULT 'Good',
		vehicle_type VARCHAR(10) NOT NULL,
		vehicle_id UUID NOT NULL,
		retired BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_tires_vehicle ON tires (vehicle_type, vehicle_id);`,
	`CREATE TABLE IF NOT EXISTS routes (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		route_number VARCHAR(32) NOT NULL UNIQUE,
		driver_id UUID NOT NULL REFERENCES drivers(id),
		truck_id UUID NOT NULL REFERENCES trucks(id),
		description TEXT NOT NULL,
		departure_location VARCHAR(128) NOT NULL,
		arrival_location VARCHAR(128) NOT NULL,
		planned_distance BIGINT NOT NULL DEFAULT 0,
		departure_odometer BIGINT,
		arrival_odometer BIGINT,
		fuel_volume DOUBLE PRECISION NOT NULL DEFAULT 0,
		fuel_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		vehicle_remarks TEXT,
		status VARCHAR(20) NOT NULL DEFAULT 'Planned',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_routes_driver ON routes (driver_id);`,
	`CREATE INDEX IF NOT EXISTS idx_routes_truck ON routes (truck_id);`,
	`CREATE INDEX IF NOT EXISTS idx_routes_status ON routes (status);`,
	`CREATE TABLE IF NOT EXISTS maintenance_rules (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		maintenance_type VARCHAR(32) NOT NULL,
		vehicle_type VARCHAR(10) NOT NULL,
		vehicle_id UUID NOT NULL,
		interval_distance BIGINT NOT NULL,
		interval_months INTEGER NOT NULL DEFAULT 0,
		estimated_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		description TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_maintenance_rules_vehicle ON maintenance_rules (vehicle_type, vehicle_id);`,
	`CREATE TABLE IF NOT EXISTS maintenance_records (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		vehicle_type VARCHAR(10) NOT NULL,
		vehicle_id UUID NOT NULL,
		maintenance_type VARCHAR(32) NOT NULL,
		date TIMESTAMPTZ NOT NULL,
		odometer_at_maintenance BIGINT NOT NULL DEFAULT 0,
		cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		performed_by VARCHAR(128) NOT NULL,
		workshop VARCHAR(128),
		description TEXT NOT NULL,
		notes TEXT,
		status VARCHAR(20) NOT NULL DEFAULT 'Scheduled',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_maintenance_records_vehicle ON maintenance_records (vehicle_type, vehicle_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
