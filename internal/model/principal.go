package model

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleDriver Role = "Driver"
)

// Principal is the authenticated caller as supplied by the identity
// service token. DriverID is set only for driver accounts.
type Principal struct {
	UserID   uuid.UUID
	Role     Role
	DriverID *uuid.UUID
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsDriver() bool {
	return p.Role == RoleDriver
}
