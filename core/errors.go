package core

import "errors"

// Common errors
var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrInvalidVehicle  = errors.New("invalid vehicle record")
	ErrCatalogClosed   = errors.New("catalog is closed")
)
