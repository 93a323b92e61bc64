package models

import (
	"errors"
)

var (
	ErrNoRecord           = errors.New("models: no matching record found")
	ErrInvalidCredentials = errors.New("models: invalid credentials")
	ErrDuplicateEmail     = errors.New("models: duplicate email")

	ErrInvoiceNotFound       = errors.New("invoice not found")
	ErrWorkOrderNotFound     = errors.New("work order not found")
	ErrBuildingNotFound      = errors.New("building not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrRemoteInvoiceMissing  = errors.New("no remote invoice")
	ErrStatusConflict        = errors.New("invoice status changed concurrently")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrActiveSessionExists   = errors.New("already have an active session")
	ErrNoActiveSession       = errors.New("no active session")
	ErrNotAssignedToBuilding = errors.New("not assigned to this building")
	ErrWorkOrderNotCheckable = errors.New("work order is not approved for check-in")
	ErrOutOfRange            = errors.New("too far from the building")
	ErrNoPhotoEvidence       = errors.New("no photo evidence uploaded since check-in")
)
