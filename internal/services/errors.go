package services

import "errors"

// Common service errors
var (
	ErrNotFound        = errors.New("record not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidState    = errors.New("invalid state transition")
	ErrDuplicate       = errors.New("duplicate record")
	ErrAlreadyPaid     = errors.New("installment is already paid")
	ErrPlanExists      = errors.New("payment plan already generated")
	ErrVoided          = errors.New("installment has been voided")
)
