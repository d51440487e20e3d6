package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy roots. Specific errors wrap exactly one root so callers can
// classify with errors.Is without knowing every sentinel.
var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("resource not found")
	ErrConcurrency = errors.New("concurrent modification")
	ErrPersistence = errors.New("persistence failure")
)

// Not-found errors
var (
	ErrCustomerNotFound    = fmt.Errorf("%w: customer", ErrNotFound)
	ErrMembershipNotFound  = fmt.Errorf("%w: membership", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("%w: point transaction", ErrNotFound)
	ErrModuleNotFound      = fmt.Errorf("%w: module", ErrNotFound)
)

// Validation errors
var (
	ErrDescriptionRequired   = fmt.Errorf("%w: description is required", ErrValidation)
	ErrDescriptionTooLong    = fmt.Errorf("%w: description exceeds maximum length", ErrValidation)
	ErrZeroPoints            = fmt.Errorf("%w: points must not be zero", ErrValidation)
	ErrPointsGranularity     = fmt.Errorf("%w: points must be a multiple of 0.25", ErrValidation)
	ErrInvalidCategory       = fmt.Errorf("%w: unknown category", ErrValidation)
	ErrInvalidDate           = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrDateAfterContractEnd  = fmt.Errorf("%w: date is after contract end", ErrValidation)
	ErrInvalidTier           = fmt.Errorf("%w: unknown tier", ErrValidation)
	ErrInvalidDiscount       = fmt.Errorf("%w: discount must be between 0 and 100", ErrValidation)
	ErrNegativeBonus         = fmt.Errorf("%w: bonus points must not be negative", ErrValidation)
	ErrNegativeMonthlyPoints = fmt.Errorf("%w: monthly points must not be negative", ErrValidation)
	ErrNegativePrice         = fmt.Errorf("%w: monthly price must not be negative", ErrValidation)
	ErrContractWindow        = fmt.Errorf("%w: contract end before contract start", ErrValidation)
	ErrNameRequired          = fmt.Errorf("%w: name is required", ErrValidation)
	ErrNameTooLong           = fmt.Errorf("%w: name exceeds maximum length", ErrValidation)
	ErrInvalidModuleStatus   = fmt.Errorf("%w: unknown module status", ErrValidation)
)

// Validation constants
const (
	MaxDescriptionLength = 255
	MaxNameLength        = 255
)
