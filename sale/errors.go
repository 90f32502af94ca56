package sale

import "errors"

// Errors. Every rejected precondition aborts the whole operation with zero
// state mutation.
var (
	// Authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// Schedule.
	ErrSaleClosed         = errors.New("sale closed")
	ErrLockedPeriodActive = errors.New("locked period active")
	ErrInvalidSchedule    = errors.New("invalid schedule")

	// Validation.
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidDestination   = errors.New("invalid destination")
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// Capacity.
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrWalletLimitExceeded   = errors.New("wallet limit exceeded")
	ErrInsufficientClaim     = errors.New("insufficient claim")

	// Funds.
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrNoFunds               = errors.New("no funds available")
)
