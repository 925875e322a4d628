package escrow

import "errors"

var (
	// configuration errors
	ErrAlreadyInitialized = errors.New("contract already initialized")
	ErrUninitialized      = errors.New("contract not initialized")
	ErrInvalidConfig      = errors.New("invalid contract configuration")

	// validation errors
	ErrInvalidParty        = errors.New("user and beneficiary must be different accounts")
	ErrInsufficientDeposit = errors.New("insufficient deposit")
	ErrInvalidDeadline     = errors.New("invalid deadline extension")
	ErrAmountOverflow      = errors.New("amount overflows contract balance")
	ErrHabitSettled        = errors.New("habit deposit already distributed")

	// permission errors
	ErrPermissionDenied = errors.New("permission denied")

	// range errors
	ErrNoHabits        = errors.New("account has no habits")
	ErrIndexOutOfRange = errors.New("habit index out of range")
)

// IsConfigError reports whether err belongs to the configuration class.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrAlreadyInitialized) || errors.Is(err, ErrUninitialized) || errors.Is(err, ErrInvalidConfig)
}

// IsValidationError reports whether err rejects malformed input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidParty) ||
		errors.Is(err, ErrInsufficientDeposit) ||
		errors.Is(err, ErrInvalidDeadline) ||
		errors.Is(err, ErrAmountOverflow) ||
		errors.Is(err, ErrHabitSettled)
}

// IsRangeError reports whether err refers to a missing habit or habit list.
func IsRangeError(err error) bool {
	return errors.Is(err, ErrNoHabits) || errors.Is(err, ErrIndexOutOfRange)
}
