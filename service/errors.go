package service

import (
	"errors"
	"fmt"
)

var (
	ErrFailedValidation     = errors.New("failed validation")
	ErrRecordNotFound       = errors.New("record not found")
	ErrEditConflict         = errors.New("edit conflict")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrContentTooLarge      = errors.New("content too large")
	ErrBadRequest           = errors.New("bad request")
	ErrNotPermitted         = errors.New("not permitted")
)

// ErrPolicyViolation is the base error for every business-rule rejection.
// Each concrete rule wraps it, so callers can match the family with
// errors.Is(err, ErrPolicyViolation) or a specific rule with its own
// sentinel.
var ErrPolicyViolation = errors.New("policy violation")

var (
	ErrUserBlocked              = fmt.Errorf("%w: user account is blocked", ErrPolicyViolation)
	ErrEmailNotVerified         = fmt.Errorf("%w: user email address has not been verified", ErrPolicyViolation)
	ErrPendingLoan              = fmt.Errorf("%w: user has a pending loan", ErrPolicyViolation)
	ErrLoanLimitReached         = fmt.Errorf("%w: user already has the maximum number of active loans", ErrPolicyViolation)
	ErrBookUnavailable          = fmt.Errorf("%w: book has no copies available", ErrPolicyViolation)
	ErrBookReserved             = fmt.Errorf("%w: book is reserved for another user", ErrPolicyViolation)
	ErrLoanFinalized            = fmt.Errorf("%w: loan has already been finalized", ErrPolicyViolation)
	ErrRenewalBlocked           = fmt.Errorf("%w: book has a pending reservation", ErrPolicyViolation)
	ErrBookNotReservable        = fmt.Errorf("%w: book still has copies available", ErrPolicyViolation)
	ErrReservationLimitReached  = fmt.Errorf("%w: user already has the maximum number of active reservations", ErrPolicyViolation)
	ErrInvalidReservationStatus = fmt.Errorf("%w: status must be one of active, finalized or expired", ErrPolicyViolation)
)

// failedValidation turns a validation error map into an error carrying the
// offending key and message, wrapped in ErrFailedValidation so handlers can
// match the family.
func (s *service) failedValidation(errorMap map[string]string) error {
	err := ErrFailedValidation
	for k, v := range errorMap {
		err = fmt.Errorf("%w: %q %s", err, k, v)
	}
	return err
}
