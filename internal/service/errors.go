package service

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrInvalidArgument wraps every validation failure
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrCustomerNotFound is returned for unknown customer ids
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrTierNotFound is returned for unknown or deleted tier ids
	ErrTierNotFound = errors.New("tier not found")
	// ErrDuplicatePhone is returned when a phone number is already registered
	ErrDuplicatePhone = errors.New("phone number already registered")
	// ErrConcurrentUpdate is returned when a customer's assignment kept
	// conflicting with another writer after a retry. Callers may try again.
	ErrConcurrentUpdate = errors.New("concurrent tier update")
)

// Postgres error codes and constraints treated as write conflicts
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"

	openAssignmentConstraint = "uq_customer_tiers_open"
	customerPhoneConstraint  = "customers_phone_key"
)

// isConflict reports whether err is a write conflict on a customer's
// assignment that is worth retrying from committed state.
func isConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case codeSerializationFailure, codeDeadlockDetected:
		return true
	case codeUniqueViolation:
		return pqErr.Constraint == openAssignmentConstraint
	}
	return false
}

func isDuplicatePhone(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) &&
		pqErr.Code == codeUniqueViolation &&
		pqErr.Constraint == customerPhoneConstraint
}
