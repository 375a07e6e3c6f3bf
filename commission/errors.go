/*
errors.go - Error types for the commission engine

ERROR CATEGORIES:
  1. Input errors - negative/non-finite amounts, rates outside [0, 1]
  2. Batch errors - which sale in an aggregation failed
  3. Status errors - unknown status strings, illegal lead transitions

All of them are client errors: the caller sent something out of domain.
*/
package commission

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is the sentinel behind every *InvalidInputError.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownStatus is returned when a status string is not part of the enum.
	ErrUnknownStatus = errors.New("unknown status")

	// ErrInvalidTransition is returned for a lead status change the lifecycle forbids.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// InvalidInputError describes a value outside its domain.
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %s: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// SaleError reports which sale aborted an aggregation.
type SaleError struct {
	Index  int
	SaleID SaleID
	Err    error
}

func (e *SaleError) Error() string {
	if e.SaleID == "" {
		return fmt.Sprintf("sale #%d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("sale #%d (%s): %v", e.Index, e.SaleID, e.Err)
}

func (e *SaleError) Unwrap() error {
	return e.Err
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrUnknownStatus) ||
		errors.Is(err, ErrInvalidTransition)
}
