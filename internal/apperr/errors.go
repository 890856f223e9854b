package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a looked up record does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError is a problem the shopper or operator can fix by changing
// their input. It is shown to the user and never logged as a fault.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// CheckoutError is raised by billing/shipping, tax or payment handlers.
type CheckoutError struct {
	Step   string
	Reason string
	Err    error
}

func (e *CheckoutError) Error() string {
	if e.Step == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Step, e.Reason)
}

func (e *CheckoutError) Unwrap() error { return e.Err }

func Checkout(step, reason string) error {
	return &CheckoutError{Step: step, Reason: reason}
}

// ConfigurationError marks a discount that must not be stored.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + e.Message
}

func Configuration(format string, args ...any) error {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsCheckout(err error) bool {
	var target *CheckoutError
	return errors.As(err, &target)
}

func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}
