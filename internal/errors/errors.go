// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrMarketContextUnavailable = errors.New("market context unavailable")
	ErrInvalidAccountSize       = errors.New("invalid account size")
	ErrMarketClosed             = errors.New("market is closed")
	ErrEmptyChain               = errors.New("option chain is empty")
	ErrStoreUnavailable         = errors.New("recommendation store unavailable")
)

// ValidationError reports a malformed or out-of-domain argument to a
// pure function. It always names the offending argument and is raised
// synchronously; callers treat it as a programming or data defect,
// never something to retry.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ConfigError reports an inconsistent configuration detected at
// construction time, such as ranking weights that do not sum to 1.0.
type ConfigError struct {
	Section string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration [%s]: %s", e.Section, e.Message)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(section, message string) *ConfigError {
	return &ConfigError{
		Section: section,
		Message: message,
	}
}

// CollaboratorError wraps a failure from an external market-data
// collaborator. The engine applies no retry policy; the error is
// propagated unchanged to the caller of GetRecommendations.
type CollaboratorError struct {
	Collaborator string
	Operation    string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("collaborator error [%s] %s: %v", e.Collaborator, e.Operation, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// NewCollaboratorError creates a new CollaboratorError.
func NewCollaboratorError(collaborator, operation string, err error) *CollaboratorError {
	return &CollaboratorError{
		Collaborator: collaborator,
		Operation:    operation,
		Err:          err,
	}
}

// RiskError represents a risk limit violation with its diagnostics.
type RiskError struct {
	Rule    string
	Current float64
	Limit   float64
	Message string
}

func (e *RiskError) Error() string {
	return fmt.Sprintf("risk violation [%s]: %s (current: %.4f, limit: %.4f)", e.Rule, e.Message, e.Current, e.Limit)
}

// NewRiskError creates a new RiskError.
func NewRiskError(rule string, current, limit float64, message string) *RiskError {
	return &RiskError{
		Rule:    rule,
		Current: current,
		Limit:   limit,
		Message: message,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
