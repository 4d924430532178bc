// Package errors provides the error types used throughout hubsync.
// Every failure mode of a reconciliation run maps to one of the types
// below, so callers can check error kind programmatically instead of
// matching on message text.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Sentinel errors for the hubsync system. Each typed error below
// answers errors.Is for exactly one of these.
var (
	// ErrConfig indicates missing or invalid configuration.
	ErrConfig = errors.New("configuration error")

	// ErrRemoteFetch indicates a failed read from the CRM.
	ErrRemoteFetch = errors.New("remote fetch failed")

	// ErrRemoteUpdate indicates a failed partial update against the CRM.
	ErrRemoteUpdate = errors.New("remote update failed")

	// ErrRemoteCreate indicates a failed record creation against the CRM.
	ErrRemoteCreate = errors.New("remote create failed")

	// ErrRemoteAssociation indicates a failed association batch create.
	ErrRemoteAssociation = errors.New("remote association failed")

	// ErrIntegrity indicates the remote data violates a hard invariant.
	ErrIntegrity = errors.New("data integrity violation")

	// ErrPrecondition indicates an operation was invoked without its
	// required inputs and was refused before any remote call.
	ErrPrecondition = errors.New("precondition failed")
)

// ConfigError represents a configuration error, such as a missing
// API access token.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// FetchError represents a non-success response from a CRM read
// (the company list or the parent search). Body carries the raw
// response text for diagnostics.
type FetchError struct {
	Resource   string // "child companies", "parent company"
	Endpoint   string
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %s", e.Resource, e.Body)
}

// Is implements errors.Is support
func (e *FetchError) Is(target error) bool {
	return target == ErrRemoteFetch
}

// UpdateError represents a non-success response from a partial update.
type UpdateError struct {
	CompanyID  string
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *UpdateError) Error() string {
	return fmt.Sprintf("failed to update parent company %s: %s", e.CompanyID, e.Body)
}

// Is implements errors.Is support
func (e *UpdateError) Is(target error) bool {
	return target == ErrRemoteUpdate
}

// CreateError represents a non-201 response from a record creation.
type CreateError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *CreateError) Error() string {
	return fmt.Sprintf("failed to create parent company: %s", e.Body)
}

// Is implements errors.Is support
func (e *CreateError) Is(target error) bool {
	return target == ErrRemoteCreate
}

// AssociationError represents a non-201 response from the batch
// association create. It names both record ids so a partial fan-out
// failure is attributable to the exact pair that failed.
type AssociationError struct {
	ChildID    string
	ParentID   string
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *AssociationError) Error() string {
	return fmt.Sprintf("failed to associate child company %s with parent company %s: %d - %s",
		e.ChildID, e.ParentID, e.StatusCode, e.Body)
}

// Is implements errors.Is support
func (e *AssociationError) Is(target error) bool {
	return target == ErrRemoteAssociation
}

// IntegrityError indicates more than one parent company matched a
// location id. The remote data is wrong; this is never retried.
type IntegrityError struct {
	LocationID string
	Count      int
}

// Error implements the error interface
func (e *IntegrityError) Error() string {
	return fmt.Sprintf("multiple companies found with Client Company Location ID: %s. Expected only one or zero.", e.LocationID)
}

// Is implements errors.Is support
func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrity
}

// PreconditionError indicates an operation refused to run because a
// required input was absent, before any remote call was issued.
type PreconditionError struct {
	LocationID string
	Message    string
}

// Error implements the error interface
func (e *PreconditionError) Error() string {
	return fmt.Sprintf("no child companies found for Client Parent Company ID: %s. Cannot infer name.", e.LocationID)
}

// Is implements errors.Is support
func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}

// TransportError wraps a transport-level fault (timeout, connection
// failure) with the operation that was in flight. The underlying
// error propagates unmodified through Unwrap.
type TransportError struct {
	Operation string
	Endpoint  string
	Err       error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s (%s): %v", e.Operation, e.Endpoint, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsConfig checks if an error is a configuration error
func IsConfig(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IsRemoteFetch checks if an error is a remote fetch error
func IsRemoteFetch(err error) bool {
	return errors.Is(err, ErrRemoteFetch)
}

// IsRemoteUpdate checks if an error is a remote update error
func IsRemoteUpdate(err error) bool {
	return errors.Is(err, ErrRemoteUpdate)
}

// IsRemoteCreate checks if an error is a remote create error
func IsRemoteCreate(err error) bool {
	return errors.Is(err, ErrRemoteCreate)
}

// IsRemoteAssociation checks if an error is a remote association error
func IsRemoteAssociation(err error) bool {
	return errors.Is(err, ErrRemoteAssociation)
}

// IsIntegrity checks if an error is a data integrity violation
func IsIntegrity(err error) bool {
	return errors.Is(err, ErrIntegrity)
}

// IsPrecondition checks if an error is a precondition failure
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrPrecondition)
}

// WrapTransport wraps an error as a TransportError
func WrapTransport(operation, endpoint string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Operation: operation, Endpoint: endpoint, Err: err}
}
