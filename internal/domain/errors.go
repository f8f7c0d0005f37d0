package domain

import (
	"fmt"
	"strings"
)

// errors.go defines domain-specific error types.
type domainErr struct {
	message string
}

// Error returns the error message.
func (e domainErr) Error() string {
	return e.message
}

// NotFoundErr represents an error when a requested entity is not found.
type NotFoundErr struct {
	domainErr
}

// NewNotFoundErr creates a new NotFoundErr with the given message.
func NewNotFoundErr(message string) *NotFoundErr {
	return &NotFoundErr{
		domainErr: domainErr{message: message},
	}
}

// ValidationErr represents an error when validation fails.
type ValidationErr struct {
	domainErr
}

// NewValidationErr creates a new ValidationErr with the given message.
func NewValidationErr(message string) *ValidationErr {
	return &ValidationErr{
		domainErr: domainErr{message: message},
	}
}

// NotOwnerErr represents an error when an actor lacks rights over a listing.
type NotOwnerErr struct {
	domainErr
}

// NewNotOwnerErr creates a new NotOwnerErr with the given message.
func NewNotOwnerErr(message string) *NotOwnerErr {
	return &NotOwnerErr{
		domainErr: domainErr{message: message},
	}
}

// InvalidTransitionErr represents a lifecycle transition that is not legal from
// the listing's current status, or one that lost a concurrent race and found
// the persisted status already moved.
type InvalidTransitionErr struct {
	Current   ListingStatus
	Requested ListingStatus
}

// NewInvalidTransitionErr creates a new InvalidTransitionErr reporting both statuses.
func NewInvalidTransitionErr(current, requested ListingStatus) *InvalidTransitionErr {
	return &InvalidTransitionErr{Current: current, Requested: requested}
}

// Error returns the error message.
func (e *InvalidTransitionErr) Error() string {
	return fmt.Sprintf("transition from %s to %s is not allowed", e.Current, e.Requested)
}

// IncompleteListingErr represents a failed publish validation gate. It carries
// every violated rule, not just the first one.
type IncompleteListingErr struct {
	Violations []string
}

// NewIncompleteListingErr creates a new IncompleteListingErr with the given violations.
func NewIncompleteListingErr(violations []string) *IncompleteListingErr {
	return &IncompleteListingErr{Violations: violations}
}

// Error returns the error message with the full violation list.
func (e *IncompleteListingErr) Error() string {
	return "listing is not ready to publish: " + strings.Join(e.Violations, "; ")
}

// ProviderUnavailableErr represents an embedding provider failure. It is
// recoverable: the background sweep retries it and it never fails the
// triggering user action.
type ProviderUnavailableErr struct {
	domainErr
}

// NewProviderUnavailableErr creates a new ProviderUnavailableErr with the given message.
func NewProviderUnavailableErr(message string) *ProviderUnavailableErr {
	return &ProviderUnavailableErr{
		domainErr: domainErr{message: message},
	}
}

// ProviderTimeoutErr represents an embedding provider call that exceeded its
// deadline. Recoverable, same retry policy as ProviderUnavailableErr.
type ProviderTimeoutErr struct {
	domainErr
}

// NewProviderTimeoutErr creates a new ProviderTimeoutErr with the given message.
func NewProviderTimeoutErr(message string) *ProviderTimeoutErr {
	return &ProviderTimeoutErr{
		domainErr: domainErr{message: message},
	}
}
