package domain

import "errors"

var (
	// ErrConfiguration is fatal at startup (data directory cannot be resolved).
	ErrConfiguration = errors.New("configuration error")

	// ErrCustomerNotFound maps to 404.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrCustomerAmbiguous maps to 409.
	ErrCustomerAmbiguous = errors.New("customer identity is ambiguous")

	// ErrNotFound covers missing resources other than the customer itself
	// (no active accounts, no card products). Maps to 404.
	ErrNotFound = errors.New("not found")

	// ErrValidation maps to 400.
	ErrValidation = errors.New("validation error")

	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamTimeout     = errors.New("upstream timeout")
)
