package domain

import (
	"errors"
)

var (
	ErrInternal = errors.New("internal error")

	// * Data errors.
	ErrDataNotFound    = errors.New("data not found")
	ErrConflictingData = errors.New("data conflicts with existing data in unique column")

	// * Communication errors.
	ErrBadRequest = errors.New("error parsing request")

	// * Authority errors.
	ErrTokenCreation              = errors.New("error creating token")
	ErrExpiredToken               = errors.New("access token has expired")
	ErrInvalidToken               = errors.New("access token is invalid")
	ErrEmptyAuthorizationHeader   = errors.New("authorization header is not provided")
	ErrInvalidAuthorizationHeader = errors.New("authorization header format is invalid")
	ErrInvalidAuthorizationType   = errors.New("authorization type is not supported")
	ErrUnauthorized               = errors.New("caller is unauthorized to access the resource")

	// * Provider errors. Both are transient: the reconciler absorbs them and
	// retries on the next pass instead of failing the order.
	ErrProviderUnavailable = errors.New("blockchain provider unavailable")
	ErrRateLimitExceeded   = errors.New("provider rate limit exceeded")

	// * Payment errors.
	ErrInvalidAddress      = errors.New("invalid wallet address")
	ErrUnsupportedCurrency = errors.New("currency is not supported")
	ErrMissingVendorWallet = errors.New("vendor wallet address is required")
	ErrStaleRate           = errors.New("no exchange rate available")
	ErrOrderBadAmount      = errors.New("order amount must be positive")
)
