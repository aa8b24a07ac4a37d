// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geoloc

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrInvalidImage means the primary image is malformed or unreadable.
// It is the only provider-side condition that is fatal to a resolve call.
var ErrInvalidImage = errors.New("invalid or unreadable image")

// ProviderError represents an unexpected failure in a provider adapter.
// Expected absence (no GPS tag, zero search results) is not an error.
type ProviderError struct {
	Type    ErrorType
	Source  SourceKind
	Message string
	Err     error
}

// ErrorType classifies provider failures.
type ErrorType int

const (
	// ErrorTypeUnknown is an unclassified failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit means the provider throttled us.
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded means the provider quota ran out.
	ErrorTypeQuotaExceeded
	// ErrorTypeTimeout means the provider did not answer in time.
	ErrorTypeTimeout
	// ErrorTypeNotFound means the provider endpoint rejected the query.
	ErrorTypeNotFound
	// ErrorTypeInvalidRequest means we sent a request the provider rejects.
	ErrorTypeInvalidRequest
	// ErrorTypeNetworkError is a transport-level failure.
	ErrorTypeNetworkError
)

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsRateLimitError checks whether the error is a rate-limit failure.
func IsRateLimitError(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Type == ErrorTypeRateLimit
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429")
}

// IsQuotaExceededError checks whether the error is a quota failure.
func IsQuotaExceededError(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Type == ErrorTypeQuotaExceeded
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "over_query_limit") ||
		strings.Contains(errStr, "quota exceeded")
}

// IsTimeoutError checks whether the error is a timeout.
func IsTimeoutError(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Type == ErrorTypeTimeout
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// ClassifyHTTPError maps an HTTP status code from an external provider to a
// ProviderError type.
func ClassifyHTTPError(source SourceKind, statusCode int) *ProviderError {
	switch statusCode {
	case http.StatusTooManyRequests: // 429
		return &ProviderError{
			Type:    ErrorTypeRateLimit,
			Source:  source,
			Message: "rate limit reached",
		}
	case http.StatusForbidden: // 403
		return &ProviderError{
			Type:    ErrorTypeQuotaExceeded,
			Source:  source,
			Message: "quota exceeded or access denied",
		}
	case http.StatusBadRequest: // 400
		return &ProviderError{
			Type:    ErrorTypeInvalidRequest,
			Source:  source,
			Message: "invalid request",
		}
	case http.StatusNotFound: // 404
		return &ProviderError{
			Type:    ErrorTypeNotFound,
			Source:  source,
			Message: "endpoint not found",
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &ProviderError{
			Type:    ErrorTypeNetworkError,
			Source:  source,
			Message: fmt.Sprintf("service unavailable (status %d)", statusCode),
		}
	default:
		return &ProviderError{
			Type:    ErrorTypeUnknown,
			Source:  source,
			Message: fmt.Sprintf("HTTP error %d", statusCode),
		}
	}
}
