package llm

import (
	"errors"
	"fmt"
)

// Provider error codes, shared by the validator and the orchestrator.
const (
	CodeInvalidKey              = "INVALID_KEY"
	CodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	CodeRateLimited             = "RATE_LIMITED"
	CodeNetworkError            = "NETWORK_ERROR"
	CodeValidationFailed        = "VALIDATION_FAILED"
)

// ProviderError is an upstream provider failure with a stable code.
type ProviderError struct {
	StatusCode int
	Code       string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("llm: %s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("llm: %s", e.Code)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func codeForStatus(status int) string {
	switch status {
	case 401:
		return CodeInvalidKey
	case 403:
		return CodeInsufficientPermissions
	case 429:
		return CodeRateLimited
	default:
		return CodeValidationFailed
	}
}

// CodeOf extracts the provider error code, or VALIDATION_FAILED for
// non-provider errors.
func CodeOf(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return CodeValidationFailed
}
