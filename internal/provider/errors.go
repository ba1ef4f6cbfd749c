package provider

import "github.com/Ckrest/graph-lib/internal/errors"

const (
	// Configuration errors, raised once at construction
	ErrInvalidConfig  = errors.ErrInvalidConfig
	ErrMissingCommand = errors.ErrorCode("provider_missing_command")
	ErrMissingKeyPath = errors.ErrorCode("provider_missing_key_path")
	ErrInvalidPattern = errors.ErrorCode("provider_invalid_pattern")
	ErrInvalidIdent   = errors.ErrorCode("provider_invalid_identifier")
	ErrInvalidMetric  = errors.ErrorCode("provider_invalid_metric")

	// Transient per-cycle errors, retried on the next scheduled cycle
	ErrExecFailed   = errors.ErrProviderExec
	ErrExecTimeout  = errors.ErrProviderTimeout
	ErrQueryFailed  = errors.ErrProviderQuery
	ErrDeviceFailed = errors.ErrorCode("provider_device_query_failed")

	// Parse errors: the single reading is dropped, the cycle continues
	ErrParseFailed = errors.ErrProviderParse
)
