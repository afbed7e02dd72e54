// Package device models the managed switch: VLANs, ports, interfaces and
// static routes, read and written through either the interactive CLI session
// or the SNMP backend. The device's running configuration is the single
// source of truth; every read goes back to the device.
package device

import (
	"errors"
	"fmt"
)

// ErrorCode classifies device operation failures.
type ErrorCode string

const (
	ErrCodeInvalidName    ErrorCode = "INVALID_NAME"
	ErrCodeInvalidAddress ErrorCode = "INVALID_ADDRESS"
	ErrCodeInvalidPort    ErrorCode = "INVALID_PORT"
	ErrCodeNotConfigured  ErrorCode = "NOT_CONFIGURED"
	ErrCodeAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrCodeParseFailed    ErrorCode = "PARSE_FAILED"
	ErrCodeUnsupported    ErrorCode = "UNSUPPORTED"
	ErrCodeBackendError   ErrorCode = "BACKEND_ERROR"

	// ErrCodeCacheInconsistency flags an operation whose precondition check
	// disagreed with the device: the end state already matched the intent,
	// so the operation counts as a successful convergence, but the caller's
	// view of prior state was wrong and should be audited.
	ErrCodeCacheInconsistency ErrorCode = "CACHE_INCONSISTENCY"
)

// DeviceError is the typed failure for device operations.
type DeviceError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *DeviceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *DeviceError) Unwrap() error {
	return e.Cause
}

func NewDeviceError(code ErrorCode, message string) *DeviceError {
	return &DeviceError{Code: code, Message: message}
}

func NewDeviceErrorWithCause(code ErrorCode, message string, cause error) *DeviceError {
	return &DeviceError{Code: code, Message: message, Cause: cause}
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	var de *DeviceError
	return errors.As(err, &de) && de.Code == code
}

// IsCacheInconsistency reports the one non-fatal outcome: the device already
// matched the intended state. Callers may log and continue.
func IsCacheInconsistency(err error) bool {
	return IsCode(err, ErrCodeCacheInconsistency)
}

func newCacheInconsistency(format string, args ...interface{}) *DeviceError {
	return NewDeviceError(ErrCodeCacheInconsistency, fmt.Sprintf(format, args...))
}
