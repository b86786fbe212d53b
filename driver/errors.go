package driver

import (
	"fmt"
	"runtime"
	"time"

	json "github.com/goccy/go-json"

	"github.com/borealdb/borealdb-go/backend"
)

// Error codes in the driver taxonomy.
const (
	ErrCodeStatementClosed          = "STATEMENT_CLOSED"
	ErrCodeFeatureUnsupported       = "FEATURE_UNSUPPORTED"
	ErrCodeUnsupportedStatementType = "UNSUPPORTED_STATEMENT_TYPE"
	ErrCodeBatchPartialFailure      = "BATCH_PARTIAL_FAILURE"
	ErrCodeBackend                  = "BACKEND_ERROR"
	ErrCodeInvalidParameter         = "INVALID_PARAMETER"
)

// SQL states attached to driver-originated errors.
const (
	SQLStateFeatureNotSupported = "0A000"
	SQLStateInvalidCursorState  = "24000"
)

// NoVendorCode marks driver-originated errors with no backend vendor code.
const NoVendorCode = -1

// SQLError represents a driver-facing SQL error. Backend failures pass
// through with SQL state, vendor code, and message parameters preserved
// verbatim.
type SQLError struct {
	Code       string                 `json:"code"`
	Type       string                 `json:"type"`
	Message    string                 `json:"message"`
	SQLState   string                 `json:"sql_state,omitempty"`
	VendorCode int                    `json:"vendor_code,omitempty"`
	Params     []interface{}          `json:"params,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace []string               `json:"stack_trace,omitempty"`
	Timestamp  time.Time              `json:"timestamp,omitempty"`
}

// Error implements the error interface. Returns compact JSON; use
// FormatError for flexible formatting based on debug mode.
func (e *SQLError) Error() string {
	errorData := map[string]interface{}{
		"code":    e.Code,
		"type":    e.Type,
		"message": e.Message,
	}

	if e.SQLState != "" {
		errorData["sql_state"] = e.SQLState
	}

	if e.VendorCode != NoVendorCode && e.VendorCode != 0 {
		errorData["vendor_code"] = e.VendorCode
	}

	if len(e.Details) > 0 {
		errorData["details"] = e.Details
	}

	if e.Cause != nil {
		if cerr, ok := e.Cause.(*SQLError); ok {
			errorData["cause"] = map[string]interface{}{
				"code":    cerr.Code,
				"type":    cerr.Type,
				"message": cerr.Message,
			}
		} else {
			errorData["cause"] = map[string]interface{}{
				"message": e.Cause.Error(),
			}
		}
	}

	b, _ := json.Marshal(errorData)
	return string(b)
}

// FormatError formats the error based on debug mode.
// When debugMode=false: returns simple "CODE: message" format.
// When debugMode=true: returns full JSON with stack trace and timestamp.
func (e *SQLError) FormatError(debugMode bool) string {
	if !debugMode {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s (caused by: %s)", e.Code, e.Message, e.Cause.Error())
		}
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}

	errorData := map[string]interface{}{
		"code":    e.Code,
		"type":    e.Type,
		"message": e.Message,
	}

	if e.SQLState != "" {
		errorData["sql_state"] = e.SQLState
	}

	if e.VendorCode != NoVendorCode && e.VendorCode != 0 {
		errorData["vendor_code"] = e.VendorCode
	}

	if len(e.Params) > 0 {
		errorData["params"] = e.Params
	}

	if len(e.Details) > 0 {
		errorData["details"] = e.Details
	}

	if e.Cause != nil {
		errorData["cause"] = map[string]interface{}{"message": e.Cause.Error()}
	}

	if len(e.StackTrace) > 0 {
		errorData["stack_trace"] = e.StackTrace
	}

	if !e.Timestamp.IsZero() {
		errorData["timestamp"] = e.Timestamp.Format(time.RFC3339Nano)
	}

	b, _ := json.MarshalIndent(errorData, "", "  ")
	return string(b)
}

// Unwrap returns the underlying cause error for errors.Is and errors.As
// compatibility.
func (e *SQLError) Unwrap() error {
	return e.Cause
}

// StackFrames returns the stack captured when the error was constructed.
func (e *SQLError) StackFrames() []string {
	return e.StackTrace
}

// ErrStatementClosed creates an error for operations on a closed statement.
func ErrStatementClosed(operation string) *SQLError {
	return &SQLError{
		Code:       ErrCodeStatementClosed,
		Type:       "STATEMENT_ERROR",
		Message:    fmt.Sprintf("%s called on a closed statement", operation),
		SQLState:   SQLStateInvalidCursorState,
		VendorCode: NoVendorCode,
		Details: map[string]interface{}{
			"operation": operation,
		},
		StackTrace: captureStackTrace(),
		Timestamp:  time.Now(),
	}
}

// ErrFeatureUnsupported creates an error for a capability this driver does
// not offer.
func ErrFeatureUnsupported(feature string) *SQLError {
	return &SQLError{
		Code:       ErrCodeFeatureUnsupported,
		Type:       "STATEMENT_ERROR",
		Message:    fmt.Sprintf("%s is not supported", feature),
		SQLState:   SQLStateFeatureNotSupported,
		VendorCode: NoVendorCode,
		Details: map[string]interface{}{
			"feature": feature,
		},
		StackTrace: captureStackTrace(),
		Timestamp:  time.Now(),
	}
}

// ErrUnsupportedStatementType creates an error for a statement shape
// incompatible with the execution method it was submitted through.
func ErrUnsupportedStatementType(sql string) *SQLError {
	return &SQLError{
		Code:       ErrCodeUnsupportedStatementType,
		Type:       "STATEMENT_ERROR",
		Message:    fmt.Sprintf("statement type is not supported in this execution API: %s", truncateSQL(sql)),
		SQLState:   SQLStateFeatureNotSupported,
		VendorCode: NoVendorCode,
		Details: map[string]interface{}{
			"sql": truncateSQL(sql),
		},
		StackTrace: captureStackTrace(),
		Timestamp:  time.Now(),
	}
}

// ErrInvalidParameter creates an error for a setter called with a value
// outside its accepted range.
func ErrInvalidParameter(name string, value interface{}) *SQLError {
	return &SQLError{
		Code:       ErrCodeInvalidParameter,
		Type:       "STATEMENT_ERROR",
		Message:    fmt.Sprintf("invalid value for %s: %v", name, value),
		VendorCode: NoVendorCode,
		Details: map[string]interface{}{
			"parameter": name,
			"value":     fmt.Sprintf("%v", value),
		},
		StackTrace: captureStackTrace(),
		Timestamp:  time.Now(),
	}
}

// NewBackendError wraps a failure reported by the query executor, preserving
// its SQL state, vendor code, and parameters.
func NewBackendError(err error) *SQLError {
	if serr, ok := err.(*SQLError); ok {
		return serr
	}
	sqlErr := &SQLError{
		Code:       ErrCodeBackend,
		Type:       "BACKEND_ERROR",
		Message:    err.Error(),
		VendorCode: NoVendorCode,
		Cause:      err,
		StackTrace: captureStackTrace(),
		Timestamp:  time.Now(),
	}
	if berr, ok := err.(*backend.Error); ok {
		sqlErr.Message = berr.Message
		sqlErr.SQLState = berr.SQLState
		sqlErr.VendorCode = berr.VendorCode
		sqlErr.Params = berr.Params
		sqlErr.Cause = berr
	}
	return sqlErr
}

// BatchUpdateError aggregates a partially failed batch execution. Counts has
// one entry per batch entry in insertion order; failed entries hold
// ExecuteFailed. Cause is the first failure encountered.
type BatchUpdateError struct {
	SQLError
	Counts []int64 `json:"counts"`
}

// NewBatchUpdateError creates the aggregate error for a batch where at least
// one entry failed, lifting SQL state and vendor code from the first
// failure.
func NewBatchUpdateError(first error, counts []int64) *BatchUpdateError {
	batchErr := &BatchUpdateError{
		SQLError: SQLError{
			Code:       ErrCodeBatchPartialFailure,
			Type:       "BATCH_ERROR",
			Message:    "one or more batch entries failed",
			VendorCode: NoVendorCode,
			Cause:      first,
			Details: map[string]interface{}{
				"entries": len(counts),
			},
			StackTrace: captureStackTrace(),
			Timestamp:  time.Now(),
		},
		Counts: counts,
	}
	if serr, ok := first.(*SQLError); ok {
		batchErr.SQLState = serr.SQLState
		batchErr.VendorCode = serr.VendorCode
	}
	return batchErr
}

// Error implements the error interface for BatchUpdateError.
func (e *BatchUpdateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %s)", e.Code, e.Message, e.Cause.Error())
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// truncateSQL caps SQL text included in error messages.
func truncateSQL(sql string) string {
	const maxLen = 128
	if len(sql) <= maxLen {
		return sql
	}
	return sql[:maxLen] + "..."
}

// captureStackTrace captures the current stack trace for error reporting.
func captureStackTrace() []string {
	const maxDepth = 32
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(3, pcs) // Skip captureStackTrace, the error constructor, and runtime.Callers

	frames := make([]string, 0, n)
	callersFrames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := callersFrames.Next()

		frames = append(frames, fmt.Sprintf("%s (%s:%d)",
			frame.Function,
			frame.File,
			frame.Line,
		))

		if !more {
			break
		}
	}

	return frames
}

// FormatError is a helper to format any error with debug mode support.
func FormatError(err error, debugMode bool) string {
	if err == nil {
		return ""
	}

	type debugFormatter interface {
		FormatError(bool) string
	}

	if formatter, ok := err.(debugFormatter); ok {
		return formatter.FormatError(debugMode)
	}

	return err.Error()
}
