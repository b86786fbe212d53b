package backend

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Error is a failure reported by the query executor. SQL state, vendor code,
// and message parameters are preserved verbatim so the driver can surface
// them unchanged.
type Error struct {
	Message    string                 `json:"message"`
	SQLState   string                 `json:"sql_state,omitempty"`
	VendorCode int                    `json:"vendor_code,omitempty"`
	Params     []interface{}          `json:"params,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
}

// NewError creates a backend error with the given SQL state and vendor code.
func NewError(message, sqlState string, vendorCode int, params ...interface{}) *Error {
	return &Error{
		Message:    message,
		SQLState:   sqlState,
		VendorCode: vendorCode,
		Params:     params,
	}
}

// WithCause attaches the underlying error and returns e.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Details) > 0 {
		detailsJSON, _ := json.Marshal(e.Details)
		return fmt.Sprintf("[%s %d] %s (details: %s)", e.SQLState, e.VendorCode, e.Message, string(detailsJSON))
	}
	return fmt.Sprintf("[%s %d] %s", e.SQLState, e.VendorCode, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *Error) Unwrap() error {
	return e.Cause
}
