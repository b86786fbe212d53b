// Package backend defines the contracts the driver consumes from the
// BorealDB query executor. The executor owns the wire protocol, result chunk
// streaming, and session negotiation; the driver only navigates the handles
// it returns.
package backend

import (
	"context"

	"github.com/borealdb/borealdb-go/telemetry"
)

// CallMode tells the executor which driver entry point issued a statement,
// so it can apply the matching result semantics.
type CallMode int

const (
	CallExecute CallMode = iota
	CallExecuteQuery
	CallExecuteUpdate
)

// String returns the string representation of the call mode.
func (m CallMode) String() string {
	switch m {
	case CallExecute:
		return "EXECUTE"
	case CallExecuteQuery:
		return "EXECUTE_QUERY"
	case CallExecuteUpdate:
		return "EXECUTE_UPDATE"
	default:
		return "UNKNOWN"
	}
}

// ResultCloseMode controls what happens to already-produced results when the
// driver advances to the next result of a multi-statement execution.
type ResultCloseMode int

const (
	CloseCurrentResult ResultCloseMode = iota
	KeepCurrentResult
	CloseAllResults
)

// String returns the string representation of the close mode.
func (m ResultCloseMode) String() string {
	switch m {
	case CloseCurrentResult:
		return "CLOSE_CURRENT_RESULT"
	case KeepCurrentResult:
		return "KEEP_CURRENT_RESULT"
	case CloseAllResults:
		return "CLOSE_ALL_RESULTS"
	default:
		return "UNKNOWN"
	}
}

// StatementType is the executor's classification of an executed statement.
type StatementType int

const (
	StatementTypeUnknown StatementType = iota
	StatementTypeQuery
	StatementTypeDML
	StatementTypeDDL
)

// String returns the string representation of the statement type.
func (t StatementType) String() string {
	switch t {
	case StatementTypeQuery:
		return "QUERY"
	case StatementTypeDML:
		return "DML"
	case StatementTypeDDL:
		return "DDL"
	default:
		return "UNKNOWN"
	}
}

// GeneratesResultSet reports whether statements of this type produce row
// data. Unknown statements are treated as row-producing; the legacy behavior
// is to surface anything unclassified as a result set.
func (t StatementType) GeneratesResultSet() bool {
	return t == StatementTypeQuery || t == StatementTypeUnknown
}

// NoUpdateCount is returned by ResultHandle.UpdateCount for statements that
// produce row data rather than an update count.
const NoUpdateCount int64 = -1

// Binding is a named parameter binding supplied with a statement.
type Binding struct {
	// Type is the warehouse type the value should be bound as.
	Type string
	// Value is the bound value, already serialized by the caller.
	Value interface{}
}

// ResultHandle is the executor's cursor and metadata over one statement's
// output, consumed by the driver before wrapping.
type ResultHandle interface {
	// QueryID returns the warehouse-assigned identifier of the query that
	// produced this result.
	QueryID() string

	// StatementType returns the executor's classification of the statement.
	StatementType() StatementType

	// UpdateCount computes the number of affected rows from the result
	// metadata, or NoUpdateCount for row-producing statements.
	UpdateCount() (int64, error)

	// Close releases the handle's resources on the executor.
	Close() error
}

// Executor is the per-statement handle onto the warehouse query executor.
// All methods may fail with *Error carrying the backend SQL state, vendor
// code, and message parameters.
type Executor interface {
	// Execute runs sql with the given bindings and returns the handle over
	// its first (or only) result.
	Execute(ctx context.Context, sql string, bindings map[string]Binding, mode CallMode) (ResultHandle, error)

	// GetMoreResults advances to the next pending result of a
	// multi-statement execution, disposing of prior results per mode. It
	// reports whether the next result carries row data.
	GetMoreResults(mode ResultCloseMode) (bool, error)

	// ResultHandle returns the handle the executor is currently positioned
	// on, or nil when no results are pending.
	ResultHandle() ResultHandle

	// Cancel asks the backend to abort the in-flight query. Cancellation is
	// asynchronous: the executing call may still return normally.
	Cancel() error

	// Close releases the executor handle.
	Close() error

	// AddProperty stages a statement-level property without contacting the
	// backend; it is sent with the next execution.
	AddProperty(name string, value interface{}) error

	// HasChildren reports whether the last execution was a multi-statement
	// batch with child statements.
	HasChildren() bool
}

// Session is the connection-scoped session handle the driver consults for
// execution policy and telemetry.
type Session interface {
	// ExecuteReturnCountForDML reports whether the session is configured to
	// surface row counts (rather than result sets) for DML run through the
	// generic execute path.
	ExecuteReturnCountForDML() bool

	// TelemetryClient returns the session's in-band telemetry channel, or
	// nil when the session cannot provide one.
	TelemetryClient() telemetry.Channel
}
