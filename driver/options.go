package driver

import (
	"time"

	"github.com/borealdb/borealdb-go/logging"
	"github.com/borealdb/borealdb-go/telemetry"
)

// CursorType describes how a result set may be traversed.
type CursorType int

const (
	// CursorForwardOnly allows rows to be consumed strictly in order.
	CursorForwardOnly CursorType = iota
	// CursorScrollInsensitive allows arbitrary repositioning over a snapshot.
	CursorScrollInsensitive
	// CursorScrollSensitive allows repositioning with live data visibility.
	CursorScrollSensitive
)

func (c CursorType) String() string {
	switch c {
	case CursorForwardOnly:
		return "forward_only"
	case CursorScrollInsensitive:
		return "scroll_insensitive"
	case CursorScrollSensitive:
		return "scroll_sensitive"
	default:
		return "unknown"
	}
}

// Concurrency describes whether a result set may be updated in place.
type Concurrency int

const (
	// ConcurrencyReadOnly forbids in-place updates through the result set.
	ConcurrencyReadOnly Concurrency = iota
	// ConcurrencyUpdatable allows in-place updates through the result set.
	ConcurrencyUpdatable
)

func (c Concurrency) String() string {
	switch c {
	case ConcurrencyReadOnly:
		return "read_only"
	case ConcurrencyUpdatable:
		return "updatable"
	default:
		return "unknown"
	}
}

// Holdability describes whether result sets survive a transaction commit.
type Holdability int

const (
	// CloseOnCommit closes result sets when the transaction commits. The
	// only holdability this driver accepts.
	CloseOnCommit Holdability = iota
	// HoldOverCommit keeps result sets open across commits. Rejected at
	// statement construction.
	HoldOverCommit
)

func (h Holdability) String() string {
	switch h {
	case CloseOnCommit:
		return "close_on_commit"
	case HoldOverCommit:
		return "hold_over_commit"
	default:
		return "unknown"
	}
}

// FetchDirection hints the order rows will be consumed in.
type FetchDirection int

const (
	// FetchForward is the only direction this driver accepts.
	FetchForward FetchDirection = iota
	// FetchReverse is rejected on forward-only statements.
	FetchReverse
	// FetchUnknown is rejected on forward-only statements.
	FetchUnknown
)

func (d FetchDirection) String() string {
	switch d {
	case FetchForward:
		return "forward"
	case FetchReverse:
		return "reverse"
	case FetchUnknown:
		return "unknown_direction"
	default:
		return "unknown"
	}
}

// GeneratedKeyMode selects whether the backend should surface generated keys.
type GeneratedKeyMode int

const (
	// NoGeneratedKeys is the only mode this driver accepts.
	NoGeneratedKeys GeneratedKeyMode = iota
	// ReturnGeneratedKeys is rejected with a feature-unsupported error.
	ReturnGeneratedKeys
)

// Default tuning values for newly constructed statements.
const (
	// DefaultFetchSize is the row prefetch hint applied to new statements.
	DefaultFetchSize = 50
	// MaxAllowedFieldSize is the only value SetMaxFieldSize accepts (16 MB).
	MaxAllowedFieldSize = 16 * 1024 * 1024
)

// StatementOptions tunes statement construction. The zero value of every
// field falls back to the corresponding default.
type StatementOptions struct {
	// Logger receives statement lifecycle events. Defaults to the package
	// default JSON logger.
	Logger logging.Logger

	// Telemetry receives reports about unsupported API usage and SQL
	// exceptions. Defaults to a reporter that discards out-of-band events.
	Telemetry *telemetry.Reporter

	// FetchSize is the initial row prefetch hint. Defaults to
	// DefaultFetchSize.
	FetchSize int

	// QueryTimeout bounds individual executions. Zero means no limit.
	QueryTimeout time.Duration

	// MaxRows caps the number of rows a result set yields. Zero means no
	// limit.
	MaxRows int64
}

// DefaultStatementOptions returns the options applied when the caller
// passes nil.
func DefaultStatementOptions() *StatementOptions {
	return &StatementOptions{
		FetchSize: DefaultFetchSize,
	}
}
