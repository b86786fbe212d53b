package driver

import (
	"errors"
	"strings"
	"testing"

	"github.com/borealdb/borealdb-go/backend"
)

func TestErrStatementClosed(t *testing.T) {
	err := ErrStatementClosed("Execute")

	if err.Code != ErrCodeStatementClosed {
		t.Errorf("expected code %s, got %s", ErrCodeStatementClosed, err.Code)
	}
	if err.SQLState != SQLStateInvalidCursorState {
		t.Errorf("expected SQL state %s, got %s", SQLStateInvalidCursorState, err.SQLState)
	}
	if !strings.Contains(err.Message, "Execute") {
		t.Errorf("message must name the operation, got %q", err.Message)
	}
	if len(err.StackTrace) == 0 {
		t.Error("expected a captured stack trace")
	}
}

func TestErrFeatureUnsupported(t *testing.T) {
	err := ErrFeatureUnsupported("named cursors")

	if err.Code != ErrCodeFeatureUnsupported {
		t.Errorf("expected code %s, got %s", ErrCodeFeatureUnsupported, err.Code)
	}
	if err.SQLState != SQLStateFeatureNotSupported {
		t.Errorf("expected SQL state %s, got %s", SQLStateFeatureNotSupported, err.SQLState)
	}
}

func TestNewBackendErrorPreservesDetail(t *testing.T) {
	berr := backend.NewError("division by zero", "22012", 100051, "col_a")
	err := NewBackendError(berr)

	if err.Code != ErrCodeBackend {
		t.Errorf("expected code %s, got %s", ErrCodeBackend, err.Code)
	}
	if err.SQLState != "22012" {
		t.Errorf("expected SQL state 22012, got %s", err.SQLState)
	}
	if err.VendorCode != 100051 {
		t.Errorf("expected vendor code 100051, got %d", err.VendorCode)
	}
	if len(err.Params) != 1 || err.Params[0] != "col_a" {
		t.Errorf("expected params [col_a], got %v", err.Params)
	}
	if !errors.Is(err, berr) {
		t.Error("wrapped error must unwrap to the backend error")
	}
}

func TestNewBackendErrorPassesThroughSQLError(t *testing.T) {
	orig := ErrFeatureUnsupported("x")
	if got := NewBackendError(orig); got != orig {
		t.Error("an existing *SQLError must pass through unchanged")
	}
}

func TestFormatError(t *testing.T) {
	err := ErrStatementClosed("Cancel")

	plain := err.FormatError(false)
	if !strings.HasPrefix(plain, ErrCodeStatementClosed+": ") {
		t.Errorf("expected plain CODE: message format, got %q", plain)
	}
	if strings.Contains(plain, "stack_trace") {
		t.Error("plain format must not include the stack trace")
	}

	debug := err.FormatError(true)
	if !strings.Contains(debug, "stack_trace") {
		t.Error("debug format must include the stack trace")
	}
	if !strings.Contains(debug, "timestamp") {
		t.Error("debug format must include the timestamp")
	}
}

func TestSQLErrorJSONShape(t *testing.T) {
	err := ErrFeatureUnsupported("statement pooling")
	s := err.Error()
	if !strings.Contains(s, `"code":"FEATURE_UNSUPPORTED"`) {
		t.Errorf("expected JSON code field, got %q", s)
	}
	if !strings.Contains(s, `"sql_state":"0A000"`) {
		t.Errorf("expected JSON sql_state field, got %q", s)
	}
}

func TestBatchUpdateErrorLiftsFirstFailure(t *testing.T) {
	first := NewBackendError(backend.NewError("bad row", "23505", 100072))
	counts := []int64{1, ExecuteFailed, SuccessNoInfo}
	err := NewBatchUpdateError(first, counts)

	if err.Code != ErrCodeBatchPartialFailure {
		t.Errorf("expected code %s, got %s", ErrCodeBatchPartialFailure, err.Code)
	}
	if err.SQLState != "23505" || err.VendorCode != 100072 {
		t.Errorf("aggregate must lift SQL state and vendor code, got %s/%d", err.SQLState, err.VendorCode)
	}
	if len(err.Counts) != 3 {
		t.Errorf("expected 3 counts, got %d", len(err.Counts))
	}
	if !errors.Is(err, first) {
		t.Error("aggregate must unwrap to the first failure")
	}
}

func TestTruncateSQL(t *testing.T) {
	short := "select 1"
	if got := truncateSQL(short); got != short {
		t.Errorf("short SQL must pass through, got %q", got)
	}

	long := strings.Repeat("x", 500)
	got := truncateSQL(long)
	if len(got) != 128+len("...") {
		t.Errorf("expected truncation to 128 chars plus ellipsis, got %d", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("truncated SQL must end with an ellipsis")
	}
}
