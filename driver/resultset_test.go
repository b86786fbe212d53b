package driver

import (
	"context"
	"testing"

	"github.com/borealdb/borealdb-go/backend/mock"
)

func TestResultSetSelfCloseDeregisters(t *testing.T) {
	exec := mock.NewExecutor().EnqueueExecution(mock.NewQueryResult())
	stmt := newTestStatement(t, exec, mock.NewSession())
	defer stmt.Close()

	rs, err := stmt.ExecuteQuery(context.Background(), "select 1")
	if err != nil {
		t.Fatalf("ExecuteQuery failed: %v", err)
	}
	if n, _ := stmt.OpenResultSetCount(); n != 1 {
		t.Fatalf("expected 1 open result set, got %d", n)
	}

	if err := rs.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !rs.IsClosed() {
		t.Error("expected result set to report closed")
	}
	if n, _ := stmt.OpenResultSetCount(); n != 0 {
		t.Errorf("expected 0 open result sets after self-close, got %d", n)
	}

	current, err := stmt.ResultSet()
	if err != nil {
		t.Fatalf("ResultSet failed: %v", err)
	}
	if current != nil {
		t.Error("statement must drop its current result pointer on self-close")
	}
}

func TestResultSetCloseIsIdempotent(t *testing.T) {
	handle := mock.NewQueryResult()
	exec := mock.NewExecutor().EnqueueExecution(handle)
	stmt := newTestStatement(t, exec, mock.NewSession())
	defer stmt.Close()

	rs, err := stmt.ExecuteQuery(context.Background(), "select 1")
	if err != nil {
		t.Fatalf("ExecuteQuery failed: %v", err)
	}

	if err := rs.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := rs.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if handle.CloseCalls() != 1 {
		t.Errorf("expected 1 handle close, got %d", handle.CloseCalls())
	}
}

func TestResultSetInheritsStatementModes(t *testing.T) {
	exec := mock.NewExecutor().EnqueueExecution(mock.NewQueryResult())
	stmt := newTestStatement(t, exec, mock.NewSession())
	defer stmt.Close()

	rs, err := stmt.ExecuteQuery(context.Background(), "select 1")
	if err != nil {
		t.Fatalf("ExecuteQuery failed: %v", err)
	}

	if rs.CursorType() != CursorForwardOnly {
		t.Errorf("expected forward-only cursor, got %v", rs.CursorType())
	}
	if rs.Concurrency() != ConcurrencyReadOnly {
		t.Errorf("expected read-only concurrency, got %v", rs.Concurrency())
	}
	if rs.Holdability() != CloseOnCommit {
		t.Errorf("expected close-on-commit, got %v", rs.Holdability())
	}
	if rs.Statement() != stmt {
		t.Error("result set must reference its owning statement")
	}
}
