package benchmarks

import (
	"context"
	"testing"

	"github.com/borealdb/borealdb-go/backend"
	"github.com/borealdb/borealdb-go/backend/mock"
	"github.com/borealdb/borealdb-go/driver"
	"github.com/borealdb/borealdb-go/logging"
)

func newBenchStatement(b *testing.B, exec backend.Executor) *driver.Statement {
	b.Helper()
	opts := driver.DefaultStatementOptions()
	opts.Logger = logging.NewNoopLogger()

	stmt, err := driver.NewStatement(nil, mock.NewSession(), exec,
		driver.CursorForwardOnly, driver.ConcurrencyReadOnly, driver.CloseOnCommit, opts)
	if err != nil {
		b.Fatalf("failed to create statement: %v", err)
	}
	return stmt
}

// BenchmarkStatementConstruction measures statement setup/teardown time.
func BenchmarkStatementConstruction(b *testing.B) {
	b.ReportAllocs()
	opts := driver.DefaultStatementOptions()
	opts.Logger = logging.NewNoopLogger()

	for i := 0; i < b.N; i++ {
		stmt, err := driver.NewStatement(nil, mock.NewSession(), mock.NewExecutor(),
			driver.CursorForwardOnly, driver.ConcurrencyReadOnly, driver.CloseOnCommit, opts)
		if err != nil {
			b.Fatalf("failed to create statement: %v", err)
		}
		if err := stmt.Close(); err != nil {
			b.Fatalf("failed to close statement: %v", err)
		}
	}
}

// BenchmarkExecuteQuery measures the query path over the mock executor.
func BenchmarkExecuteQuery(b *testing.B) {
	b.ReportAllocs()
	exec := mock.NewExecutor().WithResults(mock.NewQueryResult())
	stmt := newBenchStatement(b, exec)
	defer stmt.Close()

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rs, err := stmt.ExecuteQuery(ctx, "select 1")
		if err != nil {
			b.Fatalf("query failed: %v", err)
		}
		if err := rs.Close(); err != nil {
			b.Fatalf("close failed: %v", err)
		}
	}
}

// BenchmarkExecuteUpdate measures the update path over the mock executor.
func BenchmarkExecuteUpdate(b *testing.B) {
	b.ReportAllocs()
	exec := mock.NewExecutor().WithResults(mock.NewUpdateResult(1))
	stmt := newBenchStatement(b, exec)
	defer stmt.Close()

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := stmt.ExecuteUpdate(ctx, "update t set a = 1"); err != nil {
			b.Fatalf("update failed: %v", err)
		}
	}
}

// BenchmarkExecuteBatch measures batch accumulation and execution.
func BenchmarkExecuteBatch(b *testing.B) {
	b.ReportAllocs()
	exec := mock.NewExecutor().WithResults(mock.NewUpdateResult(1))
	stmt := newBenchStatement(b, exec)
	defer stmt.Close()

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := 0; j < 10; j++ {
			if err := stmt.AddBatch("insert into t values (1)"); err != nil {
				b.Fatalf("add batch failed: %v", err)
			}
		}
		if _, err := stmt.ExecuteBatch(ctx); err != nil {
			b.Fatalf("batch failed: %v", err)
		}
		if err := stmt.ClearBatch(); err != nil {
			b.Fatalf("clear batch failed: %v", err)
		}
	}
}
