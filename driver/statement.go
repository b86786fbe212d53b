// Package driver implements the statement lifecycle layer of the BorealDB
// client: statement construction and teardown, the execute family of entry
// points, batch accumulation, multi-result navigation, and the tuning
// surface. The wire protocol lives behind the backend.Executor contract.
package driver

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/borealdb/borealdb-go/backend"
	"github.com/borealdb/borealdb-go/logging"
	"github.com/borealdb/borealdb-go/telemetry"
)

// Statement-level property directive. Recognized on the generic Execute
// entry point only, where matching text is handled inside the driver and
// never reaches the executor as SQL.
const (
	setPropertyDirective = "set-db-property"
	minSetPropertyLen    = 20
)

// StatementOwner is the connection-side registry a statement deregisters
// from when it is closed directly rather than through the owner.
type StatementOwner interface {
	RemoveStatement(*Statement)
}

// Statement drives one warehouse statement through its lifecycle. A
// statement tracks every result set it has produced and closes whatever is
// still open when it is torn down. Statements are safe for concurrent use,
// though executions themselves are serialized by the backend executor.
type Statement struct {
	owner StatementOwner
	sess  backend.Session
	exec  backend.Executor

	logger    logging.Logger
	telemetry *telemetry.Reporter

	cursorType  CursorType
	concurrency Concurrency
	holdability Holdability

	mu             sync.Mutex
	closed         bool
	openResultSets map[*ResultSet]struct{}
	resultSet      *ResultSet
	updateCount    int64
	queryID        string
	batchQueryIDs  []string
	batch          []BatchEntry
	warnings       []Warning

	maxRows          int64
	fetchSize        int
	fetchDirection   FetchDirection
	queryTimeout     time.Duration
	escapeProcessing bool
}

// NewStatement creates a statement bound to a backend executor. Requests for
// cursor, concurrency, or holdability modes this driver does not offer fail
// here, before anything is sent to the backend, and are reported through
// telemetry. owner and sess may be nil.
func NewStatement(owner StatementOwner, sess backend.Session, exec backend.Executor,
	cursorType CursorType, concurrency Concurrency, holdability Holdability,
	opts *StatementOptions) (*Statement, error) {

	if opts == nil {
		opts = DefaultStatementOptions()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	reporter := opts.Telemetry
	if reporter == nil {
		reporter = telemetry.NewReporter(nil, logger)
	}

	if cursorType != CursorForwardOnly {
		err := ErrFeatureUnsupported(fmt.Sprintf("result set cursor type %s", cursorType))
		reporter.LogFeatureNotSupported(sess, err)
		return nil, err
	}
	if concurrency != ConcurrencyReadOnly {
		err := ErrFeatureUnsupported(fmt.Sprintf("result set concurrency %s", concurrency))
		reporter.LogFeatureNotSupported(sess, err)
		return nil, err
	}
	if holdability != CloseOnCommit {
		err := ErrFeatureUnsupported(fmt.Sprintf("result set holdability %s", holdability))
		reporter.LogFeatureNotSupported(sess, err)
		return nil, err
	}
	if exec == nil {
		return nil, ErrInvalidParameter("executor", nil)
	}

	fetchSize := opts.FetchSize
	if fetchSize <= 0 {
		fetchSize = DefaultFetchSize
	}

	s := &Statement{
		owner:          owner,
		sess:           sess,
		exec:           exec,
		logger:         logger,
		telemetry:      reporter,
		cursorType:     cursorType,
		concurrency:    concurrency,
		holdability:    holdability,
		openResultSets: make(map[*ResultSet]struct{}),
		updateCount:    NoUpdateCount,
		fetchSize:      fetchSize,
		maxRows:        opts.MaxRows,
		queryTimeout:   opts.QueryTimeout,
		fetchDirection: FetchForward,
	}

	s.logger.Debug("statement created",
		logging.String("cursor_type", cursorType.String()),
		logging.String("concurrency", concurrency.String()),
		logging.String("holdability", holdability.String()),
	)

	return s, nil
}

// Execute runs sql through the generic entry point and reports whether the
// first result carries row data. When it does, the result set is available
// through ResultSet; otherwise the affected-row count is available through
// UpdateCount. Non-row results are only surfaced as counts when the session
// asks for counts on DML or the execution produced child statements;
// everything else is exposed as a result set.
//
// The legacy "set-db-property" directive is recognized on this entry point
// only; the other execute methods pass such text to the backend as SQL.
func (s *Statement) Execute(ctx context.Context, sql string) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrStatementClosed("Execute")
	}
	s.mu.Unlock()

	trimmed := strings.TrimSpace(sql)
	if len(trimmed) >= minSetPropertyLen &&
		strings.HasPrefix(strings.ToLower(trimmed), setPropertyDirective) {
		// handled inside the driver; the current result set and update
		// count are left untouched
		return false, s.executeSetProperty(trimmed)
	}

	handle, err := s.executeInternal(ctx, sql, backend.CallExecute, "Execute")
	if err != nil {
		return false, err
	}

	returnCount := s.sess != nil && s.sess.ExecuteReturnCountForDML()
	if !handle.StatementType().GeneratesResultSet() && (returnCount || s.exec.HasChildren()) {
		count, cerr := handle.UpdateCount()
		closeErr := handle.Close()
		s.retireActiveResultSet()
		if cerr != nil {
			return false, NewBackendError(cerr)
		}
		if closeErr != nil {
			s.logger.Warn("failed to close consumed result handle", logging.Error("error", closeErr))
		}
		s.setUpdateCount(count)
		return false, nil
	}

	s.registerResultSet(handle)
	return true, nil
}

// ExecuteQuery runs sql expecting row data and returns its result set. A
// statement that does not produce rows fails with an unsupported statement
// type error.
func (s *Statement) ExecuteQuery(ctx context.Context, sql string) (*ResultSet, error) {
	handle, err := s.executeInternal(ctx, sql, backend.CallExecuteQuery, "ExecuteQuery")
	if err != nil {
		return nil, err
	}
	if !handle.StatementType().GeneratesResultSet() {
		if closeErr := handle.Close(); closeErr != nil {
			s.logger.Warn("failed to close consumed result handle", logging.Error("error", closeErr))
		}
		return nil, ErrUnsupportedStatementType(sql)
	}

	return s.registerResultSet(handle), nil
}

// ExecuteUpdate runs sql expecting an affected-row count. Row-producing
// statements and file transfer commands are rejected. The statement's active
// result set, if any, is demoted to the tracked set whether or not the
// execution succeeds; it stays open until closed explicitly.
func (s *Statement) ExecuteUpdate(ctx context.Context, sql string) (int64, error) {
	if isFileTransferCommand(sql) {
		return 0, ErrUnsupportedStatementType(sql)
	}

	handle, err := s.executeInternal(ctx, sql, backend.CallExecuteUpdate, "ExecuteUpdate")
	s.retireActiveResultSet()
	if err != nil {
		return 0, err
	}
	if handle.StatementType().GeneratesResultSet() {
		if closeErr := handle.Close(); closeErr != nil {
			s.logger.Warn("failed to close consumed result handle", logging.Error("error", closeErr))
		}
		return 0, ErrUnsupportedStatementType(sql)
	}

	count, cerr := handle.UpdateCount()
	closeErr := handle.Close()
	if cerr != nil {
		return 0, NewBackendError(cerr)
	}
	if closeErr != nil {
		s.logger.Warn("failed to close consumed result handle", logging.Error("error", closeErr))
	}
	if count < 0 {
		// DDL and similar report no count, surfaced as zero rows affected
		count = 0
	}
	s.setUpdateCount(count)
	return count, nil
}

// ExecuteBatch runs every pending batch entry in insertion order and returns
// one count per entry. A failed entry does not stop the batch: its slot
// holds ExecuteFailed, later entries still run, and the aggregate
// BatchUpdateError carries the first failure as its cause. Entries that
// succeed without an affected-row count, including row-producing statements,
// hold SuccessNoInfo. The batch stays queued until ClearBatch or Close; only
// the query IDs of the previous run are reset.
func (s *Statement) ExecuteBatch(ctx context.Context) ([]int64, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrStatementClosed("ExecuteBatch")
	}
	entries := make([]BatchEntry, len(s.batch))
	copy(entries, s.batch)
	s.batchQueryIDs = nil
	s.mu.Unlock()

	counts := make([]int64, len(entries))
	successIDs := make([]string, 0, len(entries))
	var firstErr error

	fail := func(i int, err error) {
		counts[i] = ExecuteFailed
		if firstErr == nil {
			firstErr = err
		}
		s.logger.Debug("batch entry failed",
			logging.Int("entry", i),
			logging.Error("error", err),
		)
	}

	for i, entry := range entries {
		if isFileTransferCommand(entry.SQL) {
			fail(i, ErrUnsupportedStatementType(entry.SQL))
			continue
		}

		execCtx, cancel := s.execContext(ctx)
		handle, err := s.exec.Execute(execCtx, entry.SQL, entry.Bindings, backend.CallExecuteUpdate)
		cancel()
		if err != nil {
			fail(i, NewBackendError(err))
			continue
		}
		if handle.StatementType().GeneratesResultSet() {
			// row data carries no count inside a batch
			queryID := handle.QueryID()
			_ = handle.Close()
			counts[i] = SuccessNoInfo
			successIDs = append(successIDs, queryID)
			continue
		}

		count, cerr := handle.UpdateCount()
		queryID := handle.QueryID()
		_ = handle.Close()
		if cerr != nil {
			fail(i, NewBackendError(cerr))
			continue
		}
		if count <= 0 {
			// zero rows affected (or no count at all) reports no info
			counts[i] = SuccessNoInfo
		} else {
			counts[i] = count
		}
		successIDs = append(successIDs, queryID)
	}

	s.mu.Lock()
	s.batchQueryIDs = successIDs
	s.updateCount = NoUpdateCount
	s.mu.Unlock()

	if firstErr != nil {
		return counts, NewBatchUpdateError(firstErr, counts)
	}
	return counts, nil
}

// GetMoreResults advances to the next result of a multi-statement
// execution. When mode requests closing current or all results, the driver
// closes the currently active result set; the backend performs its own
// per-mode disposal. It returns true when the next result carries row data
// (available through ResultSet), false when it carries an update count
// (available through UpdateCount), and false with UpdateCount at
// NoUpdateCount when no results remain.
func (s *Statement) GetMoreResults(mode backend.ResultCloseMode) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrStatementClosed("GetMoreResults")
	}
	// only the currently active result set is disposed here; the backend
	// handles its own per-mode disposal, and previously demoted sets stay
	// open until statement close
	var toClose *ResultSet
	if s.resultSet != nil && (mode == backend.CloseCurrentResult || mode == backend.CloseAllResults) {
		toClose = s.resultSet
	}
	s.mu.Unlock()

	if toClose != nil {
		if err := toClose.Close(); err != nil {
			s.logger.Warn("failed to close prior result set", logging.Error("error", err))
		}
	}

	hasRows, err := s.exec.GetMoreResults(mode)
	if err != nil {
		return false, NewBackendError(err)
	}
	handle := s.exec.ResultHandle()

	if hasRows && handle != nil {
		s.registerResultSet(handle)
		return true, nil
	}

	if handle != nil {
		// next result is an update count, consume the handle
		count, cerr := handle.UpdateCount()
		_ = handle.Close()
		if cerr != nil {
			return false, NewBackendError(cerr)
		}
		s.mu.Lock()
		s.resultSet = nil
		s.updateCount = count
		s.mu.Unlock()
		return false, nil
	}

	// exhausted
	s.mu.Lock()
	s.resultSet = nil
	s.updateCount = NoUpdateCount
	s.mu.Unlock()
	return false, nil
}

// Cancel asks the backend to abort the in-flight execution. Cancellation is
// asynchronous: the executing call may still complete normally.
func (s *Statement) Cancel() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStatementClosed("Cancel")
	}
	s.mu.Unlock()

	if err := s.exec.Cancel(); err != nil {
		return NewBackendError(err)
	}
	s.logger.Debug("statement cancellation requested")
	return nil
}

// Close tears the statement down: every result set it still has open is
// closed, the backend executor is released, and the statement deregisters
// from its owner. Closing an already closed statement is a no-op.
func (s *Statement) Close() error {
	return s.close(true)
}

// CloseFromOwner closes the statement without deregistering it from its
// owner. The owning connection uses this during its own teardown, where it
// is already iterating its statement registry.
func (s *Statement) CloseFromOwner() error {
	return s.close(false)
}

func (s *Statement) close(removeFromOwner bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	open := make([]*ResultSet, 0, len(s.openResultSets))
	for rs := range s.openResultSets {
		open = append(open, rs)
	}
	s.openResultSets = nil
	s.resultSet = nil
	s.batch = nil
	s.warnings = nil
	s.mu.Unlock()

	var firstErr error
	for _, rs := range open {
		if err := rs.close(false); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if err := s.exec.Close(); err != nil && firstErr == nil {
		firstErr = NewBackendError(err)
	}

	if removeFromOwner && s.owner != nil {
		s.owner.RemoveStatement(s)
	}

	s.logger.Debug("statement closed", logging.Int("orphaned_result_sets", len(open)))
	return firstErr
}

// executeInternal is the execution path shared by the execute entry points.
func (s *Statement) executeInternal(ctx context.Context, sql string, mode backend.CallMode, operation string) (backend.ResultHandle, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrStatementClosed(operation)
	}
	s.mu.Unlock()

	execCtx, cancel := s.execContext(ctx)
	defer cancel()

	start := time.Now()
	handle, err := s.exec.Execute(execCtx, sql, nil, mode)
	if err != nil {
		s.logger.Debug("execution failed",
			logging.String("mode", mode.String()),
			logging.Duration("elapsed", time.Since(start)),
			logging.Error("error", err),
		)
		return nil, NewBackendError(err)
	}

	s.mu.Lock()
	s.queryID = handle.QueryID()
	s.mu.Unlock()

	s.logger.Debug("execution completed",
		logging.String("mode", mode.String()),
		logging.String("query_id", handle.QueryID()),
		logging.String("statement_type", handle.StatementType().String()),
		logging.Duration("elapsed", time.Since(start)),
	)
	return handle, nil
}

// executeSetProperty applies a "set-db-property <name> <value>" directive.
// The tracing property adjusts the driver log level in place; everything
// else is staged on the executor for the next execution.
func (s *Statement) executeSetProperty(sql string) error {
	tokens := strings.Fields(sql)
	if len(tokens) < 3 {
		return ErrInvalidParameter("property directive", sql)
	}
	name := tokens[1]
	value := strings.Join(tokens[2:], " ")

	if strings.EqualFold(name, "tracing") {
		if !logging.SetLevel(s.logger, value) {
			s.logger.Warn("tracing level not applied to external logger",
				logging.String("level", value))
			s.addWarning(Warning{
				Message:    "tracing level not applied to external logger: " + value,
				SQLState:   SQLStateFeatureNotSupported,
				VendorCode: NoVendorCode,
			})
		}
		return nil
	}

	if err := s.exec.AddProperty(strings.ToLower(name), value); err != nil {
		return NewBackendError(err)
	}
	s.logger.Debug("statement property staged", logging.String("name", strings.ToLower(name)))
	return nil
}

// execContext applies the statement's query timeout, when set.
func (s *Statement) execContext(ctx context.Context) (context.Context, context.CancelFunc) {
	s.mu.Lock()
	timeout := s.queryTimeout
	s.mu.Unlock()
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return ctx, func() {}
}

// registerResultSet wraps handle, records it in the open set, and makes it
// the statement's current result. A nil handle produces an empty result set.
func (s *Statement) registerResultSet(handle backend.ResultHandle) *ResultSet {
	rs := newResultSet(s, handle)
	s.mu.Lock()
	if s.openResultSets != nil {
		s.openResultSets[rs] = struct{}{}
	}
	s.resultSet = rs
	s.updateCount = NoUpdateCount
	s.mu.Unlock()
	return rs
}

// retireActiveResultSet demotes the current result set to the tracked
// registry without closing it. It stays open until the caller closes it or
// the statement tears down.
func (s *Statement) retireActiveResultSet() {
	s.mu.Lock()
	s.resultSet = nil
	s.mu.Unlock()
}

// removeResultSet deregisters a result set that closed itself.
func (s *Statement) removeResultSet(rs *ResultSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openResultSets != nil {
		delete(s.openResultSets, rs)
	}
	if s.resultSet == rs {
		s.resultSet = nil
	}
}

func (s *Statement) addWarning(w Warning) {
	s.mu.Lock()
	s.warnings = append(s.warnings, w)
	s.mu.Unlock()
}

func (s *Statement) setUpdateCount(count int64) {
	s.mu.Lock()
	s.updateCount = count
	s.mu.Unlock()
}

// raiseIfClosed fails when the statement is closed. Callers must hold s.mu.
func (s *Statement) raiseIfClosed(operation string) error {
	if s.closed {
		return ErrStatementClosed(operation)
	}
	return nil
}

// isFileTransferCommand reports whether sql is a stage file transfer
// command, which only the generic execute path may run.
func isFileTransferCommand(sql string) bool {
	trimmed := strings.TrimSpace(strings.ToLower(sql))
	return strings.HasPrefix(trimmed, "put ") || strings.HasPrefix(trimmed, "get ")
}
