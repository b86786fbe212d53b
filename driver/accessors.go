package driver

import "time"

// IsClosed reports whether the statement has been closed. This is the only
// accessor that stays usable after close.
func (s *Statement) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// QueryID returns the backend identifier of the statement's most recent
// execution, or the empty string before the first one.
func (s *Statement) QueryID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("QueryID"); err != nil {
		return "", err
	}
	return s.queryID, nil
}

// BatchQueryIDs returns the backend identifiers of the entries that
// succeeded in the most recent ExecuteBatch, in execution order.
func (s *Statement) BatchQueryIDs() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("BatchQueryIDs"); err != nil {
		return nil, err
	}
	ids := make([]string, len(s.batchQueryIDs))
	copy(ids, s.batchQueryIDs)
	return ids, nil
}

// UpdateCount returns the affected-row count of the current result, or
// NoUpdateCount when the current result carries row data or no results
// remain.
func (s *Statement) UpdateCount() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("UpdateCount"); err != nil {
		return NoUpdateCount, err
	}
	return s.updateCount, nil
}

// ResultSet returns the statement's current result set, or nil when the
// current result is an update count or nothing has been executed.
func (s *Statement) ResultSet() (*ResultSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("ResultSet"); err != nil {
		return nil, err
	}
	return s.resultSet, nil
}

// OpenResultSetCount reports how many result sets produced by this
// statement are still open.
func (s *Statement) OpenResultSetCount() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("OpenResultSetCount"); err != nil {
		return 0, err
	}
	return len(s.openResultSets), nil
}

// CursorType reports the statement's result set traversal mode.
func (s *Statement) CursorType() (CursorType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("CursorType"); err != nil {
		return CursorForwardOnly, err
	}
	return s.cursorType, nil
}

// Concurrency reports the statement's result set update mode.
func (s *Statement) Concurrency() (Concurrency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("Concurrency"); err != nil {
		return ConcurrencyReadOnly, err
	}
	return s.concurrency, nil
}

// Holdability reports the statement's result set commit behavior.
func (s *Statement) Holdability() (Holdability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("Holdability"); err != nil {
		return CloseOnCommit, err
	}
	return s.holdability, nil
}

// MaxRows returns the row cap applied to result sets, zero meaning no cap.
func (s *Statement) MaxRows() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("MaxRows"); err != nil {
		return 0, err
	}
	return s.maxRows, nil
}

// SetMaxRows caps the number of rows result sets yield. Zero removes the
// cap. The cap is staged on the executor and applied by the backend on the
// next execution.
func (s *Statement) SetMaxRows(n int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("SetMaxRows"); err != nil {
		return err
	}
	if n < 0 {
		return ErrInvalidParameter("max rows", n)
	}
	if err := s.exec.AddProperty("rows_per_resultset", n); err != nil {
		return NewBackendError(err)
	}
	s.maxRows = n
	return nil
}

// FetchSize returns the row prefetch hint.
func (s *Statement) FetchSize() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("FetchSize"); err != nil {
		return 0, err
	}
	return s.fetchSize, nil
}

// SetFetchSize adjusts the row prefetch hint.
func (s *Statement) SetFetchSize(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("SetFetchSize"); err != nil {
		return err
	}
	if n < 0 {
		return ErrInvalidParameter("fetch size", n)
	}
	s.fetchSize = n
	return nil
}

// QueryTimeout returns the per-execution time limit, zero meaning no limit.
func (s *Statement) QueryTimeout() (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("QueryTimeout"); err != nil {
		return 0, err
	}
	return s.queryTimeout, nil
}

// SetQueryTimeout bounds each execution. Zero removes the limit. The limit
// is enforced on the client side and also staged on the executor so the
// backend can abort long-running work.
func (s *Statement) SetQueryTimeout(d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("SetQueryTimeout"); err != nil {
		return err
	}
	if d < 0 {
		return ErrInvalidParameter("query timeout", d)
	}
	if err := s.exec.AddProperty("query_timeout", int64(d/time.Second)); err != nil {
		return NewBackendError(err)
	}
	s.queryTimeout = d
	return nil
}

// FetchDirection returns the row consumption order hint, always
// FetchForward on this driver.
func (s *Statement) FetchDirection() (FetchDirection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("FetchDirection"); err != nil {
		return FetchForward, err
	}
	return s.fetchDirection, nil
}

// MaxFieldSize returns the fixed per-field size cap.
func (s *Statement) MaxFieldSize() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("MaxFieldSize"); err != nil {
		return 0, err
	}
	return MaxAllowedFieldSize, nil
}

// EscapeProcessing reports the escape processing flag. The flag is recorded
// but has no effect: the backend parses statement text natively.
func (s *Statement) EscapeProcessing() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("EscapeProcessing"); err != nil {
		return false, err
	}
	return s.escapeProcessing, nil
}

// SetEscapeProcessing records the escape processing flag. Accepted for
// interface compatibility; the backend parses statement text natively.
func (s *Statement) SetEscapeProcessing(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("SetEscapeProcessing"); err != nil {
		return err
	}
	s.escapeProcessing = on
	return nil
}

// Poolable reports whether the statement participates in statement pooling.
// Always false on this driver.
func (s *Statement) Poolable() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("Poolable"); err != nil {
		return false, err
	}
	return false, nil
}

// SetParameter stages a named statement-level property on the executor. It
// is sent with the next execution.
func (s *Statement) SetParameter(name string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("SetParameter"); err != nil {
		return err
	}
	if name == "" {
		return ErrInvalidParameter("parameter name", name)
	}
	if err := s.exec.AddProperty(name, value); err != nil {
		return NewBackendError(err)
	}
	return nil
}

// Warning is a non-fatal condition raised during statement processing.
type Warning struct {
	Message    string
	SQLState   string
	VendorCode int
}

// Warnings returns the warnings accumulated since the last ClearWarnings,
// oldest first.
func (s *Statement) Warnings() ([]Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("Warnings"); err != nil {
		return nil, err
	}
	w := make([]Warning, len(s.warnings))
	copy(w, s.warnings)
	return w, nil
}

// ClearWarnings discards all accumulated warnings.
func (s *Statement) ClearWarnings() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("ClearWarnings"); err != nil {
		return err
	}
	s.warnings = nil
	return nil
}
