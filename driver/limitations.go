package driver

import "context"

// This file collects the statement surface this driver deliberately does
// not implement. Each entry point fails with a feature-unsupported error
// carrying SQL state 0A000 and reports the call through telemetry, so
// unsupported API usage in the field is visible without client-side
// instrumentation.

// unsupported builds the error for an unimplemented capability and reports
// the call through telemetry.
func (s *Statement) unsupported(feature string) error {
	err := ErrFeatureUnsupported(feature)
	s.telemetry.LogFeatureNotSupported(s.sess, err)
	return err
}

// SetCursorName is not supported: positioned updates and deletes do not
// exist in the warehouse.
func (s *Statement) SetCursorName(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("SetCursorName"); err != nil {
		return err
	}
	return s.unsupported("named cursors")
}

// SetMaxFieldSize is not supported: the per-field cap is fixed at
// MaxAllowedFieldSize.
func (s *Statement) SetMaxFieldSize(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("SetMaxFieldSize"); err != nil {
		return err
	}
	return s.unsupported("changing the maximum field size")
}

// SetFetchDirection only accepts FetchForward on this driver's forward-only
// statements.
func (s *Statement) SetFetchDirection(d FetchDirection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("SetFetchDirection"); err != nil {
		return err
	}
	if d != FetchForward {
		return s.unsupported("non-forward fetch direction")
	}
	s.fetchDirection = d
	return nil
}

// SetPoolable only accepts false: this driver has no statement pool.
func (s *Statement) SetPoolable(poolable bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("SetPoolable"); err != nil {
		return err
	}
	if poolable {
		return s.unsupported("statement pooling")
	}
	return nil
}

// CloseOnCompletion is not supported: statements never close themselves
// when their last result set closes.
func (s *Statement) CloseOnCompletion() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("CloseOnCompletion"); err != nil {
		return err
	}
	return s.unsupported("close on completion")
}

// IsCloseOnCompletion is not supported, matching CloseOnCompletion.
func (s *Statement) IsCloseOnCompletion() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("IsCloseOnCompletion"); err != nil {
		return false, err
	}
	return false, s.unsupported("close on completion")
}

// ExecuteWithKeys is Execute with a generated key mode. Requesting key
// retrieval is not supported; NoGeneratedKeys delegates to Execute.
func (s *Statement) ExecuteWithKeys(ctx context.Context, sql string, keys GeneratedKeyMode) (bool, error) {
	if keys != NoGeneratedKeys {
		s.mu.Lock()
		if err := s.raiseIfClosed("ExecuteWithKeys"); err != nil {
			s.mu.Unlock()
			return false, err
		}
		s.mu.Unlock()
		return false, s.unsupported("generated key retrieval")
	}
	return s.Execute(ctx, sql)
}

// ExecuteUpdateWithKeys is ExecuteUpdate with a generated key mode.
// Requesting key retrieval is not supported; NoGeneratedKeys delegates to
// ExecuteUpdate.
func (s *Statement) ExecuteUpdateWithKeys(ctx context.Context, sql string, keys GeneratedKeyMode) (int64, error) {
	if keys != NoGeneratedKeys {
		s.mu.Lock()
		if err := s.raiseIfClosed("ExecuteUpdateWithKeys"); err != nil {
			s.mu.Unlock()
			return 0, err
		}
		s.mu.Unlock()
		return 0, s.unsupported("generated key retrieval")
	}
	return s.ExecuteUpdate(ctx, sql)
}

// GeneratedKeys returns the keys generated by the last execution. The
// warehouse never reports generated keys, so the result set is always
// empty. It is not registered as the statement's current result.
func (s *Statement) GeneratedKeys() (*ResultSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.raiseIfClosed("GeneratedKeys"); err != nil {
		return nil, err
	}
	rs := newResultSet(s, nil)
	if s.openResultSets != nil {
		s.openResultSets[rs] = struct{}{}
	}
	return rs, nil
}
