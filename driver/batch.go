package driver

import "github.com/borealdb/borealdb-go/backend"

// Batch execution sentinel counts, reported per entry by ExecuteBatch.
const (
	// NoUpdateCount marks an execution that produced no update count.
	NoUpdateCount int64 = -1
	// SuccessNoInfo marks a batch entry that succeeded without a count.
	SuccessNoInfo int64 = -2
	// ExecuteFailed marks a batch entry whose execution failed.
	ExecuteFailed int64 = -3
)

// BatchEntry is a single pending command in a statement's batch, captured
// with the parameter bindings in effect when it was added.
type BatchEntry struct {
	SQL      string
	Bindings map[string]backend.Binding
}

// AddBatch appends sql to the pending batch. Entries execute in insertion
// order when ExecuteBatch runs.
func (s *Statement) AddBatch(sql string) error {
	return s.AddBatchWithBindings(sql, nil)
}

// AddBatchWithBindings appends sql to the pending batch with a snapshot of
// the given parameter bindings, so later changes to the caller's map do not
// affect the queued entry.
func (s *Statement) AddBatchWithBindings(sql string, bindings map[string]backend.Binding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.raiseIfClosed("AddBatch"); err != nil {
		return err
	}

	entry := BatchEntry{SQL: sql}
	if len(bindings) > 0 {
		entry.Bindings = make(map[string]backend.Binding, len(bindings))
		for k, v := range bindings {
			entry.Bindings[k] = v
		}
	}
	s.batch = append(s.batch, entry)

	return nil
}

// ClearBatch discards all pending batch entries.
func (s *Statement) ClearBatch() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.raiseIfClosed("ClearBatch"); err != nil {
		return err
	}

	s.batch = nil
	return nil
}

// BatchSize reports the number of pending batch entries.
func (s *Statement) BatchSize() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.raiseIfClosed("BatchSize"); err != nil {
		return 0, err
	}

	return len(s.batch), nil
}
