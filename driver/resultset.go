package driver

import (
	"sync"

	"github.com/borealdb/borealdb-go/backend"
)

// ResultSet is the driver-facing view over one backend result handle. It is
// registered with its owning statement on creation and deregisters itself
// when closed, so the statement can mass-close whatever is still open at
// teardown.
type ResultSet struct {
	owner  *Statement
	handle backend.ResultHandle

	cursorType  CursorType
	concurrency Concurrency
	holdability Holdability

	mu     sync.Mutex
	closed bool
}

func newResultSet(owner *Statement, handle backend.ResultHandle) *ResultSet {
	return &ResultSet{
		owner:       owner,
		handle:      handle,
		cursorType:  owner.cursorType,
		concurrency: owner.concurrency,
		holdability: owner.holdability,
	}
}

// QueryID returns the backend identifier of the execution that produced
// this result set.
func (r *ResultSet) QueryID() string {
	if r.handle == nil {
		return ""
	}
	return r.handle.QueryID()
}

// Statement returns the statement that produced this result set.
func (r *ResultSet) Statement() *Statement {
	return r.owner
}

// CursorType reports the traversal mode inherited from the owning
// statement.
func (r *ResultSet) CursorType() CursorType {
	return r.cursorType
}

// Concurrency reports the update mode inherited from the owning statement.
func (r *ResultSet) Concurrency() Concurrency {
	return r.concurrency
}

// Holdability reports the commit behavior inherited from the owning
// statement.
func (r *ResultSet) Holdability() Holdability {
	return r.holdability
}

// IsClosed reports whether the result set has been closed. Never fails,
// even after close.
func (r *ResultSet) IsClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Close releases the backend handle and deregisters the result set from its
// owning statement. Closing an already closed result set is a no-op.
func (r *ResultSet) Close() error {
	return r.close(true)
}

// close releases the handle. When notify is false the owning statement is
// not told; the statement uses that during mass-close, where it already
// holds its own lock and is about to drop the whole registry.
func (r *ResultSet) close(notify bool) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	handle := r.handle
	r.handle = nil
	r.mu.Unlock()

	if notify && r.owner != nil {
		r.owner.removeResultSet(r)
	}

	if handle != nil {
		if err := handle.Close(); err != nil {
			return NewBackendError(err)
		}
	}
	return nil
}
