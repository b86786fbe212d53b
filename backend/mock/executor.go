// Package mock provides scriptable in-memory implementations of the backend
// contracts for testing the driver without a live warehouse.
package mock

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/borealdb/borealdb-go/backend"
	"github.com/borealdb/borealdb-go/telemetry"
)

// ResultHandle implements backend.ResultHandle over scripted metadata.
type ResultHandle struct {
	queryID     string
	stmtType    backend.StatementType
	updateCount int64
	updateErr   error

	closed     atomic.Bool
	closeCalls atomic.Int32
	closeErr   error
}

// NewQueryResult creates a handle for a row-producing statement with a
// freshly minted query ID.
func NewQueryResult() *ResultHandle {
	return &ResultHandle{
		queryID:     uuid.New().String(),
		stmtType:    backend.StatementTypeQuery,
		updateCount: backend.NoUpdateCount,
	}
}

// NewUpdateResult creates a handle for a DML statement that affected n rows.
func NewUpdateResult(n int64) *ResultHandle {
	return &ResultHandle{
		queryID:     uuid.New().String(),
		stmtType:    backend.StatementTypeDML,
		updateCount: n,
	}
}

// WithQueryID overrides the minted query ID.
func (h *ResultHandle) WithQueryID(id string) *ResultHandle {
	h.queryID = id
	return h
}

// WithStatementType overrides the statement classification.
func (h *ResultHandle) WithStatementType(t backend.StatementType) *ResultHandle {
	h.stmtType = t
	return h
}

// WithUpdateCountError configures UpdateCount to fail.
func (h *ResultHandle) WithUpdateCountError(err error) *ResultHandle {
	h.updateErr = err
	return h
}

// WithCloseError configures Close to fail.
func (h *ResultHandle) WithCloseError(err error) *ResultHandle {
	h.closeErr = err
	return h
}

// QueryID implements backend.ResultHandle.
func (h *ResultHandle) QueryID() string { return h.queryID }

// StatementType implements backend.ResultHandle.
func (h *ResultHandle) StatementType() backend.StatementType { return h.stmtType }

// UpdateCount implements backend.ResultHandle.
func (h *ResultHandle) UpdateCount() (int64, error) {
	if h.updateErr != nil {
		return backend.NoUpdateCount, h.updateErr
	}
	return h.updateCount, nil
}

// Close implements backend.ResultHandle.
func (h *ResultHandle) Close() error {
	h.closeCalls.Add(1)
	h.closed.Store(true)
	return h.closeErr
}

// Closed reports whether Close has been called.
func (h *ResultHandle) Closed() bool { return h.closed.Load() }

// CloseCalls returns the number of Close invocations.
func (h *ResultHandle) CloseCalls() int32 { return h.closeCalls.Load() }

// execution is one scripted Execute outcome: either a result sequence or a
// failure.
type execution struct {
	handles []*ResultHandle
	err     error
}

// Executor implements backend.Executor over scripted result sequences. Each
// Execute consumes the next enqueued execution, falling back to the reusable
// default script (or a fabricated query result) when the queue is empty. The
// first handle of a sequence is returned by Execute; GetMoreResults advances
// through the rest. Behavior is configured with the fluent With*/Enqueue*
// methods.
type Executor struct {
	mu          sync.Mutex
	script      []*ResultHandle
	queue       []execution
	current     []*ResultHandle
	pos         int
	executeErr  error
	executeDly  time.Duration
	cancelErr   error
	closeErr    error
	hasChildren bool
	properties  map[string]interface{}
	executedSQL []string

	executeCalls     atomic.Int32
	moreResultsCalls atomic.Int32
	cancelCalls      atomic.Int32
	closeCalls       atomic.Int32
	propertyCalls    atomic.Int32
}

// NewExecutor creates a mock executor with no scripted results; Execute
// fabricates a fresh query result per call until a script is set.
func NewExecutor() *Executor {
	return &Executor{
		properties: make(map[string]interface{}),
	}
}

// WithResults sets the default result sequence returned by every Execute
// that has no enqueued execution.
func (e *Executor) WithResults(handles ...*ResultHandle) *Executor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.script = handles
	return e
}

// EnqueueExecution appends a one-shot result sequence consumed by the next
// unscripted Execute call.
func (e *Executor) EnqueueExecution(handles ...*ResultHandle) *Executor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue = append(e.queue, execution{handles: handles})
	return e
}

// EnqueueExecutionError appends a one-shot failure consumed by the next
// Execute call.
func (e *Executor) EnqueueExecutionError(err error) *Executor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue = append(e.queue, execution{err: err})
	return e
}

// WithExecuteError configures Execute to fail.
func (e *Executor) WithExecuteError(err error) *Executor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.executeErr = err
	return e
}

// WithExecuteDelay adds a delay to Execute, honoring context cancellation.
func (e *Executor) WithExecuteDelay(d time.Duration) *Executor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.executeDly = d
	return e
}

// WithCancelError configures Cancel to fail.
func (e *Executor) WithCancelError(err error) *Executor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelErr = err
	return e
}

// WithCloseError configures Close to fail.
func (e *Executor) WithCloseError(err error) *Executor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeErr = err
	return e
}

// WithChildren marks the execution as a multi-statement batch with children.
func (e *Executor) WithChildren(has bool) *Executor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hasChildren = has
	return e
}

// Execute implements backend.Executor.
func (e *Executor) Execute(ctx context.Context, sql string, bindings map[string]backend.Binding, mode backend.CallMode) (backend.ResultHandle, error) {
	e.executeCalls.Add(1)

	e.mu.Lock()
	delay := e.executeDly
	var exec execution
	switch {
	case e.executeErr != nil:
		exec = execution{err: e.executeErr}
	case len(e.queue) > 0:
		exec = e.queue[0]
		e.queue = e.queue[1:]
	case len(e.script) > 0:
		exec = execution{handles: e.script}
	default:
		exec = execution{handles: []*ResultHandle{NewQueryResult()}}
	}
	if exec.err == nil && len(exec.handles) == 0 {
		// empty scripted sequence, fabricate like the unscripted default
		exec.handles = []*ResultHandle{NewQueryResult()}
	}
	e.executedSQL = append(e.executedSQL, sql)
	e.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if exec.err != nil {
		return nil, exec.err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = exec.handles
	e.pos = 0
	return e.current[0], nil
}

// GetMoreResults implements backend.Executor.
func (e *Executor) GetMoreResults(mode backend.ResultCloseMode) (bool, error) {
	e.moreResultsCalls.Add(1)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.pos++
	if e.pos >= len(e.current) {
		return false, nil
	}
	return e.current[e.pos].StatementType().GeneratesResultSet(), nil
}

// ResultHandle implements backend.Executor.
func (e *Executor) ResultHandle() backend.ResultHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pos >= len(e.current) {
		return nil
	}
	return e.current[e.pos]
}

// Cancel implements backend.Executor.
func (e *Executor) Cancel() error {
	e.cancelCalls.Add(1)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancelErr
}

// Close implements backend.Executor.
func (e *Executor) Close() error {
	e.closeCalls.Add(1)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closeErr
}

// AddProperty implements backend.Executor.
func (e *Executor) AddProperty(name string, value interface{}) error {
	e.propertyCalls.Add(1)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.properties[name] = value
	return nil
}

// HasChildren implements backend.Executor.
func (e *Executor) HasChildren() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasChildren
}

// Property returns the staged value for name, if any.
func (e *Executor) Property(name string) (interface{}, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.properties[name]
	return v, ok
}

// ExecutedSQL returns the SQL texts passed to Execute, in order.
func (e *Executor) ExecutedSQL() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.executedSQL))
	copy(out, e.executedSQL)
	return out
}

// ExecuteCalls returns the number of Execute invocations.
func (e *Executor) ExecuteCalls() int32 { return e.executeCalls.Load() }

// MoreResultsCalls returns the number of GetMoreResults invocations.
func (e *Executor) MoreResultsCalls() int32 { return e.moreResultsCalls.Load() }

// CancelCalls returns the number of Cancel invocations.
func (e *Executor) CancelCalls() int32 { return e.cancelCalls.Load() }

// CloseCalls returns the number of Close invocations.
func (e *Executor) CloseCalls() int32 { return e.closeCalls.Load() }

// PropertyCalls returns the number of AddProperty invocations.
func (e *Executor) PropertyCalls() int32 { return e.propertyCalls.Load() }

// Session implements backend.Session with fixed answers.
type Session struct {
	returnCountForDML bool
	channel           telemetry.Channel
}

// NewSession creates a mock session with DML count return disabled and no
// telemetry channel.
func NewSession() *Session {
	return &Session{}
}

// WithReturnCountForDML configures the DML count-return policy.
func (s *Session) WithReturnCountForDML(on bool) *Session {
	s.returnCountForDML = on
	return s
}

// WithTelemetryChannel attaches an in-band telemetry channel.
func (s *Session) WithTelemetryChannel(ch telemetry.Channel) *Session {
	s.channel = ch
	return s
}

// ExecuteReturnCountForDML implements backend.Session.
func (s *Session) ExecuteReturnCountForDML() bool { return s.returnCountForDML }

// TelemetryClient implements backend.Session.
func (s *Session) TelemetryClient() telemetry.Channel { return s.channel }

// TelemetryChannel is an in-band telemetry channel that records submissions.
type TelemetryChannel struct {
	mu      sync.Mutex
	records []telemetry.Record
	err     error
	delay   time.Duration
}

// NewTelemetryChannel creates a recording in-band channel.
func NewTelemetryChannel() *TelemetryChannel {
	return &TelemetryChannel{}
}

// WithError configures Report to fail.
func (c *TelemetryChannel) WithError(err error) *TelemetryChannel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
	return c
}

// WithDelay makes Report block for d before acknowledging, honoring ctx.
func (c *TelemetryChannel) WithDelay(d time.Duration) *TelemetryChannel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delay = d
	return c
}

// Report implements telemetry.Channel.
func (c *TelemetryChannel) Report(ctx context.Context, rec telemetry.Record) error {
	c.mu.Lock()
	delay := c.delay
	err := c.err
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
	return nil
}

// Records returns the acknowledged records, in order.
func (c *TelemetryChannel) Records() []telemetry.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]telemetry.Record, len(c.records))
	copy(out, c.records)
	return out
}

// OutOfBand is an out-of-band telemetry channel that records events.
type OutOfBand struct {
	mu     sync.Mutex
	events []telemetry.Event
}

// NewOutOfBand creates a recording out-of-band channel.
func NewOutOfBand() *OutOfBand {
	return &OutOfBand{}
}

// Report implements telemetry.OutOfBandChannel.
func (o *OutOfBand) Report(event telemetry.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

// Events returns the reported events, in order.
func (o *OutOfBand) Events() []telemetry.Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]telemetry.Event, len(o.events))
	copy(out, o.events)
	return out
}
