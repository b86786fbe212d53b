// Package telemetry reports driver-side SQL exceptions on a best-effort
// basis. Reports prefer the session's in-band channel and fall back to the
// out-of-band channel when the in-band send fails or times out. A report
// never surfaces an error to the caller and never blocks statement
// execution beyond spawning a background task.
package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash"
	"github.com/google/uuid"

	"github.com/borealdb/borealdb-go/logging"
)

// Channel is the in-band telemetry channel obtained from a live session.
type Channel interface {
	// Report submits a record over the session connection, blocking until
	// the backend acknowledges it or ctx is done.
	Report(ctx context.Context, rec Record) error
}

// OutOfBandChannel is the side channel used when no session is available or
// the in-band send fails. Implementations must not block for long; the
// reporter calls them from background tasks and ignores their outcome.
type OutOfBandChannel interface {
	Report(event Event)
}

// Session yields the in-band channel for the connection a statement runs on.
// backend.Session satisfies this.
type Session interface {
	TelemetryClient() Channel
}

const (
	// inBandTimeout bounds the wait for an in-band acknowledgement before
	// the reporter falls back to the out-of-band channel.
	inBandTimeout = 10 * time.Second

	// suppressionWindow is how long an identical exception signature is
	// suppressed after being reported once.
	suppressionWindow = time.Minute
)

// Reporter sends SQL-exception telemetry. Safe for concurrent use.
type Reporter struct {
	oob     OutOfBandChannel
	logger  logging.Logger
	timeout time.Duration

	mu     sync.Mutex
	recent map[uint64]time.Time

	wg sync.WaitGroup
}

// NewReporter creates a reporter. A nil oob discards out-of-band events; a
// nil logger discards diagnostics.
func NewReporter(oob OutOfBandChannel, logger logging.Logger) *Reporter {
	if oob == nil {
		oob = nopOutOfBand{}
	}
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &Reporter{
		oob:     oob,
		logger:  logger,
		timeout: inBandTimeout,
		recent:  make(map[uint64]time.Time),
	}
}

// ReportSQLException reports a driver SQL exception. If sess yields an
// in-band channel the record is submitted there on a detached task with a
// bounded wait for acknowledgement, falling back to the out-of-band channel
// on failure or timeout; without a session the out-of-band channel is used
// directly. vendorCode may be NoVendorCode. The call returns immediately and
// never propagates an error.
func (r *Reporter) ReportSQLException(queryID, reason, sqlState string, vendorCode int, errorType string, sess Session, cause error) {
	rec := newRecord(queryID, reason, sqlState, vendorCode, errorType)
	if cause != nil {
		rec.Exception = errorKind(cause)
		rec.Stacktrace = renderStacktrace(cause)
	}

	if r.suppressed(rec) {
		return
	}

	var ch Channel
	if sess != nil {
		ch = sess.TelemetryClient()
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			// telemetry must never take down the caller
			_ = recover()
		}()

		if ch == nil {
			r.reportOutOfBand(rec)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		sent := make(chan error, 1)
		go func() {
			defer func() {
				if p := recover(); p != nil {
					sent <- fmt.Errorf("telemetry channel panic: %v", p)
				}
			}()
			sent <- ch.Report(ctx, rec)
		}()

		select {
		case err := <-sent:
			if err == nil {
				return
			}
			r.logger.Debug("in-band telemetry send failed, falling back to out-of-band",
				logging.Error("error", err))
		case <-ctx.Done():
			r.logger.Debug("in-band telemetry send timed out, falling back to out-of-band",
				logging.Duration("timeout", r.timeout))
		}
		r.reportOutOfBand(rec)
	}()
}

// LogFeatureNotSupported reports an API call to a driver feature this client
// does not implement.
func (r *Reporter) LogFeatureNotSupported(sess Session, cause error) {
	r.ReportSQLException("", "API call to unsupported driver feature",
		sqlStateFeatureNotSupported, NoVendorCode, "", sess, cause)
}

// Close waits for in-flight reports to finish. Further reports may still be
// submitted afterwards; Close only drains.
func (r *Reporter) Close() {
	r.wg.Wait()
}

func (r *Reporter) reportOutOfBand(rec Record) {
	r.oob.Report(Event{
		ID:    uuid.New().String(),
		Name:  "Exception: " + rec.Exception,
		Value: rec,
	})
}

// suppressed records the exception signature and reports whether an
// identical one was already sent inside the suppression window.
func (r *Reporter) suppressed(rec Record) bool {
	sig := xxhash.Sum64String(rec.ErrorType + "|" + rec.SQLState + "|" + rec.Exception + "|" + rec.Stacktrace)
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	for key, seen := range r.recent {
		if now.Sub(seen) > suppressionWindow {
			delete(r.recent, key)
		}
	}

	if seen, ok := r.recent[sig]; ok && now.Sub(seen) <= suppressionWindow {
		return true
	}
	r.recent[sig] = now
	return false
}

// sqlStateFeatureNotSupported is the standard SQLSTATE for unsupported
// features, mirrored by the driver error taxonomy.
const sqlStateFeatureNotSupported = "0A000"

type nopOutOfBand struct{}

func (nopOutOfBand) Report(Event) {}
