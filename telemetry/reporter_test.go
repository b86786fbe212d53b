package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type stubChannel struct {
	mu      sync.Mutex
	records []Record
	err     error
	delay   time.Duration
}

func (c *stubChannel) Report(ctx context.Context, rec Record) error {
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
	return nil
}

func (c *stubChannel) Records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

type stubSession struct {
	ch Channel
}

func (s *stubSession) TelemetryClient() Channel { return s.ch }

type stubOOB struct {
	mu     sync.Mutex
	events []Event
}

func (o *stubOOB) Report(event Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *stubOOB) Events() []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Event, len(o.events))
	copy(out, o.events)
	return out
}

func TestReportSQLExceptionInBand(t *testing.T) {
	ch := &stubChannel{}
	oob := &stubOOB{}
	r := NewReporter(oob, nil)

	r.ReportSQLException("q-1", "bad call", "0A000", NoVendorCode, "",
		&stubSession{ch: ch}, errors.New("boom"))
	r.Close()

	records := ch.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 in-band record, got %d", len(records))
	}
	if records[0].QueryID != "q-1" || records[0].SQLState != "0A000" {
		t.Errorf("unexpected record: %+v", records[0])
	}
	if records[0].Exception == "" || records[0].Stacktrace == "" {
		t.Error("cause must populate exception kind and stack trace")
	}
	if len(oob.Events()) != 0 {
		t.Error("successful in-band send must not fall back to out-of-band")
	}
}

func TestReportSQLExceptionFallsBackOnChannelError(t *testing.T) {
	ch := &stubChannel{err: errors.New("connection reset")}
	oob := &stubOOB{}
	r := NewReporter(oob, nil)

	r.ReportSQLException("", "bad call", "0A000", NoVendorCode, "",
		&stubSession{ch: ch}, errors.New("boom"))
	r.Close()

	events := oob.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 out-of-band event, got %d", len(events))
	}
	if events[0].Value.SQLState != "0A000" {
		t.Errorf("unexpected event record: %+v", events[0].Value)
	}
}

func TestReportSQLExceptionFallsBackOnTimeout(t *testing.T) {
	ch := &stubChannel{delay: time.Second}
	oob := &stubOOB{}
	r := NewReporter(oob, nil)
	r.timeout = 10 * time.Millisecond

	r.ReportSQLException("", "slow channel", "0A000", NoVendorCode, "",
		&stubSession{ch: ch}, nil)
	r.Close()

	if len(oob.Events()) != 1 {
		t.Fatalf("expected timeout fallback to out-of-band, got %d events", len(oob.Events()))
	}
	if len(ch.Records()) != 0 {
		t.Error("the slow in-band send must not have been recorded")
	}
}

func TestReportSQLExceptionWithoutSessionGoesOutOfBand(t *testing.T) {
	oob := &stubOOB{}
	r := NewReporter(oob, nil)

	r.ReportSQLException("", "no session", "0A000", NoVendorCode, "", nil, nil)
	r.Close()

	if len(oob.Events()) != 1 {
		t.Fatalf("expected 1 out-of-band event, got %d", len(oob.Events()))
	}
}

func TestReportSQLExceptionWithNilChannelGoesOutOfBand(t *testing.T) {
	oob := &stubOOB{}
	r := NewReporter(oob, nil)

	r.ReportSQLException("", "no channel", "0A000", NoVendorCode, "",
		&stubSession{ch: nil}, nil)
	r.Close()

	if len(oob.Events()) != 1 {
		t.Fatalf("expected 1 out-of-band event, got %d", len(oob.Events()))
	}
}

func TestIdenticalExceptionsAreSuppressed(t *testing.T) {
	ch := &stubChannel{}
	r := NewReporter(nil, nil)
	sess := &stubSession{ch: ch}

	cause := errors.New("same failure")
	for i := 0; i < 5; i++ {
		r.ReportSQLException("", "repeat", "0A000", NoVendorCode, "API_ERROR", sess, cause)
	}
	r.Close()

	if len(ch.Records()) != 1 {
		t.Errorf("expected duplicate reports to be suppressed, got %d records", len(ch.Records()))
	}
}

func TestDistinctExceptionsAreNotSuppressed(t *testing.T) {
	ch := &stubChannel{}
	r := NewReporter(nil, nil)
	sess := &stubSession{ch: ch}

	r.ReportSQLException("", "first", "0A000", NoVendorCode, "API_ERROR", sess, errors.New("one"))
	r.ReportSQLException("", "second", "22012", NoVendorCode, "SQL_ERROR", sess, errors.New("two"))
	r.Close()

	if len(ch.Records()) != 2 {
		t.Errorf("expected 2 records for distinct signatures, got %d", len(ch.Records()))
	}
}

func TestLogFeatureNotSupported(t *testing.T) {
	ch := &stubChannel{}
	r := NewReporter(nil, nil)

	r.LogFeatureNotSupported(&stubSession{ch: ch}, errors.New("no such feature"))
	r.Close()

	records := ch.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].SQLState != sqlStateFeatureNotSupported {
		t.Errorf("expected SQL state %s, got %s", sqlStateFeatureNotSupported, records[0].SQLState)
	}
}

func TestReporterNeverPanicsOnBrokenChannel(t *testing.T) {
	r := NewReporter(nil, nil)
	r.ReportSQLException("", "panic path", "0A000", NoVendorCode, "",
		&stubSession{ch: panicChannel{}}, nil)
	r.Close()
}

type panicChannel struct{}

func (panicChannel) Report(context.Context, Record) error { panic("broken") }
