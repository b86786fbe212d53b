package telemetry

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	borealdb "github.com/borealdb/borealdb-go"
)

// RecordTypeSQLException is the record type for driver-side SQL exceptions.
const RecordTypeSQLException = "client_sql_exception"

// NoVendorCode marks a report with no backend vendor code attached.
const NoVendorCode = -1

// Record is a structured telemetry log entry. Optional fields are omitted
// from the wire form when empty; ErrorNumber is omitted when the report
// carried the NoVendorCode sentinel.
type Record struct {
	Type          string `json:"type"`
	DriverType    string `json:"DriverType"`
	DriverVersion string `json:"DriverVersion"`
	QueryID       string `json:"QueryID,omitempty"`
	SQLState      string `json:"SQLState,omitempty"`
	Reason        string `json:"reason,omitempty"`
	ErrorNumber   int    `json:"ErrorNumber,omitempty"`
	ErrorType     string `json:"ErrorType,omitempty"`
	Stacktrace    string `json:"Stacktrace,omitempty"`
	Exception     string `json:"Exception,omitempty"`
}

// Event is the envelope used on the out-of-band channel. Each event carries
// its own identifier so the side channel can deduplicate redeliveries.
type Event struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value Record `json:"value"`
}

// newRecord builds a Record for an SQL exception, dropping absent fields.
func newRecord(queryID, reason, sqlState string, vendorCode int, errorType string) Record {
	rec := Record{
		Type:          RecordTypeSQLException,
		DriverType:    borealdb.DriverType,
		DriverVersion: borealdb.Version,
		QueryID:       queryID,
		SQLState:      sqlState,
		Reason:        reason,
		ErrorType:     errorType,
	}
	if vendorCode != NoVendorCode {
		rec.ErrorNumber = vendorCode
	}
	return rec
}

// JSON serializes the record for transmission or logging.
func (r Record) JSON() ([]byte, error) {
	return json.Marshal(r)
}

// MaskStacktrace removes the trailing ": <message>" suffix from the first
// line of a rendered stack trace, leaving the error kind and the frame lines
// intact. Error messages may carry user data; the trace shape does not.
func MaskStacktrace(s string) string {
	first := s
	rest := ""
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		first, rest = s[:nl], s[nl:]
	}
	if i := strings.Index(first, ": "); i >= 0 {
		first = first[:i]
	}
	return first + rest
}

// errorKind returns the bare type name of err, without package or pointer
// decoration, e.g. "SQLError".
func errorKind(err error) string {
	if err == nil {
		return ""
	}
	name := fmt.Sprintf("%T", err)
	name = strings.TrimLeft(name, "*")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// stackFramer is implemented by driver errors that captured their stack at
// construction time.
type stackFramer interface {
	StackFrames() []string
}

// renderStacktrace produces a masked, frame-per-line trace for err. The
// first line mimics the conventional "Kind: message" form so MaskStacktrace
// has a message suffix to strip.
func renderStacktrace(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(errorKind(err))
	b.WriteString(": ")
	b.WriteString(err.Error())
	if framer, ok := err.(stackFramer); ok {
		for _, frame := range framer.StackFrames() {
			b.WriteString("\n\tat ")
			b.WriteString(frame)
		}
	}
	return MaskStacktrace(b.String())
}
