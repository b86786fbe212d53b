// Package borealdb is the Go client driver layer for the BorealDB cloud
// data warehouse.
//
// The packages in this module adapt BorealDB's query-execution protocol to a
// conventional statement/result-set client API:
//
//   - driver: the statement lifecycle controller, result-set wrappers, batch
//     registry, and the driver error taxonomy.
//   - backend: the contracts consumed from the warehouse query executor
//     (statement execution, multi-result navigation, cancellation), plus a
//     scriptable mock under backend/mock.
//   - telemetry: best-effort reporting of SQL exceptions over the session's
//     in-band channel with out-of-band fallback.
//   - temporal: value types that preserve the wallclock reading captured at
//     write time when rendered in a different time zone.
//   - logging: the structured logger shared by the other packages.
//
// Wire encoding, result chunk streaming, type coercion of row data, and
// session negotiation are owned by the backend executor and are out of scope
// here.
package borealdb
