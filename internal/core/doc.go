// Package core implements the flight-log ingestion and summary pipeline.
// This package has no HTTP dependencies and can be used by any frontend.
//
// The package owns exactly one in-memory Dataset at a time: an upload is
// parsed into a new Dataset which wholesale-replaces the previous one, and
// every query (preview, summary, plot) runs read-only against the current
// Dataset. There is no persistence; restarting the process drops the data.
//
// Two input formats are understood:
//
//   - delimited text (.csv/.txt): comma by default, semicolon and tab
//     detected from the header line
//   - drone JSON-line logs (.log): "2006-01-02 15:04:05,000 - {json}"
//
// Replacement is last-writer-wins. Concurrent readers are safe (the current
// Dataset is guarded by an RWMutex and never mutated in place), but an
// upload that lands between a client's queries silently changes what those
// queries see. Callers that need isolation should hold on to the DatasetID
// returned by Load and verify it before trusting query results.
package core
