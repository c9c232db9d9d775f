// Package report persists query results and extracted verbatims as
// timestamped files in an output directory.
package report
