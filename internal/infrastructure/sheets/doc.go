// Package sheets provides clients for the spreadsheet store backend.
//
// A sheet is an append-only table of rows, one row per tick: a
// timestamp column plus one numeric cell per metric present in that
// tick's reading set. Two drivers implement the same Appender
// interface:
//
//   - Client posts rows to a remote sheet service over HTTP with
//     bearer-token auth.
//   - Local appends rows to an SQLite file so a site without a remote
//     store (or temporarily offline) still gets its rows.
//
// Both drivers are safe for use from a single publisher goroutine;
// the local driver additionally serialises through SQLite's single
// writer.
package sheets
