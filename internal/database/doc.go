// Package database provides the PostgreSQL connection pool backing the
// event journal.
package database
