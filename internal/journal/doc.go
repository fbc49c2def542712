// Package journal persists delivered events to Postgres for audit and
// replay tooling. It batches inserts and deduplicates on event id; it
// does not change the client's delivery semantics.
package journal
