// Package storage defines the persistence interface for glossary entries,
// history records and likes, plus an in-memory implementation used for
// development and tests. The production PostgreSQL implementation lives in
// the postgres subpackage.
package storage
