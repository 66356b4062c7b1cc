// Package store implements the embedded document store for Parchments:
// a schema-versioned SQLite database holding notes, folders, Bible
// versions and verses, lexicon entries and chapter summaries.
//
// A Store handle is constructed once at process start and passed by
// reference to every component. Workers may open their own handle on the
// same database file; WAL mode keeps concurrent bulk writes safe because
// every operation is a single bounded transaction.
package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/patrickudo2004/parchments/core/errors"
	"github.com/patrickudo2004/parchments/core/sqlite"
)

// Store is a handle to the local Parchments database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the database at path and applies any
// pending schema migrations. Migrations are strictly additive.
func Open(path string) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, errors.NewStore("open", "", err)
	}

	// Bulk writers and readers share the file; WAL plus a busy timeout
	// lets concurrent import workers proceed without SQLITE_BUSY failures.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.NewStore("configure", "", err)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database file path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// storeErr wraps a database error, mapping disk-full conditions to the
// retryable ErrQuotaExceeded sentinel.
func storeErr(op, table string, err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "database or disk is full") || strings.Contains(msg, "disk is full") {
		return errors.NewStore(op, table, errors.Wrap(errors.ErrQuotaExceeded, msg))
	}
	return errors.NewStore(op, table, err)
}

// inTx runs fn inside a single transaction, committing on success.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin", "", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return storeErr("commit", "", err)
	}
	return nil
}

// nullableString converts an optional string to a driver value.
func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// scanNullableString converts a sql.NullString back to an optional string.
func scanNullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
