package db

import (
	"errors"
	"fmt"
	"io/fs"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Storage error kinds. Every failure that leaves the store layer wraps one of
// these so callers can branch with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrMigrationFailed     = errors.New("migration failed")
	ErrUnsupportedSchema   = errors.New("unsupported schema version")
	ErrIOFailure           = errors.New("storage i/o failure")
	ErrConstraintViolation = errors.New("constraint violation")
)

// ClassifyError tags a driver error with its storage kind. Errors that are
// already classified, or that carry no recognizable code, pass through.
func ClassifyError(err error) error {
	if err == nil || isClassified(err) {
		return err
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			return fmt.Errorf("%w: %w", ErrConstraintViolation, err)
		case sqlite3.SQLITE_IOERR,
			sqlite3.SQLITE_CANTOPEN,
			sqlite3.SQLITE_FULL,
			sqlite3.SQLITE_READONLY,
			sqlite3.SQLITE_PERM,
			sqlite3.SQLITE_NOTADB,
			sqlite3.SQLITE_CORRUPT:
			return fmt.Errorf("%w: %w", ErrIOFailure, err)
		}
		return err
	}

	var pe *fs.PathError
	if errors.As(err, &pe) {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return err
}

func isClassified(err error) bool {
	for _, kind := range []error{ErrNotFound, ErrMigrationFailed, ErrUnsupportedSchema, ErrIOFailure, ErrConstraintViolation} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
