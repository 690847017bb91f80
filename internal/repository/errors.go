package repository

import "github.com/alexanderramin/timekeeper/internal/db"

// Storage error kinds, re-exported so callers of this package need not import db.
var (
	ErrNotFound            = db.ErrNotFound
	ErrConstraintViolation = db.ErrConstraintViolation
	ErrIOFailure           = db.ErrIOFailure
)
