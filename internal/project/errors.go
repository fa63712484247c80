package project

import "errors"

// ErrNotFound is returned when a lookup matches no stored row.
var ErrNotFound = errors.New("project: not found")

// ErrSchemaMismatch indicates the database was written by an incompatible
// version. Delete the work directory and rerun.
var ErrSchemaMismatch = errors.New("project: schema version mismatch")
