// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. Lookups
// that find no row return sql.ErrNoRows unchanged, following the
// behavior of database/sql itself.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource without the required permission bit. Handlers translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot proceed because
// of dependent records, such as deleting a category that tallies still
// reference. Handlers translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrDuplicate is returned when an insert violates a unique constraint,
// such as registering an application with an app_id that already exists.
// Handlers translate this into an HTTP 409 response.
var ErrDuplicate = errors.New("duplicate")
