// Package repository implements the persistence layer on top of
// database/sql. Sentinel errors defined here let handlers translate
// storage failures into the right HTTP status without inspecting driver
// error strings themselves.
package repository

import "errors"

// ErrDuplicateEntry is returned when an insert violates a unique
// constraint (MySQL error 1062). Handlers translate it into HTTP 400.
var ErrDuplicateEntry = errors.New("duplicate entry")

// ErrNotFound is returned when a lookup matches no rows. Handlers
// translate it into HTTP 404.
var ErrNotFound = errors.New("not found")
