package database

import "errors"

// ErrConversionNotFound is returned when no conversion has the requested ID.
var ErrConversionNotFound = errors.New("conversion not found")

// ErrDatabaseNotFound is returned by Open when the database file is missing
// and CreateIfNotExists is false.
var ErrDatabaseNotFound = errors.New("history database not found")
