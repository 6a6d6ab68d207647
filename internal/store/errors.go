package store

import "errors"

// ErrNotFound is returned when a case or chat id matches nothing.
var ErrNotFound = errors.New("not found")
