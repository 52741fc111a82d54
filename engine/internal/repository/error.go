package repository

import "errors"

// ErrNotFound is returned when a referenced record is not in the store.
var ErrNotFound = errors.New("not found")
