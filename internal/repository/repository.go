package repository

import "errors"

var (
	// ErrStateNotFound is returned when no snapshot has been reported yet.
	ErrStateNotFound = errors.New("reported state not found")
	// ErrScanNotFound is returned when the scan history is empty.
	ErrScanNotFound = errors.New("no scan recorded yet")
)
