package domain

import "errors"

var (
	// ErrMalformedUpload is returned when an uploaded path file does not parse
	// or any of its entries fails the schema check. Nothing is imported.
	ErrMalformedUpload = errors.New("malformed upload")

	// ErrInvalidManualEntry is returned when a manually entered waypoint has a
	// field that is not a finite number.
	ErrInvalidManualEntry = errors.New("invalid manual entry")

	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrSessionNotFound   = errors.New("session not found")
	ErrPathNotFound      = errors.New("saved path not found")
	ErrTooManySessions   = errors.New("too many sessions")
	ErrEmptyPathName     = errors.New("path name is required")
	ErrUnsupportedImport = errors.New("unsupported import format")

	// ErrLibraryUnavailable is returned by library operations when no saved
	// path storage is configured.
	ErrLibraryUnavailable = errors.New("path library unavailable")
)
