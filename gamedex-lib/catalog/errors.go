package catalog

import (
	"fmt"
)

// The failure taxonomy for resolve and ingest. All four are expected,
// locally recoverable outcomes: entry points log them and report "nothing
// added" (nil id, false) to callers instead of propagating.

// AlreadyExistsError signals that a record with the computed sort name is
// already in the library. It means "no new work to do", not a fault.
type AlreadyExistsError struct {
	SortName string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("game already exists with sort name '%s'", e.SortName)
}

// NoMetadataError signals that the external source returned no candidate
// for a name.
type NoMetadataError struct {
	Name string
}

func (e *NoMetadataError) Error() string {
	return fmt.Sprintf("no metadata found for '%s'", e.Name)
}

// NetworkError wraps a transport, decode, upload or store fault, tagged
// with the stage it occurred in.
type NetworkError struct {
	Stage string
	Err   error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Stage, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NoArtworkError signals that the external source has no usable artwork
// (at least one of grid/icon/hero lists was empty) for a candidate.
type NoArtworkError struct {
	SourceID int64
}

func (e *NoArtworkError) Error() string {
	return fmt.Sprintf("no usable artwork for source game %d", e.SourceID)
}
