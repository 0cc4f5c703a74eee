package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions.
var (
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("duplicate entry")
	ErrDatabase   = errors.New("database error")
	ErrInvalidArg = errors.New("invalid argument")
	ErrArtworkSet = errors.New("artwork already set")
)

// StoreError provides context for record store errors.
type StoreError struct {
	Op  string // Operation that failed (e.g., "get game")
	Key string // Lookup key if applicable (sort name, digest, ...)
	Err error  // Underlying error
}

func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s '%s': %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// WrapDBError converts a database error to a user-friendly error.
func WrapDBError(err error, op, key string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &StoreError{Op: op, Key: key, Err: ErrNotFound}
	}

	// Check for constraint violations (SQLite specific patterns)
	errStr := err.Error()
	if strings.Contains(errStr, "UNIQUE constraint failed") {
		return &StoreError{Op: op, Key: key, Err: fmt.Errorf("%w: entry already exists", ErrDuplicate)}
	}
	if strings.Contains(errStr, "FOREIGN KEY constraint failed") {
		return &StoreError{Op: op, Key: key, Err: fmt.Errorf("%w: referenced item does not exist", ErrDatabase)}
	}
	if strings.Contains(errStr, "no such table") {
		return &StoreError{Op: op, Key: key, Err: fmt.Errorf("%w: database not initialized", ErrDatabase)}
	}

	return &StoreError{Op: op, Key: key, Err: fmt.Errorf("%w: %v", ErrDatabase, err)}
}
