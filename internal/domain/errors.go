package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrReviewPending = errors.New("mapping review pending")
	ErrNoOpenImport  = errors.New("no import in progress")
	ErrImportOpen    = errors.New("another import is awaiting review")
)

// ParseError means the report itself could not be read. The import aborts
// before anything is merged.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse: %s: %v", e.Msg, e.Err)
	}
	return "parse: " + e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError marks a single bad row. The row is skipped and counted,
// the import continues.
type ValidationError struct {
	Row   int
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("row %d: missing or invalid %s", e.Row, e.Field)
}

// RestoreFormatError means a backup bundle is missing required top-level
// keys. Restore aborts with prior state untouched.
type RestoreFormatError struct {
	Missing []string
}

func (e *RestoreFormatError) Error() string {
	return "restore: bundle missing keys: " + strings.Join(e.Missing, ", ")
}
