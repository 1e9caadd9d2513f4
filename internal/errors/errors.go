package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a pipeline error
type Kind string

const (
	KindUnsupportedFormat    Kind = "unsupported_format"
	KindDuplicateInput       Kind = "duplicate_input"
	KindSchemaMismatch       Kind = "schema_mismatch"
	KindImputationImpossible Kind = "imputation_impossible"
	KindPersistenceFailure   Kind = "persistence_failure"
	KindArchivalAnomaly      Kind = "archival_anomaly"
)

// Error is a structured pipeline error carrying enough detail to diagnose
// a failed run without re-running it.
type Error struct {
	Kind    Kind                   `json:"kind"`
	Step    string                 `json:"step,omitempty"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Detail  map[string]interface{} `json:"detail,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "unknown pipeline error"
	}
	if e.Step != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Step, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// GetKind returns the kind of err, or "" if err is not a pipeline error.
func GetKind(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsKind reports whether err is a pipeline error of the given kind.
func IsKind(err error, kind Kind) bool {
	return GetKind(err) == kind
}

// IsFatal reports whether err aborts the run. Every kind except
// archival_anomaly is fatal.
func IsFatal(err error) bool {
	kind := GetKind(err)
	return kind != "" && kind != KindArchivalAnomaly
}

// NewUnsupportedFormat reports a file whose extension is not an accepted
// tabular format.
func NewUnsupportedFormat(path, extension string) *Error {
	return &Error{
		Kind:    KindUnsupportedFormat,
		Step:    "ingest",
		Message: fmt.Sprintf("unsupported file format %q, expected .csv or .xlsx", extension),
		Detail: map[string]interface{}{
			"path":      path,
			"extension": extension,
		},
	}
}

// NewDuplicateInput reports a file whose content already exists in the
// archive.
func NewDuplicateInput(path, archiveEntry string) *Error {
	return &Error{
		Kind:    KindDuplicateInput,
		Step:    "ingest",
		Message: fmt.Sprintf("file %s already processed", path),
		Detail: map[string]interface{}{
			"path":          path,
			"archive_entry": archiveEntry,
		},
	}
}

// NewSchemaMismatch reports the symmetric difference between the
// dataset's columns and the expected schema.
func NewSchemaMismatch(missing, extra []string) *Error {
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing in dataset: %v", missing))
	}
	if len(extra) > 0 {
		parts = append(parts, fmt.Sprintf("extra in dataset: %v", extra))
	}
	return &Error{
		Kind:    KindSchemaMismatch,
		Step:    "validate",
		Message: "column mismatch detected: " + strings.Join(parts, "; "),
		Detail: map[string]interface{}{
			"missing": missing,
			"extra":   extra,
		},
	}
}

// NewImputationImpossible reports a column with no values to derive a
// median or mode from.
func NewImputationImpossible(column string) *Error {
	return &Error{
		Kind:    KindImputationImpossible,
		Step:    "clean",
		Message: fmt.Sprintf("column %q has no values to impute from", column),
		Detail: map[string]interface{}{
			"column": column,
		},
	}
}

// NewPersistenceFailure reports a failed store or snapshot write. The
// sink name distinguishes which side failed so an operator knows whether
// the store and the snapshot may now disagree.
func NewPersistenceFailure(sink string, cause error, storeWritten, snapshotWritten bool) *Error {
	return &Error{
		Kind:    KindPersistenceFailure,
		Step:    "persist",
		Message: fmt.Sprintf("%s write failed", sink),
		Cause:   cause,
		Detail: map[string]interface{}{
			"sink":             sink,
			"store_written":    storeWritten,
			"snapshot_written": snapshotWritten,
		},
	}
}

// NewArchivalAnomaly reports a source file that went missing before
// archival. Non-fatal: persistence has already committed by then.
func NewArchivalAnomaly(path string, cause error) *Error {
	return &Error{
		Kind:    KindArchivalAnomaly,
		Step:    "archive",
		Message: fmt.Sprintf("source file %s missing at archive time", path),
		Cause:   cause,
		Detail: map[string]interface{}{
			"path": path,
		},
	}
}
