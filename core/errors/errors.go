// Package errors provides standardized error types and helpers for the Parchments codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrQuotaExceeded indicates local storage is full; retryable after space is freed
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	// ErrUnsupported indicates an unsupported operation or payload format
	ErrUnsupported = errors.New("unsupported")
	// ErrCancelled indicates an operation was cancelled by its initiator
	ErrCancelled = errors.New("cancelled")
)

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "verse", "version", "lexicon entry")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// ParseError represents a parsing or shape-validation failure.
// Parse-level "no match" conditions are not errors; ParseError is reserved
// for payloads and identifiers that claim a shape but violate it.
type ParseError struct {
	Format  string // Format being parsed (e.g., "JSON", "USFM", "OSIS", "strongs id")
	Item    string // Item being parsed, if applicable (book, chapter, file)
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Item != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Item, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// StoreError represents a document-store failure (transaction, quota, schema).
// Retryable at the caller's discretion; never silently swallowed.
type StoreError struct {
	Op    string // Operation being performed (e.g., "bulk put", "migrate", "query")
	Table string // Table involved, if applicable
	Err   error  // Underlying error
}

func (e *StoreError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("store: %s %s: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// FetchError represents a network fetch failure (catalog, translation payload).
type FetchError struct {
	URL string // Resource being fetched
	Err error  // Underlying error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IngestError represents an ingestion failure (malformed payload,
// content-type mismatch, decode failure). Surfaced as a terminal worker
// error event; a version is never marked downloaded after one.
type IngestError struct {
	VersionID string // Version being ingested
	Stage     string // Pipeline stage (e.g., "decode", "normalize", "save")
	Err       error  // Underlying error
}

func (e *IngestError) Error() string {
	if e.VersionID != "" {
		return fmt.Sprintf("ingest %s: %s: %v", e.VersionID, e.Stage, e.Err)
	}
	return fmt.Sprintf("ingest: %s: %v", e.Stage, e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// UnsupportedError represents an unsupported payload format or operation
type UnsupportedError struct {
	Feature string // Feature or format that is unsupported
	Reason  string // Why it's not supported
	Err     error  // Underlying error, if any
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnsupported
}

// Helper functions for creating common errors

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewParse creates a ParseError
func NewParse(format, item, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Item:    item,
		Message: message,
	}
}

// NewStore creates a StoreError
func NewStore(op, table string, err error) *StoreError {
	return &StoreError{
		Op:    op,
		Table: table,
		Err:   err,
	}
}

// NewFetch creates a FetchError
func NewFetch(url string, err error) *FetchError {
	return &FetchError{
		URL: url,
		Err: err,
	}
}

// NewIngest creates an IngestError
func NewIngest(versionID, stage string, err error) *IngestError {
	return &IngestError{
		VersionID: versionID,
		Stage:     stage,
		Err:       err,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
