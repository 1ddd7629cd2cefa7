package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionBusy     = errors.New("session is busy with another operation")
	ErrNotAnalyzing    = errors.New("no analysis in progress")
	ErrNoTextContent   = errors.New("no text content found in document")
)

// UnsupportedTypeError is returned before any byte of the file is read.
type UnsupportedTypeError struct {
	MediaType string
}

func (e *UnsupportedTypeError) Error() string {
	return "Unsupported file type. Please upload a PDF or DOCX file."
}

// ReadError wraps a decode failure of an accepted file type.
type ReadError struct {
	MediaType string
	Err       error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("Failed to read the file: %v", e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type ProviderErrorKind string

const (
	ProviderErrorNetwork      ProviderErrorKind = "network"
	ProviderErrorUnauthorized ProviderErrorKind = "unauthorized"
	ProviderErrorParse        ProviderErrorKind = "parse"
	ProviderErrorSchema       ProviderErrorKind = "schema"
)

// ProviderError is any failure of the analysis provider call or of decoding its answer.
type ProviderError struct {
	Kind ProviderErrorKind
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("analysis provider %s error: %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt could succeed without changing the request.
func (e *ProviderError) Retryable() bool {
	return e.Kind == ProviderErrorNetwork
}

func newProviderError(kind ProviderErrorKind, err error) *ProviderError {
	return &ProviderError{Kind: kind, Err: err}
}

// SchemaViolations collects every mismatch found while validating a response.
type SchemaViolations []string

func (v SchemaViolations) Error() string {
	return "response does not match schema: " + strings.Join(v, "; ")
}
