package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrParse         = errors.New("parse error")
	ErrStore         = errors.New("store error")
	ErrValidation    = errors.New("validation error")
	ErrSuperseded    = errors.New("superseded by a newer request")

	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrCategoryNotFound    = fmt.Errorf("category %w", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)
	ErrBudgetNotFound      = fmt.Errorf("budget %w", ErrNotFound)
	ErrReportNotFound      = fmt.Errorf("monthly report %w", ErrNotFound)

	ErrBudgetAlreadyExists = fmt.Errorf("budget for month %w", ErrAlreadyExists)
	ErrReportAlreadyExists = fmt.Errorf("monthly report for month %w", ErrAlreadyExists)
)

// Validation constants
const (
	MaxCategoryNameLength    = 100
	MaxDescriptionLength     = 500
	MaxIconGlyphLength       = 16
	MaxCalculatorInputLength = 256
)

// ParseError reports a record field that could not be parsed.
type ParseError struct {
	Field string
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s %q: %v", e.Field, e.Input, e.Err)
	}
	return fmt.Sprintf("parse %s %q", e.Field, e.Input)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is makes every ParseError match ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// NewParseError creates a ParseError for the given field and raw input.
func NewParseError(field, input string, err error) *ParseError {
	return &ParseError{Field: field, Input: input, Err: err}
}

// StoreError wraps a failure of the underlying store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

// NewStoreError wraps err unless it is nil or already a domain error the caller can act on.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyExists) || errors.Is(err, ErrStore) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// ValidationError rejects a submission before it reaches the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
