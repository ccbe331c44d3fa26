package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema signals an invalid record schema declaration.
	ErrSchema = errors.New("invalid schema")
	// ErrConversion signals a raw value that cannot be coerced to a field kind.
	ErrConversion = errors.New("conversion failed")
	// ErrValidation signals a coerced value that violates a field constraint.
	ErrValidation = errors.New("validation failed")
	// ErrUnboundParameter signals a query parameter used before being set.
	ErrUnboundParameter = errors.New("unbound query parameter")
	// ErrUnknownStyle signals a style name missing from a registry.
	ErrUnknownStyle = errors.New("unknown style")
	// ErrStyleLoad signals a registered style whose implementation failed to load.
	ErrStyleLoad = errors.New("style failed to load")
	// ErrRecordNotFound signals a missing stored record.
	ErrRecordNotFound = errors.New("record not found")
	// ErrRecordExists signals a save that would overwrite a stored record.
	ErrRecordExists = errors.New("record already exists")
)

// SchemaError reports a bad field declaration on a record schema.
type SchemaError struct {
	Style  string
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s: %s", ErrSchema, e.Style, e.Reason)
	}
	return fmt.Sprintf("%s: %s.%s: %s", ErrSchema, e.Style, e.Field, e.Reason)
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// ConversionError reports a value that could not be coerced to Kind.
type ConversionError struct {
	Field string
	Kind  string
	Input any
	Err   error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("%s: %s: cannot use %#v as %s", ErrConversion, e.Field, e.Input, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConversion}
	}
	return []error{ErrConversion, e.Err}
}

// ValidationError reports a required or allowed-value violation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// UnboundParameterError reports a query compiled before Param was set.
type UnboundParameterError struct {
	Style string
	Param string
}

func (e *UnboundParameterError) Error() string {
	return fmt.Sprintf("%s: %s query has no %s", ErrUnboundParameter, e.Style, e.Param)
}

func (e *UnboundParameterError) Unwrap() error { return ErrUnboundParameter }

// UnknownStyleError reports a style name that no registry entry matches.
type UnknownStyleError struct {
	Registry string
	Style    string
}

func (e *UnknownStyleError) Error() string {
	return fmt.Sprintf("%s: %s %q", ErrUnknownStyle, e.Registry, e.Style)
}

func (e *UnknownStyleError) Unwrap() error { return ErrUnknownStyle }

// StyleLoadError reports a style registered as failed, carrying the original cause.
type StyleLoadError struct {
	Registry string
	Style    string
	Cause    error
}

func (e *StyleLoadError) Error() string {
	return fmt.Sprintf("%s: %s %q: %v", ErrStyleLoad, e.Registry, e.Style, e.Cause)
}

func (e *StyleLoadError) Unwrap() []error { return []error{ErrStyleLoad, e.Cause} }

// RecordNotFoundError wraps ErrRecordNotFound with the record coordinates.
type RecordNotFoundError struct {
	Style string
	Name  string
}

func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("%s: %s/%s", ErrRecordNotFound, e.Style, e.Name)
}

func (e *RecordNotFoundError) Unwrap() error { return ErrRecordNotFound }

// RecordExistsError wraps ErrRecordExists with the record coordinates.
type RecordExistsError struct {
	Style string
	Name  string
}

func (e *RecordExistsError) Error() string {
	return fmt.Sprintf("%s: %s/%s", ErrRecordExists, e.Style, e.Name)
}

func (e *RecordExistsError) Unwrap() error { return ErrRecordExists }
