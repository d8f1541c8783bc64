package model

import (
	"errors"
	"fmt"
)

// Error taxonomy for the gateway. Validation and conversion errors are
// caught before any remote call; read and write errors wrap RPC failures.
var (
	ErrBusy      = errors.New("another action is still pending")
	ErrNoAccount = errors.New("no session account configured")
)

// ValidationError missing or invalid user input
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConversionError malformed numeric text
type ConversionError struct {
	Input string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("malformed amount %q", e.Input)
}

// ReadError a snapshot batch failure; the whole batch fails as one
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to load ideas: %v", e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError a rejected or reverted remote write
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
