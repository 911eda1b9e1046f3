package repository

import (
	"errors"
	"fmt"
)

var (
	ErrSchema = errors.New("schema error")
	ErrWrite  = errors.New("write error")
)

// StoreKind classifies a StoreError.
type StoreKind int

const (
	SchemaError StoreKind = iota
	WriteError
)

func (k StoreKind) String() string {
	if k == SchemaError {
		return "schema"
	}
	return "write"
}

// StoreError is returned by every failed store mutation.
type StoreError struct {
	Kind StoreKind
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s error during %s: %v", e.Kind, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrSchema / ErrWrite by kind.
func (e *StoreError) Is(target error) bool {
	switch target {
	case ErrSchema:
		return e.Kind == SchemaError
	case ErrWrite:
		return e.Kind == WriteError
	}
	return false
}

// NewSchemaError wraps a DDL failure.
func NewSchemaError(op string, err error) error {
	return &StoreError{Kind: SchemaError, Op: op, Err: err}
}

// NewWriteError wraps an insert failure.
func NewWriteError(op string, err error) error {
	return &StoreError{Kind: WriteError, Op: op, Err: err}
}
