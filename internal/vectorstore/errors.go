package vectorstore

import (
	"errors"
	"fmt"
)

// ErrorKind classifies vector store failures so callers match by kind,
// never by message substring.
type ErrorKind int

const (
	// KindUnknown covers unclassified faults.
	KindUnknown ErrorKind = iota
	// KindAlreadyExists means the collection already exists. Treated as
	// success by EnsureCollection.
	KindAlreadyExists
	// KindNotFound means the collection or point does not exist.
	KindNotFound
	// KindDimensionMismatch means a vector's length does not match the
	// collection dimension. A fatal misconfiguration.
	KindDimensionMismatch
	// KindUnavailable covers transient connection and timeout faults.
	KindUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindAlreadyExists:
		return "already_exists"
	case KindNotFound:
		return "not_found"
	case KindDimensionMismatch:
		return "dimension_mismatch"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// StoreError is a classified vector store failure.
type StoreError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("vectorstore %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewError wraps err with a kind and operation name.
func NewError(kind ErrorKind, op string, err error) *StoreError {
	return &StoreError{Kind: kind, Op: op, Err: err}
}

// KindOf returns the error's kind, or KindUnknown for unclassified errors.
func KindOf(err error) ErrorKind {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// IsAlreadyExists reports whether err is an already-exists failure.
func IsAlreadyExists(err error) bool { return KindOf(err) == KindAlreadyExists }

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsUnavailable reports whether err is a transient availability failure.
func IsUnavailable(err error) bool { return KindOf(err) == KindUnavailable }
