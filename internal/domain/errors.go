package domain

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes failures surfaced by the core components.
type ErrorKind string

const (
	// KindGeneration: the generative provider call failed or returned no content.
	KindGeneration ErrorKind = "GENERATION"

	// KindParse: the generated catalog is not a well-formed list of apps.
	KindParse ErrorKind = "PARSE"

	// KindEmbedding: the embedding provider failed or returned no usable vector.
	KindEmbedding ErrorKind = "EMBEDDING"

	// KindStore: an insert or query against the store failed.
	KindStore ErrorKind = "STORE"

	// KindNoMatch: the query succeeded but there were no candidate rows.
	KindNoMatch ErrorKind = "NO_MATCH"

	// KindInvalidQuery: the query text is empty.
	KindInvalidQuery ErrorKind = "INVALID_QUERY"
)

// Error carries a kind, the operation that failed and the underlying cause.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// Sentinels for errors.Is. A wrapped *Error matches the sentinel of its kind.
var (
	ErrGeneration   = &Error{Kind: KindGeneration}
	ErrParse        = &Error{Kind: KindParse}
	ErrEmbedding    = &Error{Kind: KindEmbedding}
	ErrStore        = &Error{Kind: KindStore}
	ErrNoMatch      = &Error{Kind: KindNoMatch}
	ErrInvalidQuery = &Error{Kind: KindInvalidQuery}
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
	return string(e.Kind)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// Wrap annotates err with a kind and operation. A nil err stays nil, and an
// err that already carries a kind keeps it.
func Wrap(kind ErrorKind, op string, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a new *Error of the given kind.
func Errorf(kind ErrorKind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind carried by err, or "" when err has none.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
