package transform

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure returned by a Transformer is an *Error whose
// Kind is one of these, so callers can match with errors.Is.
var (
	// ErrUnknownType: a content, field or block type id is not registered.
	ErrUnknownType = errors.New("unknown type")
	// ErrShapeMismatch: a value does not have the shape its definition
	// requires, e.g. a list where a single item is expected.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrMissingRequiredItem: a non-collection region was submitted without
	// its item.
	ErrMissingRequiredItem = errors.New("missing required item")
	// ErrDisallowedChild: a group holds a child its type does not allow.
	ErrDisallowedChild = errors.New("disallowed child block")
	// ErrStaleSchema: a saved tree references a type or section that no
	// longer exists.
	ErrStaleSchema = errors.New("stale schema")
	// ErrInvalidValue: a submitted field value does not parse for its type.
	ErrInvalidValue = errors.New("invalid field value")
)

// Error is a typed transform failure.
type Error struct {
	Kind error
	// Path locates the offending element, e.g. "regions.links[2].url".
	Path   string
	Detail string
}

func (e *Error) Error() string {
	msg := "transform: " + e.Kind.Error()
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, path, format string, args ...any) *Error {
	return &Error{Kind: kind, Path: path, Detail: fmt.Sprintf(format, args...)}
}

// IsTransformError reports whether err carries a typed transform failure.
// The API layer reports these as validation errors.
func IsTransformError(err error) bool {
	var te *Error
	return errors.As(err, &te)
}
