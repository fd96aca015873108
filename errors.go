package fiql

import (
	"errors"
	"fmt"
)

// Sentinel errors for the two FIQL error kinds.
// These can be used with errors.Is() for error handling.
var (
	// ErrFormat indicates a malformed FIQL string: a misplaced operator,
	// adjacent operands, unbalanced parentheses or a string without any
	// constraint. Only returned by parsing.
	ErrFormat = errors.New("fiql: format error")

	// ErrObject indicates an invalid argument to a direct construction call:
	// an unknown operator symbol, a malformed comparison or a missing parent.
	ErrObject = errors.New("fiql: object error")
)

// Error provides a structured error for both FIQL error kinds.
//
// Example usage:
//
//	expr, err := fiql.Parse(r.URL.Query().Get("filter"))
//	if err != nil {
//	    var fiqlErr *fiql.Error
//	    if errors.As(err, &fiqlErr) && fiqlErr.Input != "" {
//	        log.Printf("bad filter at offset %d: %v", fiqlErr.Offset, err)
//	    }
//	    return err
//	}
type Error struct {
	// Kind is ErrFormat or ErrObject.
	Kind error

	// Message is a human-readable error description.
	Message string

	// Input is the FIQL string being parsed, empty for construction errors.
	Input string

	// Offset is the byte offset in Input where the problem was detected.
	// Only meaningful when Input is set.
	Offset int

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Input != "" {
		msg = fmt.Sprintf("%s (at offset %d of %q)", msg, e.Offset, e.Input)
	}
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Kind, msg)
}

// Unwrap implements error unwrapping for errors.Is() and errors.As().
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func newObjectError(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrObject, Message: fmt.Sprintf(format, args...)}
}

func newFormatError(input string, offset int, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    ErrFormat,
		Message: fmt.Sprintf(format, args...),
		Input:   input,
		Offset:  offset,
	}
}

// IsFormatError returns true if the error reports a malformed FIQL string.
//
// Example usage:
//
//	if fiql.IsFormatError(err) {
//	    http.Error(w, err.Error(), http.StatusBadRequest)
//	}
func IsFormatError(err error) bool {
	return errors.Is(err, ErrFormat)
}

// IsObjectError returns true if the error reports an invalid construction argument.
func IsObjectError(err error) bool {
	return errors.Is(err, ErrObject)
}
