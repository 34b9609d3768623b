// Package codec owns the single public parse entry point for diagram
// documents. It sniffs the root element of an XML document and routes to the
// matching dialect codec; the dialect packages assume they are handed the
// right dialect.
package codec

import "fmt"

// MalformedError reports a document that is not well-formed XML. It wraps the
// underlying parser error so callers can surface its text to the user.
type MalformedError struct {
	Err error
}

// Error implements the error interface.
func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed document: %v", e.Err)
}

// Unwrap returns the underlying parser error.
func (e *MalformedError) Unwrap() error {
	return e.Err
}

// Malformed wraps err as a MalformedError.
func Malformed(err error) error {
	return &MalformedError{Err: err}
}
