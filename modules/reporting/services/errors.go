package services

import (
	"errors"
	"fmt"
)

type FailureKind string

const (
	// FailureConnection aborts the run when hit before any work starts.
	FailureConnection FailureKind = "connection"
	// FailureFetch downgrades to an empty/default value at the call site.
	FailureFetch FailureKind = "fetch"
)

// StoreError is a typed failure from the external record store.
//
// Recovery policy:
//
//	connection  -> abort the run (non-zero exit from the CLI)
//	fetch       -> log, substitute the zero value, keep going
//	anything else while processing a node -> abandon that node's chain,
//	             continue with the next seed user
type StoreError struct {
	Op    string
	Kind  FailureKind
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s failure: %v", e.Op, e.Kind, e.Cause)
}

func (e *StoreError) Unwrap() error { return e.Cause }

func NewConnectionError(op string, cause error) *StoreError {
	return &StoreError{Op: op, Kind: FailureConnection, Cause: cause}
}

func NewFetchError(op string, cause error) *StoreError {
	return &StoreError{Op: op, Kind: FailureFetch, Cause: cause}
}

func IsFetchError(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == FailureFetch
}
