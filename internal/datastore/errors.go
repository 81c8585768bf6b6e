package datastore

import (
	"fmt"
	"strings"
)

// FetchError reports a failed catalog read.
type FetchError struct {
	Op     string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SubmitError reports a rejected or failed request insert. Code carries the
// data service's error code when one was returned.
type SubmitError struct {
	Op     string
	Status int
	Code   string
	Err    error
}

func (e *SubmitError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, ": code %s", e.Code)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *SubmitError) Unwrap() error { return e.Err }

// Postgres error codes the data service surfaces on insert.
const (
	CodeForeignKeyViolation = "23503"
	CodeNotNullViolation    = "23502"
	CodeInsufficientPriv    = "42501"
)

// UnknownLaptop reports whether the insert referenced a laptop that does
// not exist.
func (e *SubmitError) UnknownLaptop() bool { return e.Code == CodeForeignKeyViolation }

// ServiceError is the error body returned by a PostgREST endpoint.
type ServiceError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *ServiceError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "data service error"
	}
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}
