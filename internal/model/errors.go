// Package model holds the data types shared by the deck runtime, the
// reporter runtime, and the public facade: records, tracks, the reporter
// contract, and the tagged error type. It has no dependency on either
// runtime package, which is what lets both import it without a cycle.
package model

import (
	"errors"
	"fmt"
)

// Kind categorizes an Error without relying on string matching.
type Kind string

const (
	KindBadRegistration       Kind = "bad_registration"
	KindCapacityExhausted     Kind = "capacity_exhausted"
	KindMissingRecord         Kind = "missing_record"
	KindEmptyRoster           Kind = "empty_roster"
	KindChannelSendFailure    Kind = "channel_send_failure"
	KindChannelReceiveFailure Kind = "channel_receive_failure"
	KindReplyTimeout          Kind = "reply_timeout"
	KindProtocolViolation     Kind = "protocol_violation"
	KindNothingNewToReport    Kind = "nothing_new_to_report"
	KindIO                    Kind = "io"
	KindUtf8                  Kind = "utf8"
	KindEnvVarMissing         Kind = "env_var_missing"
	KindHTTPClient            Kind = "http_client"
)

// Error is the single tagged error type surfaced by this module. Op names
// the operation that failed (e.g. "register", "get_record"); Kind is the
// stable category; Inner is an optional wrapped collaborator error.
type Error struct {
	Op    string
	Kind  Kind
	Msg   string
	Inner error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		return fmt.Sprintf("beatkeeper: %s: %s", e.Op, msg)
	}
	return fmt.Sprintf("beatkeeper: %s", msg)
}

func (e *Error) Unwrap() error { return e.Inner }

// Is supports errors.Is comparison by Kind, matching what callers usually
// want ("is this a capacity error?") instead of pointer identity.
func (e *Error) Is(target error) bool {
	var te *Error
	if errors.As(target, &te) {
		return e.Kind == te.Kind
	}
	return false
}

// New builds an Error with no wrapped cause.
func New(op string, kind Kind, msg string) *Error {
	return &Error{Op: op, Kind: kind, Msg: msg}
}

// Wrap tags an external error (I/O, env lookup, HTTP client) with a Kind.
// A nil inner returns nil, so call sites can write `return Wrap(...)` right
// after a fallible call without an extra nil check.
func Wrap(op string, kind Kind, inner error) *Error {
	if inner == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Msg: inner.Error(), Inner: inner}
}

// Is reports whether err is a *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
