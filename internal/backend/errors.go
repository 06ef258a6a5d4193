package backend

import (
	"errors"
	"fmt"
)

// Kind classifies an adapter failure. Validation kinds are raised
// locally and never involve a subprocess; the rest describe what went
// wrong at or after the process boundary.
type Kind string

// Error kinds
const (
	KindInvalidIdentifier   Kind = "invalid_identifier"
	KindUnsafeArgument      Kind = "unsafe_argument"
	KindReadOnly            Kind = "read_only"
	KindBackend             Kind = "backend_error"
	KindTimeout             Kind = "timeout"
	KindMalformedResponse   Kind = "malformed_response"
	KindMetadataUnavailable Kind = "metadata_unavailable"
	KindLoadFailed          Kind = "load_failed"
	KindConnectionLost      Kind = "connection_lost"
)

// Error is the structured failure for every adapter operation.
// Detail and Stderr may contain raw diagnostic text (paths, stack
// frames); anything shown to a user must go through the sanitizer
// first.
type Error struct {
	Kind   Kind
	Op     string // backend operation, e.g. "list", "create", "stats"
	Detail string
	Stderr string // raw stderr from the subprocess, when captured
	Err    error  // wrapped cause
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// IsValidation reports whether the failure was raised locally, before
// any subprocess was spawned. Validation messages are human-authored
// and safe to show without sanitization. Read-only rejections count:
// they abort mutations the same way a bad identifier does.
func (e *Error) IsValidation() bool {
	return e.Kind == KindInvalidIdentifier || e.Kind == KindUnsafeArgument || e.Kind == KindReadOnly
}

// IsTimeout reports whether the invocation hit its deadline. Timeouts
// on mutations are ambiguous: the backend may have applied the change.
func (e *Error) IsTimeout() bool { return e.Kind == KindTimeout }

// KindOf extracts the Kind from any error in the chain. Returns ""
// for errors that did not originate here.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// RawText returns the raw diagnostic text carried by an adapter error:
// stderr when present, detail otherwise, falling back to Error().
// This is the input the sanitizer works on.
func RawText(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	if e.Stderr != "" {
		return e.Stderr
	}
	if e.Detail != "" {
		return e.Detail
	}
	return e.Error()
}
