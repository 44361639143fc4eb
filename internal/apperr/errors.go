// Package apperr defines the application error taxonomy: sentinel
// constructors plus an Is*
// predicate per type, so callers branch on taxonomy instead of string
// matching.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindConflict          Kind = "CONFLICT"
	KindValidation        Kind = "VALIDATION_ERROR"
	KindPolicyUnavailable Kind = "POLICY_UNAVAILABLE"
	KindSnapshotMissing   Kind = "SNAPSHOT_MISSING"
	KindSnapshotInvalid   Kind = "SNAPSHOT_INVALID"
	KindDBFailure         Kind = "DB_FAILURE"
	KindEmailDispatch     Kind = "EMAIL_DISPATCH_FAILURE"
	KindQuotaExhausted    Kind = "QUOTA_EXHAUSTED"
	KindNoActiveGoals     Kind = "NO_ACTIVE_GOALS"
)

// statusOf maps a Kind to its surfaced HTTP status, for the handful of kinds
// that are ever surfaced to an HTTP caller (§7 "Recovery policy").
var statusOf = map[Kind]int{
	KindNotFound:   http.StatusNotFound,
	KindConflict:   http.StatusBadRequest,
	KindValidation: http.StatusBadRequest,
	KindDBFailure:  http.StatusInternalServerError,
}

// Error is the application error type. Recoverable kinds
// (PolicyUnavailable, SnapshotMissing, SnapshotInvalid, EmailDispatchFailure)
// are never meant to propagate to an HTTP response; callers branch on Kind
// and recover locally per §7.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status a router layer would use to surface
// this error, defaulting to 500 for kinds never meant to reach a caller.
func (e *Error) StatusCode() int {
	if s, ok := statusOf[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func newErr(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func NotFound(message string) *Error          { return newErr(KindNotFound, message) }
func Conflict(message string) *Error          { return newErr(KindConflict, message) }
func Validation(message string) *Error        { return newErr(KindValidation, message) }
func PolicyUnavailable(message string) *Error { return newErr(KindPolicyUnavailable, message) }
func SnapshotMissing(message string) *Error   { return newErr(KindSnapshotMissing, message) }
func SnapshotInvalid(message string) *Error   { return newErr(KindSnapshotInvalid, message) }
func EmailDispatchFailure(message string) *Error {
	return newErr(KindEmailDispatch, message)
}
func QuotaExhausted(message string) *Error { return newErr(KindQuotaExhausted, message) }
func NoActiveGoals(message string) *Error  { return newErr(KindNoActiveGoals, message) }

func DBFailure(message string, err error) *Error {
	return &Error{Kind: KindDBFailure, Message: message, Err: err}
}

// WithErr attaches an underlying error for logging/unwrapping.
func (e *Error) WithErr(err error) *Error {
	e.Err = err
	return e
}

func Is(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

func IsNotFound(err error) bool          { return Is(err, KindNotFound) }
func IsConflict(err error) bool          { return Is(err, KindConflict) }
func IsValidation(err error) bool        { return Is(err, KindValidation) }
func IsPolicyUnavailable(err error) bool { return Is(err, KindPolicyUnavailable) }
func IsSnapshotMissing(err error) bool   { return Is(err, KindSnapshotMissing) }
func IsSnapshotInvalid(err error) bool   { return Is(err, KindSnapshotInvalid) }
func IsDBFailure(err error) bool         { return Is(err, KindDBFailure) }
func IsEmailDispatchFailure(err error) bool {
	return Is(err, KindEmailDispatch)
}
func IsQuotaExhausted(err error) bool { return Is(err, KindQuotaExhausted) }
func IsNoActiveGoals(err error) bool  { return Is(err, KindNoActiveGoals) }

// Recoverable reports whether err is one of the locally-recovered kinds:
// PolicyUnavailable, SnapshotMissing, SnapshotInvalid,
// EmailDispatchFailure, NoActiveGoals.
func Recoverable(err error) bool {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return false
	}
	switch appErr.Kind {
	case KindPolicyUnavailable, KindSnapshotMissing, KindSnapshotInvalid, KindEmailDispatch, KindNoActiveGoals:
		return true
	}
	return false
}
