// Package errcode defines the coded error values returned by the ledger
// components. Codes are scoped per component: the same number can carry a
// different meaning in the card, grading and ownership packages, so callers
// should compare against a package's sentinels with errors.Is and only use
// the numeric code for wire compatibility.
package errcode

import "errors"

// Error is a domain failure with a stable numeric code.
type Error struct {
	Code    uint32 `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"error"`
}

// New returns a new coded error. Each component declares its own values.
func New(code uint32, kind, message string) *Error {
	return &Error{Code: code, Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// CodeOf returns the numeric code carried by err, if any.
func CodeOf(err error) (uint32, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code, true
	}
	return 0, false
}

// KindOf returns the kind carried by err, or "" for uncoded errors.
func KindOf(err error) string {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// Kinds shared across components. They describe the shape of a failure so
// transports can map it without knowing which component raised it.
const (
	KindNotAuthorized     = "not-authorized"
	KindExists            = "exists"
	KindAlreadyGraded     = "already-graded"
	KindNotVerifiedGrader = "not-verified-grader"
	KindAlreadyRegistered = "already-registered"
	KindNotFound          = "not-found"
	KindNotOwner          = "not-owner"

	// KindInvalidPrincipal labels principal.ErrInvalid, which carries no code.
	KindInvalidPrincipal = "invalid-principal"
)
