// Package principal holds the caller identity type shared by the ledger
// components. A Principal is opaque and already authenticated by whatever sits
// in front of the ledger; nothing here verifies it.
package principal

import (
	"context"
	"errors"
)

// ErrInvalid is returned when an empty principal is used as a caller or target.
var ErrInvalid = errors.New("principal must not be empty")

// Principal identifies a caller, e.g. "SP1OWNER000000000000000000000000001".
type Principal string

// Valid reports whether p can act as a caller. The empty principal cannot.
func (p Principal) Valid() bool {
	return p != ""
}

func (p Principal) String() string {
	return string(p)
}

type ctxKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal stored in ctx, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok && p.Valid()
}
