// Package admin implements the single transferable admin principal that gates
// privileged mutations in the card and grading registries. Each registry owns
// its own Authority; two registries never share one.
package admin

import (
	"errors"

	"github.com/jmerrifield20/cardledger/internal/principal"
)

// ErrNotAdmin is returned when the caller does not hold the authority.
// Registries translate it into their own coded error.
var ErrNotAdmin = errors.New("caller is not the admin")

// ErrInvalidPrincipal is returned when an empty principal is offered as admin.
var ErrInvalidPrincipal = principal.ErrInvalid

// Authority is an in-memory admin holder.
//
// It carries no lock of its own: the registry embedding it already serialises
// mutations, and the admin check has to happen under that same lock as the
// mutation it gates.
type Authority struct {
	holder principal.Principal
}

// New returns an Authority held by bootstrap.
func New(bootstrap principal.Principal) (*Authority, error) {
	if !bootstrap.Valid() {
		return nil, ErrInvalidPrincipal
	}
	return &Authority{holder: bootstrap}, nil
}

// Current returns the current holder.
func (a *Authority) Current() principal.Principal {
	return a.holder
}

// IsAdmin reports whether caller currently holds the authority.
func (a *Authority) IsAdmin(caller principal.Principal) bool {
	return caller.Valid() && caller == a.holder
}

// Transfer hands the authority from caller to newAdmin in one step.
func (a *Authority) Transfer(caller, newAdmin principal.Principal) error {
	if !a.IsAdmin(caller) {
		return ErrNotAdmin
	}
	if !newAdmin.Valid() {
		return ErrInvalidPrincipal
	}
	a.holder = newAdmin
	return nil
}
