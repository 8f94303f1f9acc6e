// Package tenant provides the tenant scoping token for shared-database multi-tenancy.
// Every repository and ledger method takes an ID as its first parameter; the only way
// to obtain one is Resolve (or the HTTP middleware that calls it), so no storage call
// can be made without a validated tenant.
package tenant

import (
	"errors"

	"github.com/google/uuid"
)

// ErrNoTenant is returned when a tenant identifier is absent or not parseable.
// This is a hard stop: no downstream operation may proceed.
var ErrNoTenant = errors.New("no tenant")

// ID is a validated tenant identifier. The zero value is unusable and the
// field is unexported so callers cannot fabricate one around Resolve.
type ID struct {
	value uuid.UUID
}

// Resolve validates a caller-supplied tenant identifier and returns the
// scoping token used by every subsequent storage operation.
func Resolve(raw string) (ID, error) {
	if raw == "" {
		return ID{}, ErrNoTenant
	}
	u, err := uuid.Parse(raw)
	if err != nil || u == uuid.Nil {
		return ID{}, ErrNoTenant
	}
	return ID{value: u}, nil
}

// MustResolve resolves or panics. Use only in tests and seeds.
func MustResolve(raw string) ID {
	t, err := Resolve(raw)
	if err != nil {
		panic("tenant: " + err.Error())
	}
	return t
}

// IsZero reports whether the token was never resolved.
func (t ID) IsZero() bool {
	return t.value == uuid.Nil
}

// UUID returns the underlying UUID for query parameters.
func (t ID) UUID() uuid.UUID {
	return t.value
}

func (t ID) String() string {
	return t.value.String()
}
