// Package repository defines sentinel error values reused across the
// repositories so handlers can map failure scenarios onto HTTP codes
// without inspecting driver errors.
package repository

import "errors"

// ErrEmailExists is returned when an insert violates the unique email
// constraint. Handlers translate it into HTTP 409.
var ErrEmailExists = errors.New("email already exists")
