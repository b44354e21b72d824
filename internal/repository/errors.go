// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver-specific errors.
package repository

import "errors"

// ErrEmailExists is returned when registration collides with an existing
// account on the normalized email. Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrNoFields is returned when an update is requested with nothing to
// change. Handlers translate this into HTTP 400; no write is attempted.
var ErrNoFields = errors.New("no fields to update")
