package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. day of week out of range, start time not before end time).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrCapacityExceeded is returned by the service when creating a slot would
// put more than MaxSlotsPerDay recurring slots on one weekday.
// Handlers should map this to HTTP 409 Conflict.
var ErrCapacityExceeded = errors.New("capacity exceeded")
