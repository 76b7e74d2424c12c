package services

import "errors"

// Sentinel errors the handlers map onto the HTTP error taxonomy.
var (
	// ErrEmailExists is returned when a registration reuses an email.
	ErrEmailExists = errors.New("email already in use by another account")

	// ErrInvalidCredentials is returned when a login password does not match.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrPropertyUnavailable is returned when booking a property whose
	// availability flag is not Available.
	ErrPropertyUnavailable = errors.New("property is not available for booking")

	// ErrDuplicateBooking is returned when the renter already has a pending
	// booking for the same property.
	ErrDuplicateBooking = errors.New("a pending booking already exists for this property")

	// ErrNotOwner is returned when the acting user does not own the property
	// a mutation targets.
	ErrNotOwner = errors.New("property is not owned by this user")

	// ErrBookingMismatch is returned when a status change names a property
	// that is not the one the booking was made against.
	ErrBookingMismatch = errors.New("booking does not belong to the given property")
)
