package users

import "errors"

var (
	// ErrUserNotFound is returned when no active user matches the lookup
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when the email is already registered
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidEmail is returned for a missing or malformed email
	ErrInvalidEmail = errors.New("a valid email is required")

	// ErrWeakPassword is returned when the password is shorter than 8 characters
	ErrWeakPassword = errors.New("password must be at least 8 characters")

	// ErrInvalidCode is returned when a verification or reset code does not match
	ErrInvalidCode = errors.New("invalid code")

	// ErrCodeExpired is returned when a verification or reset code has expired
	ErrCodeExpired = errors.New("code has expired")
)
