package service

import "errors"

var (
	// ErrValidation covers missing registration fields.
	ErrValidation = errors.New("email and password are required")

	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is deliberately generic: unknown email and
	// wrong password produce the same answer.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrQuotaExceeded rejects an upload that would push the user's
	// used bytes over the configured quota.
	ErrQuotaExceeded = errors.New("upload would exceed storage quota")

	// ErrFileNotFound covers both a missing record and a record owned
	// by someone else, so existence is never confirmed to non-owners.
	ErrFileNotFound = errors.New("file not found")
)
