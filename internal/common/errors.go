// Package common defines shared constants and sentinel errors used across
// KeepSync components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Blob store errors.
	ErrBlobNotFound = errors.New("blob not found")
	ErrNoRemoteBlob = errors.New("no remote copy for attachment")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Model errors.
	ErrUnknownCollection = errors.New("unknown collection")
)
