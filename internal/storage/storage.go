// Package storage defines the durable key-value contract the credential and
// preference stores persist through, plus the in-process backends.
package storage

import "context"

// Backend is a durable string key-value store.
type Backend interface {
	// Get returns the value for key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
