// Package localstore provides durable key/value storage on the local machine.
//
// It stands in for a browser's local storage: values are small JSON documents
// keyed by strings such as "lastUsedOrg_<userId>".
package localstore

import (
	"errors"
)

// Sentinel errors
var (
	// ErrKeyNotFound is returned when a key has no stored value.
	ErrKeyNotFound = errors.New("key not found")
)

// Store is the persistence capability used by the selection store and the session store.
// Reads and writes are synchronous; a successful Set is durable when it returns.
type Store interface {
	// Get returns the raw value for key.
	// Returns ErrKeyNotFound if nothing is stored under key.
	Get(key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}
