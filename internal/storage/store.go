// Package storage holds the credential store: a small opaque key-value store
// for the site URL, the user profile, API credentials and the device id.
package storage

import "errors"

var ErrClosed = errors.New("store is closed")

// Store is a string key-value store. Get reports whether the key exists.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}
