// Package storage abstracts the persisted cart representation as an opaque
// serialized blob per session key, so the cart store can run against redis,
// postgres or an in-memory map interchangeably. Concurrent writers to the
// same key resolve last-write-wins.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("blob not found")

type Storage interface {
	// Read returns the blob stored under key, or ErrNotFound when absent.
	Read(c context.Context, key string) ([]byte, error)
	Write(c context.Context, key string, blob []byte) error
	Delete(c context.Context, key string) error
}
