// Package kv is the durable string-keyed store behind the social state store.
//
// Every backend scopes its keys to a namespace so Clear only removes this
// application's entries, even when the underlying Redis or Postgres is shared.
package kv

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("kv store closed")

type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	// Clear removes every key in the store's namespace.
	Clear(ctx context.Context) error
	Close() error
}

// Pinger is implemented by backends that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
