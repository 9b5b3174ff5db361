// Package lock serializes ledger writes per key, e.g. one (product, date) pair.
package lock

import "context"

// Locker grants exclusive access to a key until the returned release func is
// called. Acquire blocks until the key is free or ctx is done.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}
