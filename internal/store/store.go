// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"errors"
)

// Store is a string-keyed key-value store. It is the only storage contract
// the cache depends on. Implementations must be safe for concurrent use.
type Store interface {
	// GetItem returns the raw bytes for key. ok=false if nothing is stored.
	GetItem(ctx context.Context, key string) ([]byte, bool, error)
	// SetItem overwrites the value for key. It must return an error if the
	// write did not happen (quota, disk, network) rather than drop it.
	SetItem(ctx context.Context, key string, value []byte) error
	// RemoveItem removes key; absence is not an error.
	RemoveItem(ctx context.Context, key string) error
}

// Lister is implemented by stores that can enumerate their keys.
type Lister interface {
	Keys(ctx context.Context) ([]string, error)
}

// ErrNotListable is returned by Keys when the underlying store can't
// enumerate its keys.
var ErrNotListable = errors.New("store does not support listing keys")

// Keys lists the keys of s if it implements Lister.
func Keys(ctx context.Context, s Store) ([]string, error) {
	if l, ok := s.(Lister); ok {
		return l.Keys(ctx)
	}
	return nil, ErrNotListable
}
