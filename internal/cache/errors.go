// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyKey is returned for operations on the empty key.
	ErrEmptyKey = errors.New("cache key must not be empty")

	// ErrStorage matches every *StorageError via errors.Is.
	ErrStorage = errors.New("cache storage failure")
)

// StorageError reports a failed read or write against the underlying store.
// These are never masked by the cache.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("cache %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrStorage) match any StorageError.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }
