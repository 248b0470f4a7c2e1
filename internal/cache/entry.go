// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entry is a single cached payload. Timestamp is the write time in
// milliseconds since the Unix epoch, never the origin's notion of when the
// data was produced.
type Entry[T any] struct {
	Data      T     `json:"data"`
	Timestamp int64 `json:"timestamp"`
}

// NewEntry stamps data with now.
func NewEntry[T any](data T, now time.Time) Entry[T] {
	return Entry[T]{Data: data, Timestamp: now.UnixMilli()}
}

// StoredAt returns the write time.
func (e Entry[T]) StoredAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Age returns how long ago the entry was written relative to now.
func (e Entry[T]) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt())
}

// Fresh reports whether the entry is younger than ttl. An entry exactly ttl
// old is stale.
func (e Entry[T]) Fresh(now time.Time, ttl time.Duration) bool {
	return e.Age(now) < ttl
}

// Encode serializes the entry as one JSON document.
func (e Entry[T]) Encode() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache entry: %w", err)
	}
	return b, nil
}

// DecodeEntry parses a stored entry. A document without a timestamp is
// considered corrupt since its age can't be known.
func DecodeEntry[T any](raw []byte) (Entry[T], error) {
	var probe struct {
		Data      json.RawMessage `json:"data"`
		Timestamp *int64          `json:"timestamp"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Entry[T]{}, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	if probe.Timestamp == nil {
		return Entry[T]{}, fmt.Errorf("failed to decode cache entry: missing timestamp")
	}

	e := Entry[T]{Timestamp: *probe.Timestamp}
	if len(probe.Data) > 0 {
		if err := json.Unmarshal(probe.Data, &e.Data); err != nil {
			return Entry[T]{}, fmt.Errorf("failed to decode cache entry data: %w", err)
		}
	}
	return e, nil
}
