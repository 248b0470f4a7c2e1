// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache implements a durable response cache with a global
// time-to-live and a stale fallback for failed refreshes. Entries are written
// to a store.Store as {"data":...,"timestamp":...} JSON documents and expire
// at read time only; nothing in this package ever deletes an entry.
package cache
