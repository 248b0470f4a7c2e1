// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/staranto/marquee/internal/cacheutil"
)

// keySuffix marks the sidecar file holding the clear-text key of an entry.
const keySuffix = ".key"

// File stores each key in its own file beneath Dir. The file name is the MD5
// of the key; a sidecar <name>.key holds the clear-text key so the store can
// be listed. Writes go through a temp file and rename so a reader never sees
// a half-written entry.
type File struct {
	Dir string
}

// NewFile returns a File store rooted at dir. An empty dir resolves to the
// "entries" subdirectory of the marquee cache directory.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		base, ok := cacheutil.Dir()
		if !ok {
			return nil, errors.New("unable to resolve a cache directory")
		}
		dir = filepath.Join(base, "entries")
	}
	return &File{Dir: dir}, nil
}

// Path returns where the entry for key lives on disk.
func (f *File) Path(key string) string {
	return filepath.Join(f.Dir, cacheutil.EncodeKey(key))
}

func (f *File) GetItem(_ context.Context, key string) ([]byte, bool, error) {
	b, err := os.ReadFile(f.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read from cache: %w", err)
	}
	return bytes.TrimSpace(b), true, nil
}

func (f *File) SetItem(_ context.Context, key string, value []byte) error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	p := f.Path(key)
	if err := writeAtomic(p, value); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := writeAtomic(p+keySuffix, []byte(key)); err != nil {
		return fmt.Errorf("failed to write cache key: %w", err)
	}
	return nil
}

func (f *File) RemoveItem(_ context.Context, key string) error {
	p := f.Path(key)
	for _, name := range []string{p, p + keySuffix} {
		if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove cache entry: %w", err)
		}
	}
	return nil
}

// Keys returns the clear-text keys of all entries that still have a value
// file next to their sidecar.
func (f *File) Keys(_ context.Context) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(f.Dir, "*"+keySuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to list cache: %w", err)
	}

	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, err := os.Stat(strings.TrimSuffix(m, keySuffix)); err != nil {
			continue
		}
		b, err := os.ReadFile(m)
		if err != nil {
			continue
		}
		keys = append(keys, string(b))
	}
	sort.Strings(keys)
	return keys, nil
}

// Purge removes entries older than hours. See cacheutil.Purge.
func (f *File) Purge(hours int) (int, error) {
	return cacheutil.Purge(f.Dir, hours)
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil { //nolint:mnd
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
