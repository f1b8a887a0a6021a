// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

// Package srcfile provides lazily-initialized, cached access to the
// textual game-server source files (objects.srv, houses.dat, sector
// files, ...), memory-mapping the backing file and decoding it as
// Latin-1. The lazy-init/cache-by-name shape is adapted from the
// teacher SDK's internal/uofile.File.
package srcfile

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"codeberg.org/go-mmap/mmap"
	"golang.org/x/text/encoding/charmap"
)

// File states.
const (
	stateNew int32 = iota
	stateReady
	stateClosed
)

// Errors returned by File.
var (
	ErrNotFound    = errors.New("srcfile: source file not found")
	ErrClosed      = errors.New("srcfile: reader is closed")
)

// File is a lazily-opened, memory-mapped text source file decoded from
// Latin-1 into UTF-8 on first access.
type File struct {
	path   string
	mapped *mmap.File
	text   string
	state  atomic.Int32
	once   sync.Once
	openErr error
}

// New returns a File bound to path. No I/O happens until Text() is called.
func New(path string) *File {
	return &File{path: path}
}

// Text returns the full file contents decoded as Latin-1, opening and
// mapping the file on first call.
func (f *File) Text() (string, error) {
	f.once.Do(f.open)
	if f.openErr != nil {
		return "", f.openErr
	}
	if f.state.Load() == stateClosed {
		return "", ErrClosed
	}
	return f.text, nil
}

func (f *File) open() {
	if _, err := os.Stat(f.path); err != nil {
		if os.IsNotExist(err) {
			f.openErr = fmt.Errorf("%w: %s", ErrNotFound, f.path)
		} else {
			f.openErr = fmt.Errorf("srcfile: stat %s: %w", f.path, err)
		}
		return
	}

	m, err := mmap.Open(f.path)
	if err != nil {
		f.openErr = fmt.Errorf("srcfile: mmap %s: %w", f.path, err)
		return
	}
	f.mapped = m

	info, err := os.Stat(f.path)
	if err != nil {
		f.openErr = fmt.Errorf("srcfile: stat %s: %w", f.path, err)
		return
	}

	raw := make([]byte, info.Size())
	if _, err := m.ReadAt(raw, 0); err != nil {
		f.openErr = fmt.Errorf("srcfile: read %s: %w", f.path, err)
		return
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		f.openErr = fmt.Errorf("srcfile: latin-1 decode %s: %w", f.path, err)
		return
	}

	f.text = string(decoded)
	f.state.Store(stateReady)
}

// Close releases the memory mapping.
func (f *File) Close() error {
	if f.state.Swap(stateClosed) == stateClosed {
		return nil
	}
	if f.mapped != nil {
		return f.mapped.Close()
	}
	return nil
}

// Cache lazily opens and caches Files by path, so repeated requests for
// the same source only map the file once.
type Cache struct {
	files sync.Map // path -> *File
}

// Get returns the cached File for path, creating it if necessary.
func (c *Cache) Get(path string) *File {
	if f, ok := c.files.Load(path); ok {
		return f.(*File)
	}
	actual, _ := c.files.LoadOrStore(path, New(path))
	return actual.(*File)
}

// CloseAll closes every File opened through this cache.
func (c *Cache) CloseAll() {
	c.files.Range(func(key, value any) bool {
		value.(*File).Close()
		c.files.Delete(key)
		return true
	})
}
