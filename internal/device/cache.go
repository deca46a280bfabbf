// cache.go implements the on-disk derived-table cache §4.1/§6 describe:
// each table Derive produces is a pure function of the device, so it is
// safe to persist as an opaque binary blob under one cache directory, one
// file per device, named by the device's content key plus the table name. A read failure (missing file, corrupt data) is
// treated as a cache miss per §7, never as a fatal error — the caller
// falls back to recomputing from the device and writes the result back.
//
// Encoding is msgpack (github.com/vmihailenco/msgpack/v5): binary and
// schema-light, a good fit for "opaque format, unchecked version, delete-
// the-directory-to-invalidate" (no migration path is ever consulted).
// An in-process LRU (github.com/hashicorp/golang-lru/v2) sits in front of
// the on-disk files so repeated Load calls for the same device within one
// process skip the decode. The CLI driver calls LoadOrDerive once and
// hands the resulting Tables to C2, C3 and C4.
package device

import (
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// cachedTableName is the single cache key Tables are stored under: the
// tables are derived together by Derive, so the cache treats them as one
// unit rather than one file per field.
const cachedTableName = "device_tables"

// Cache wraps one on-disk cache directory with an in-process LRU of
// already-loaded Tables.
type Cache struct {
	dir string
	lru *lru.Cache[string, *Tables]
}

// NewCache returns a Cache rooted at dir, creating the directory if it
// does not exist. lruSize bounds the number of distinct devices' Tables
// kept hot in memory; a single-device CLI invocation only ever needs 1,
// but a long-lived process driving many devices benefits from more.
func NewCache(dir string, lruSize int) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	if lruSize <= 0 {
		lruSize = 1
	}
	l, err := lru.New[string, *Tables](lruSize)
	if err != nil {
		return nil, err
	}
	return &Cache{dir: dir, lru: l}, nil
}

// LoadOrDerive returns the cached Tables for devKey if present (first
// checking the in-process LRU, then the on-disk file), else computes them
// via Derive(dev) and writes the result back to both layers. Any on-disk
// read or decode failure is treated as a cache miss (§7): the error is
// discarded and the tables are recomputed.
func (c *Cache) LoadOrDerive(devKey string, dev *RawDevice) (*Tables, error) {
	if t, ok := c.lru.Get(devKey); ok {
		return t, nil
	}
	if t, err := c.readFile(devKey); err == nil {
		c.lru.Add(devKey, t)
		return t, nil
	}

	t := Derive(dev)
	c.lru.Add(devKey, t)
	if err := c.writeFile(devKey, t); err != nil {
		return t, fmt.Errorf("cache write for %s: %w", devKey, err)
	}
	return t, nil
}

// Invalidate removes devKey's cached tables from both the in-process LRU
// and disk. Per §4.1/§6 there is no version check on the cache file
// itself; the only supported invalidation path is deleting it (or the
// whole directory).
func (c *Cache) Invalidate(devKey string) error {
	c.lru.Remove(devKey)
	err := os.Remove(c.path(devKey))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *Cache) path(devKey string) string {
	return filepath.Join(c.dir, devKey+"."+cachedTableName+".msgpack")
}

func (c *Cache) readFile(devKey string) (*Tables, error) {
	data, err := os.ReadFile(c.path(devKey))
	if err != nil {
		return nil, err
	}
	var t Tables
	if err := msgpack.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Cache) writeFile(devKey string, t *Tables) error {
	data, err := msgpack.Marshal(t)
	if err != nil {
		return err
	}
	tmp := c.path(devKey) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path(devKey))
}
