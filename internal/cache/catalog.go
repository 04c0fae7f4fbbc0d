package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// catalogFlagsFile is the single durable key under which all flags persist.
const catalogFlagsFile = "catalog_flags.json"

// Flag records whether a logo is in the curated catalog and under which code.
type Flag struct {
	IsInCatalog bool    `json:"is_in_catalog"`
	CatalogCode *string `json:"catalog_code"`
}

// CatalogFlags is a small durable cache of catalog membership, used to paint
// UI state before network confirmation. It persists as one JSON object
// mapping logo id to Flag and survives restarts.
//
// All I/O failures are swallowed: the cache degrades to empty reads and
// no-op writes rather than raising. Callers must treat its contents as
// best-effort hints, never as the source of truth.
type CatalogFlags struct {
	mu   sync.Mutex
	path string
}

// NewCatalogFlags creates a flag cache persisted under baseDir.
func NewCatalogFlags(baseDir string) *CatalogFlags {
	return &CatalogFlags{path: filepath.Join(baseDir, catalogFlagsFile)}
}

// ReadAll returns every persisted flag. Any read or decode error yields an
// empty map.
func (c *CatalogFlags) ReadAll() map[string]Flag {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readLocked()
}

// WriteMerge shallow-merges partial into the persisted state: keys in
// partial overwrite existing entries, all other entries are preserved.
// Write failures are swallowed.
func (c *CatalogFlags) WriteMerge(partial map[string]Flag) {
	if len(partial) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	flags := c.readLocked()
	for id, f := range partial {
		flags[id] = f
	}

	data, err := json.Marshal(flags)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return
	}
	_ = os.WriteFile(c.path, data, 0600)
}

func (c *CatalogFlags) readLocked() map[string]Flag {
	flags := make(map[string]Flag)
	data, err := os.ReadFile(c.path)
	if err != nil {
		return flags
	}
	if err := json.Unmarshal(data, &flags); err != nil {
		return make(map[string]Flag)
	}
	return flags
}
