// ABOUTME: Disk cache of scan results so song ids survive restarts
// ABOUTME: Backed by gache on top of the library's afero filesystem
package library

import (
	"io"
	"os"
	"time"

	"github.com/metafates/gache"
	"github.com/spf13/afero"
)

// DefaultCacheLifetime is how long a scan stays valid before a rescan
const DefaultCacheLifetime = 24 * time.Hour

type snapshot struct {
	Root  string `json:"root"`
	Songs []Song `json:"songs"`
}

// Cache persists the last scan of a directory
type Cache struct {
	internal *gache.Cache[*snapshot]
}

// NewCache stores scans at path on fs
func NewCache(fs afero.Fs, path string, lifetime time.Duration) *Cache {
	return &Cache{
		internal: gache.New[*snapshot](&gache.Options{
			Path:       path,
			Lifetime:   lifetime,
			FileSystem: gacheFs{fs},
		}),
	}
}

// Get returns the cached songs for root, or nil when the cache is stale,
// empty or belongs to another directory
func (c *Cache) Get(root string) ([]Song, error) {
	cached, expired, err := c.internal.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil || cached.Root != root || len(cached.Songs) == 0 {
		return nil, nil
	}
	return cached.Songs, nil
}

// Set replaces the cached scan
func (c *Cache) Set(root string, songs []Song) error {
	return c.internal.Set(&snapshot{Root: root, Songs: songs})
}

// gacheFs adapts afero to gache.FileSystem
type gacheFs struct {
	fs afero.Fs
}

func (g gacheFs) OpenFile(name string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	return g.fs.OpenFile(name, flag, perm)
}

func (g gacheFs) MkdirAll(path string, perm os.FileMode) error {
	return g.fs.MkdirAll(path, perm)
}
