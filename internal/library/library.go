// ABOUTME: Music library built from a recursive directory scan
// ABOUTME: Songs get stable ids and can be searched by title
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/musics-player/musics-go/pkg/player"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Song is one playable file
type Song struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Path  string    `json:"path"`
}

// Library holds the songs found under a directory
type Library struct {
	fs    afero.Fs
	root  string
	cache *Cache

	mu    sync.RWMutex
	songs []Song
	byID  map[uuid.UUID]int
}

// New creates an empty library rooted at dir. A nil fs means the OS filesystem.
func New(fs afero.Fs, dir string) *Library {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Library{
		fs:   fs,
		root: dir,
		byID: make(map[uuid.UUID]int),
	}
}

// WithCache makes Load and Scan go through c
func (l *Library) WithCache(c *Cache) *Library {
	l.cache = c
	return l
}

// Root returns the scanned directory
func (l *Library) Root() string {
	return l.root
}

// Load fills the library from the cache when it is fresh and scans otherwise
func (l *Library) Load() error {
	if l.cache != nil {
		songs, err := l.cache.Get(l.root)
		if err != nil {
			log.Warnf("library cache unreadable: %v", err)
		} else if songs != nil {
			l.replace(songs)
			return nil
		}
	}
	return l.Scan()
}

// Scan walks the directory again and replaces the contents. Songs already
// known by path keep their ids.
func (l *Library) Scan() error {
	l.mu.RLock()
	known := make(map[string]uuid.UUID, len(l.songs))
	for _, s := range l.songs {
		known[s.Path] = s.ID
	}
	l.mu.RUnlock()

	var songs []Song
	err := afero.Walk(l.fs, l.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !Supported(path) {
			return nil
		}

		id, ok := known[path]
		if !ok {
			id = uuid.New()
		}
		songs = append(songs, Song{ID: id, Title: Title(path), Path: path})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", l.root, err)
	}

	slices.SortFunc(songs, func(a, b Song) int {
		return strings.Compare(a.Path, b.Path)
	})
	l.replace(songs)
	log.Infof("library: %d songs in %s", len(songs), l.root)

	if l.cache != nil {
		if err := l.cache.Set(l.root, songs); err != nil {
			log.Warnf("failed to cache library: %v", err)
		}
	}
	return nil
}

func (l *Library) replace(songs []Song) {
	byID := make(map[uuid.UUID]int, len(songs))
	for i, s := range songs {
		byID[s.ID] = i
	}

	l.mu.Lock()
	l.songs = songs
	l.byID = byID
	l.mu.Unlock()
}

// Supported reports whether path has a playable extension
func Supported(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return lo.Contains(player.SupportedExtensions, ext)
}

// Title derives a display title from the file name
func Title(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.ReplaceAll(stem, "_", " ")
}

// Songs returns a copy of all songs in path order
func (l *Library) Songs() []Song {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.songs)
}

// Len returns the number of songs
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.songs)
}

// Song looks a song up by id
func (l *Library) Song(id uuid.UUID) (Song, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.byID[id]
	if !ok {
		return Song{}, false
	}
	return l.songs[i], true
}

// Search returns the songs whose title contains query, ignoring case, best
// matches first. An empty query returns everything.
func (l *Library) Search(query string) []Song {
	songs := l.Songs()
	query = strings.TrimSpace(query)
	if query == "" {
		return songs
	}

	needle := strings.ToLower(query)
	matches := lo.Filter(songs, func(s Song, _ int) bool {
		return strings.Contains(strings.ToLower(s.Title), needle)
	})

	slices.SortStableFunc(matches, func(a, b Song) int {
		return fuzzy.RankMatchNormalizedFold(query, a.Title) - fuzzy.RankMatchNormalizedFold(query, b.Title)
	})
	return matches
}
