// Package cache implements the persistent, versioned on-disk Symbol
// Cache of spec.md §4.1: a directory under `<project-root>/.cnx/`
// holding a format/compiler version stamp plus one entry per parsed
// header, keyed by absolute path. A mismatch on either version
// invalidates the whole cache atomically.
package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cnext-lang/cnextc/symtab"
)

const (
	configFileName  = "config.json"
	symbolsFileName = "symbols.json"
	cacheDirName    = "cache"
	rootDirName     = ".cnx"
)

// FileSystem is the I/O boundary this package depends on, so tests
// and the orchestrator can swap in an in-memory implementation; raw
// file I/O is an external collaborator per spec.md §1.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	Rename(oldpath, newpath string) error
	MkdirAll(path string, perm os.FileMode) error
	Stat(path string) (os.FileInfo, error)
}

// OSFileSystem is the default FileSystem, backed by package os.
type OSFileSystem struct{}

func (OSFileSystem) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }
func (OSFileSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}
func (OSFileSystem) Rename(oldpath, newpath string) error   { return os.Rename(oldpath, newpath) }
func (OSFileSystem) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }
func (OSFileSystem) Stat(path string) (os.FileInfo, error)  { return os.Stat(path) }

// ConfigDoc is config.json's shape.
type ConfigDoc struct {
	Version          int    `json:"version"`
	Created          string `json:"created"`
	TranspilerVersion string `json:"transpilerVersion"`
}

// Entry is one cached header file's symbols (spec.md §3 "Cache
// Entry").
type Entry struct {
	Path               string                                        `json:"path"`
	Key                string                                        `json:"key"` // "mtime:<ms>" or "hash:<sha256>"
	Symbols            []symtab.Symbol                               `json:"symbols"`
	StructFields       map[string]map[string]symtab.StructFieldInfo  `json:"structFields"`
	NeedsStructKeyword map[string]bool                               `json:"needsStructKeyword"`
	EnumBitWidth       map[string]int                                `json:"enumBitWidth"`
	EnumMembers        map[string]map[string]int64                   `json:"enumMembers"`
}

type symbolsDoc struct {
	Entries []Entry `json:"entries"`
}

// CurrentFormatVersion is config.json's `version` field. Bump this
// whenever Entry's shape changes incompatibly.
const CurrentFormatVersion = 1

// Store is the in-memory buffered view of the cache, flushed to disk
// explicitly (spec.md §4.1: "writes are buffered in memory; flush
// serializes the current map atomically").
type Store struct {
	root              string
	fs                FileSystem
	log               *logrus.Logger
	transpilerVersion string
	entries           map[string]Entry
	dirty             bool
}

// Open loads (or initializes) the cache rooted at projectRoot/.cnx. A
// format or compiler version mismatch invalidates the whole cache
// (entries map starts empty) rather than erroring.
func Open(projectRoot, transpilerVersion string, fs FileSystem, log *logrus.Logger) (*Store, error) {
	if log == nil {
		log = logrus.New()
	}
	root := filepath.Join(projectRoot, rootDirName)
	s := &Store{root: root, fs: fs, log: log, transpilerVersion: transpilerVersion, entries: make(map[string]Entry)}

	if err := fs.MkdirAll(filepath.Join(root, cacheDirName), 0o755); err != nil {
		return nil, fmt.Errorf("cache: creating cache dir: %w", err)
	}

	cfgPath := filepath.Join(root, configFileName)
	data, err := fs.ReadFile(cfgPath)
	if err != nil {
		log.WithField("path", cfgPath).Debug("cache: no existing config, starting cold")
		return s, nil
	}
	var cfg ConfigDoc
	if err := json.Unmarshal(data, &cfg); err != nil {
		log.WithError(err).Warn("cache: config.json corrupted, discarding cache")
		return s, nil
	}
	if cfg.Version != CurrentFormatVersion || cfg.TranspilerVersion != transpilerVersion {
		log.WithFields(logrus.Fields{
			"cachedVersion": cfg.Version, "cachedCompiler": cfg.TranspilerVersion,
		}).Info("cache: format or compiler version mismatch, invalidating cache")
		return s, nil
	}

	symPath := filepath.Join(root, cacheDirName, symbolsFileName)
	symData, err := fs.ReadFile(symPath)
	if err != nil {
		return s, nil
	}
	var doc symbolsDoc
	if err := json.Unmarshal(symData, &doc); err != nil {
		log.WithError(err).Warn("cache: symbols.json corrupted, treating as empty")
		return s, nil
	}
	for _, e := range doc.Entries {
		s.entries[e.Path] = e
	}
	return s, nil
}

// IsValid reports whether path has a cache entry whose stored key
// matches the file as it is now: a "hash:" key against the SHA-256 of
// its current contents, an "mtime:" key against its current mtime.
func (s *Store) IsValid(path string) bool {
	e, ok := s.entries[path]
	if !ok {
		return false
	}
	if strings.HasPrefix(e.Key, "hash:") {
		data, err := s.fs.ReadFile(path)
		if err != nil {
			return false
		}
		return e.Key == HashKey(sha256.Sum256(data))
	}
	info, err := s.fs.Stat(path)
	if err != nil {
		return false
	}
	return e.Key == MtimeKey(info)
}

// MtimeKey formats the "mtime:<ms>" cache key spec.md §3 describes as
// today's default. HashKey below is the content-hash alternative,
// selected by the `cache.key_strategy` setting "hash".
func MtimeKey(info os.FileInfo) string {
	return fmt.Sprintf("mtime:%d", info.ModTime().UnixMilli())
}

func HashKey(sum [32]byte) string {
	return fmt.Sprintf("hash:%x", sum)
}

// Get returns the cached Entry for path, if any.
func (s *Store) Get(path string) (Entry, bool) {
	e, ok := s.entries[path]
	return e, ok
}

// Put buffers a new/updated Entry in memory; it is not durable until
// Flush.
func (s *Store) Put(path, key string, syms []symtab.Symbol, structFields map[string]map[string]symtab.StructFieldInfo,
	needsStructKeyword map[string]bool, enumBitWidth map[string]int, enumMembers map[string]map[string]int64) {
	s.entries[path] = Entry{
		Path: path, Key: key, Symbols: syms,
		StructFields: structFields, NeedsStructKeyword: needsStructKeyword, EnumBitWidth: enumBitWidth,
		EnumMembers: enumMembers,
	}
	s.dirty = true
}

// Invalidate drops path's entry, if any.
func (s *Store) Invalidate(path string) {
	if _, ok := s.entries[path]; ok {
		delete(s.entries, path)
		s.dirty = true
	}
}

// InvalidateAll drops every entry.
func (s *Store) InvalidateAll() {
	s.entries = make(map[string]Entry)
	s.dirty = true
}

// Flush serializes the current in-memory map atomically: write to a
// temp file, then rename over the real path. On a write error the
// in-memory buffer is left intact so the caller can retry (spec.md's
// SPEC_FULL cache.Store.Flush contract).
func (s *Store) Flush() error {
	if !s.dirty {
		return nil
	}
	cfg := ConfigDoc{Version: CurrentFormatVersion, TranspilerVersion: s.transpilerVersion}
	cfgData, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: marshal config: %w", err)
	}
	cfgPath := filepath.Join(s.root, configFileName)
	if err := s.writeAtomic(cfgPath, cfgData); err != nil {
		return err
	}

	doc := symbolsDoc{}
	for _, path := range sortedKeys(s.entries) {
		doc.Entries = append(doc.Entries, s.entries[path])
	}
	symData, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: marshal symbols: %w", err)
	}
	symPath := filepath.Join(s.root, cacheDirName, symbolsFileName)
	if err := s.writeAtomic(symPath, symData); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

func (s *Store) writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := s.fs.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("cache: write temp file %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("cache: rename %s -> %s: %w", tmp, path, err)
	}
	return nil
}

func sortedKeys(m map[string]Entry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
