package cache

import (
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnext-lang/cnextc/symtab"
)

type memFS struct {
	files map[string][]byte
	stats map[string]os.FileInfo
}

func newMemFS() *memFS { return &memFS{files: make(map[string][]byte), stats: make(map[string]os.FileInfo)} }

func (m *memFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}
func (m *memFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	m.files[path] = data
	return nil
}
func (m *memFS) Rename(oldpath, newpath string) error {
	data, ok := m.files[oldpath]
	if !ok {
		return os.ErrNotExist
	}
	m.files[newpath] = data
	delete(m.files, oldpath)
	return nil
}
func (m *memFS) MkdirAll(path string, perm os.FileMode) error { return nil }

type fakeInfo struct {
	modTime time.Time
}

func (f fakeInfo) Name() string       { return "" }
func (f fakeInfo) Size() int64        { return 0 }
func (f fakeInfo) Mode() os.FileMode  { return 0 }
func (f fakeInfo) ModTime() time.Time { return f.modTime }
func (f fakeInfo) IsDir() bool        { return false }
func (f fakeInfo) Sys() any           { return nil }

func (m *memFS) Stat(path string) (os.FileInfo, error) {
	if info, ok := m.stats[path]; ok {
		return info, nil
	}
	return nil, os.ErrNotExist
}

func TestCacheMissThenHit(t *testing.T) {
	fs := newMemFS()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	s, err := Open("/proj", "v1", fs, log)
	require.NoError(t, err)
	require.False(t, s.IsValid("/proj/foo.h"))

	mtime := fakeInfo{modTime: time.UnixMilli(12345)}
	fs.stats["/proj/foo.h"] = mtime
	key := MtimeKey(mtime)

	s.Put("/proj/foo.h", key, []symtab.Symbol{{Name: "foo", Kind: symtab.KindFunction}}, nil, nil, nil, nil)
	require.True(t, s.IsValid("/proj/foo.h"))
	require.NoError(t, s.Flush())

	s2, err := Open("/proj", "v1", fs, log)
	require.NoError(t, err)
	require.True(t, s2.IsValid("/proj/foo.h"))
	entry, ok := s2.Get("/proj/foo.h")
	require.True(t, ok)
	assert.Equal(t, "foo", entry.Symbols[0].Name)
}

func TestCacheVersionMismatchInvalidates(t *testing.T) {
	fs := newMemFS()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	s, err := Open("/proj", "v1", fs, log)
	require.NoError(t, err)
	s.Put("/proj/foo.h", "mtime:1", nil, nil, nil, nil, nil)
	require.NoError(t, s.Flush())

	s2, err := Open("/proj", "v2", fs, log)
	require.NoError(t, err)
	_, ok := s2.Get("/proj/foo.h")
	assert.False(t, ok)
}

func TestCacheCorruptedJSONTreatedAsEmpty(t *testing.T) {
	fs := newMemFS()
	fs.files["/proj/.cnx/config.json"] = []byte("{not json")
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	s, err := Open("/proj", "v1", fs, log)
	require.NoError(t, err)
	_, ok := s.Get("/proj/foo.h")
	assert.False(t, ok)
}
