package tiled

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	MemoryStoreType   = "MemoryStore"
	LocalStoreType    = "LocalStore"
	dirPermissionBits = 0755
)

// Store is a flat set of named sources. Adapters read their files through a
// Store, so the same reader works over a local directory or memory.
type Store interface {
	Get(key string) (io.ReadCloser, error)
	Put(key string, val io.Reader) error
	// List returns the direct children of the store root, sorted by name.
	List() ([]Entry, error)
	// Locator is a stable, human readable identity for key, such as an
	// absolute file path.
	Locator(key string) string
	Type() string
}

// Entry describes one child of a Store root. IsFile is true for regular
// files, following symlinks.
type Entry struct {
	Name    string
	IsFile  bool
	Size    int64
	ModTime time.Time
}

type MemoryStore struct {
	lk   sync.Mutex
	data map[string][]byte
	mod  map[string]time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: map[string][]byte{},
		mod:  map[string]time.Time{},
	}
}

func (s *MemoryStore) Type() string { return MemoryStoreType }

func (s *MemoryStore) Locator(key string) string { return "memory:" + key }

func (s *MemoryStore) Get(key string) (io.ReadCloser, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	d, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotfound, key)
	}
	return io.NopCloser(bytes.NewReader(d)), nil
}

func (s *MemoryStore) Put(key string, val io.Reader) error {
	d, err := io.ReadAll(val)
	if err != nil {
		return err
	}

	s.lk.Lock()
	defer s.lk.Unlock()
	s.data[key] = d
	s.mod[key] = time.Now()

	return nil
}

// List reports keys without a "/" as files and the first segment of keys
// with one as directories.
func (s *MemoryStore) List() ([]Entry, error) {
	s.lk.Lock()
	defer s.lk.Unlock()

	seen := map[string]Entry{}
	for key, d := range s.data {
		if i := strings.IndexByte(key, '/'); i >= 0 {
			seen[key[:i]] = Entry{Name: key[:i]}
			continue
		}
		seen[key] = Entry{Name: key, IsFile: true, Size: int64(len(d)), ModTime: s.mod[key]}
	}
	entries := make([]Entry, 0, len(seen))
	for _, e := range seen {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

type LocalStore struct {
	base string
}

var _ Store = (*LocalStore)(nil)

// NewLocalStore opens the directory at base. The directory is not created;
// Put creates directories as needed.
func NewLocalStore(base string) (*LocalStore, error) {
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, err
	}

	return &LocalStore{
		base: base,
	}, nil
}

func (s *LocalStore) Type() string { return LocalStoreType }

// Base is the absolute path of the store root.
func (s *LocalStore) Base() string { return s.base }

func (s *LocalStore) Locator(key string) string { return filepath.Join(s.base, key) }

func (s *LocalStore) Get(key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.base, key))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotfound, key)
	}
	return f, err
}

func (s *LocalStore) Put(key string, val io.Reader) error {
	path := filepath.Join(s.base, key)
	if err := os.MkdirAll(filepath.Dir(path), dirPermissionBits); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, val); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *LocalStore) List() ([]Entry, error) {
	des, err := os.ReadDir(s.base)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		info, err := de.Info()
		if err == nil && info.Mode()&os.ModeSymlink != 0 {
			info, err = os.Stat(filepath.Join(s.base, de.Name()))
		}
		if err != nil {
			// removed since ReadDir, or a dangling link
			continue
		}
		entries = append(entries, Entry{
			Name:    de.Name(),
			IsFile:  info.Mode().IsRegular(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return entries, nil
}
