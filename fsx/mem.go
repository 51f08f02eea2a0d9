package fsx

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

type memFile struct {
	data    []byte
	modTime time.Time
	chTime  time.Time
}

// MemFS is an in-memory FS and Finder. Its clock advances by one second on
// every mutation so that ordering of writes is always observable through
// Stat.
type MemFS struct {
	mu    sync.Mutex
	files map[string]*memFile
	now   time.Time
	temp  int
}

// NewMemFS returns an empty MemFS whose clock starts at start.
func NewMemFS(start time.Time) *MemFS {
	return &MemFS{
		files: make(map[string]*memFile),
		now:   start,
	}
}

func (m *MemFS) tick() time.Time {
	m.now = m.now.Add(time.Second)
	return m.now
}

func notExist(op, name string) error {
	return &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
}

func (m *MemFS) ReadFile(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[filepath.Clean(name)]
	if !ok {
		return nil, notExist("open", name)
	}
	return append([]byte(nil), f.data...), nil
}

func (m *MemFS) WriteFile(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.tick()
	m.files[filepath.Clean(name)] = &memFile{
		data:    append([]byte(nil), data...),
		modTime: t,
		chTime:  t,
	}
	return nil
}

func (m *MemFS) Exists(name string) bool {
	_, err := m.Stat(name)
	return err == nil
}

func (m *MemFS) Stat(name string) (FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = filepath.Clean(name)
	if f, ok := m.files[name]; ok {
		return FileInfo{
			Name:       name,
			Size:       int64(len(f.data)),
			ModTime:    f.modTime,
			ChangeTime: f.chTime,
		}, nil
	}

	prefix := name + string(filepath.Separator)
	for k := range m.files {
		if strings.HasPrefix(k, prefix) {
			return FileInfo{Name: name, IsDir: true}, nil
		}
	}

	return FileInfo{}, notExist("stat", name)
}

func (m *MemFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = filepath.Clean(name)
	if _, ok := m.files[name]; !ok {
		return notExist("remove", name)
	}
	delete(m.files, name)
	return nil
}

func (m *MemFS) MkdirTemp(dir, pattern string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if dir == "" {
		dir = "/tmp"
	}
	m.temp++
	return filepath.Join(dir, fmt.Sprintf("%s%d", strings.TrimSuffix(pattern, "*"), m.temp)), nil
}

func (m *MemFS) RemoveAll(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = filepath.Clean(name)
	prefix := name + string(filepath.Separator)
	for k := range m.files {
		if k == name || strings.HasPrefix(k, prefix) {
			delete(m.files, k)
		}
	}
	return nil
}

// Find implements Finder. Hidden directories are skipped like OS.Find.
func (m *MemFS) Find(root, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	root = filepath.Clean(root)
	var files []string
	for k := range m.files {
		rel, err := filepath.Rel(root, k)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		hidden := false
		for _, part := range strings.Split(rel, string(filepath.Separator)) {
			if strings.HasPrefix(part, ".") {
				hidden = true
				break
			}
		}
		if hidden {
			continue
		}
		ok, err := filepath.Match(pattern, filepath.Base(k))
		if err != nil {
			return nil, err
		}
		if ok {
			files = append(files, k)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Touch bumps the modification and change time of an existing file.
func (m *MemFS) Touch(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[filepath.Clean(name)]
	if !ok {
		return notExist("touch", name)
	}
	t := m.tick()
	f.modTime, f.chTime = t, t
	return nil
}

// Chmod simulates a metadata-only change, which moves the change time but
// not the modification time.
func (m *MemFS) Chmod(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[filepath.Clean(name)]
	if !ok {
		return notExist("chmod", name)
	}
	f.chTime = m.tick()
	return nil
}

// Files returns the names of every file held, sorted.
func (m *MemFS) Files() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	files := make([]string, 0, len(m.files))
	for k := range m.files {
		files = append(files, k)
	}
	sort.Strings(files)
	return files
}
