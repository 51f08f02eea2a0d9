package fsx

import (
	"os"
	"path/filepath"
	"sort"
)

// OS is an FS and Finder backed by the host filesystem.
type OS struct{}

func (OS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (OS) WriteFile(name string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	return os.WriteFile(name, data, 0o644)
}

func (OS) Exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

func (OS) Stat(name string) (FileInfo, error) {
	info, err := os.Stat(name)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{
		Name:       name,
		Size:       info.Size(),
		IsDir:      info.IsDir(),
		ModTime:    info.ModTime(),
		ChangeTime: changeTime(info),
	}, nil
}

func (OS) Remove(name string) error {
	return os.Remove(name)
}

func (OS) MkdirTemp(dir, pattern string) (string, error) {
	return os.MkdirTemp(dir, pattern)
}

func (OS) RemoveAll(name string) error {
	return os.RemoveAll(name)
}

// Find walks root and returns every regular file whose base name matches
// pattern, sorted.
func (OS) Find(root, pattern string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(file string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
		if file != root && info.Name()[0] == '.' {
			if info.Mode().IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		if ok, _ := filepath.Match(pattern, info.Name()); ok {
			files = append(files, file)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)

	return files, nil
}
