package config

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/bodgit/vbconv/fsx"
)

// ImagePaths resolves Images to absolute paths ordered by filename. The
// AllImages entry expands to every PNG directly inside the configuration
// folder; other entries are relative to that folder.
func (a *Asset) ImagePaths(finder fsx.Finder) ([]string, error) {
	dir := a.Dir()
	seen := make(map[string]struct{})
	var paths []string

	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}

	for _, image := range a.Images {
		if image != AllImages {
			if filepath.IsAbs(image) {
				add(filepath.Clean(image))
			} else {
				add(filepath.Join(dir, image))
			}
			continue
		}

		files, err := finder.Find(dir, "*.png")
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			// Check files are in the "top" directory
			if filepath.Dir(file) != dir {
				continue
			}
			add(file)
		}
	}

	sort.Slice(paths, func(i, j int) bool {
		bi, bj := strings.ToLower(filepath.Base(paths[i])), strings.ToLower(filepath.Base(paths[j]))
		if bi != bj {
			return bi < bj
		}
		return paths[i] < paths[j]
	})

	return paths, nil
}
