/*
Package stale decides which assets need converting again.

A generated artifact is stale when it is missing, or when any of its inputs,
the source images and the asset configuration, has a modification or change
time later than the modification time of the artifact. A missing artifact is
never an error, and a missing input only makes a missing artifact stale.
*/
package stale

import (
	"errors"
	"io/fs"
	"time"

	"github.com/bodgit/vbconv/fsx"
)

// Tracker compares timestamps through an FS.
type Tracker struct {
	fs fsx.FS
}

// New returns a Tracker reading timestamps from fsys.
func New(fsys fsx.FS) *Tracker {
	return &Tracker{fs: fsys}
}

// artifactTime returns the modification time of path, or false when it does
// not exist.
func (t *Tracker) artifactTime(path string) (time.Time, bool, error) {
	info, err := t.fs.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return info.ModTime, true, nil
}

// newer reports whether either timestamp of input is after t. A missing input
// is never newer since an existing artifact already reflects its absence.
func (t *Tracker) newer(input string, than time.Time) (bool, error) {
	info, err := t.fs.Stat(input)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Newest().After(than), nil
}

// Group reports whether the artifact produced jointly by inputs is stale. A
// single changed input makes the whole group stale.
func (t *Tracker) Group(inputs []string, artifact string) (bool, error) {
	at, ok, err := t.artifactTime(artifact)
	if err != nil || !ok {
		return !ok, err
	}

	for _, input := range inputs {
		stale, err := t.newer(input, at)
		if err != nil || stale {
			return stale, err
		}
	}

	return false, nil
}

// Image reports whether the artifact converted from source alone is stale.
func (t *Tracker) Image(source, config, artifact string) (bool, error) {
	return t.Group([]string{source, config}, artifact)
}

// Images returns the sources whose own artifact is stale. artifact maps a
// source to its artifact path.
func (t *Tracker) Images(sources []string, config string, artifact func(string) string) ([]string, error) {
	var out []string
	for _, source := range sources {
		stale, err := t.Image(source, config, artifact(source))
		if err != nil {
			return nil, err
		}
		if stale {
			out = append(out, source)
		}
	}
	return out, nil
}
