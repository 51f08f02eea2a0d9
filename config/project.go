package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultProjectFile is the project configuration looked up in the working
// directory.
const DefaultProjectFile = "vbconv.yaml"

// Project holds settings shared by every asset of a run. Relative paths are
// resolved against the folder of the project file.
type Project struct {
	// Converter is the external raster to tile converter binary.
	Converter string `yaml:"converter"`
	// Build is the folder holding compiled objects of generated artifacts.
	Build string `yaml:"build"`
	// Cache is the conversion history database.
	Cache string `yaml:"cache"`
	// Temp is the parent of per-asset working folders, empty for the system
	// default.
	Temp string `yaml:"temp"`
	// Pattern matches asset configuration filenames.
	Pattern string `yaml:"pattern"`
}

// DefaultProject returns the project defaults relative to dir.
func DefaultProject(dir string) *Project {
	return &Project{
		Converter: "grit",
		Build:     filepath.Join(dir, "build"),
		Cache:     filepath.Join(dir, "build", "vbconv.db"),
		Pattern:   "*" + Suffix,
	}
}

// LoadProject reads a YAML project file, expanding environment variables. A
// missing file yields DefaultProject for the folder of path.
func LoadProject(path string) (*Project, error) {
	dir := filepath.Dir(path)
	p := DefaultProject(dir)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
	}

	if err := yaml.Unmarshal([]byte(ExpandEnv(string(data))), p); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}

	for _, s := range []*string{&p.Build, &p.Cache, &p.Temp} {
		if *s != "" && !filepath.IsAbs(*s) {
			*s = filepath.Join(dir, *s)
		}
	}
	// A bare command name is looked up on PATH, anything else is a path
	if filepath.Base(p.Converter) != p.Converter && !filepath.IsAbs(p.Converter) {
		p.Converter = filepath.Join(dir, p.Converter)
	}
	if p.Pattern == "" {
		p.Pattern = "*" + Suffix
	}

	return p, nil
}
