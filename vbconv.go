/*
Package vbconv is a library for converting raster images into the tile and map
data of the Virtual Boy display processor.

Each asset is described by a configuration file next to its source images.
Conversion quantizes the images onto the hardware palette, runs the external
tile converter over them, cleans up and assembles its output, optionally
compresses the tile stream and writes a C source file the engine build
compiles.
*/
package vbconv

import (
	"errors"
	"sync/atomic"

	"github.com/bodgit/vbconv/artifact"
	"github.com/bodgit/vbconv/cache"
	"github.com/bodgit/vbconv/config"
	"github.com/bodgit/vbconv/fsx"
	"github.com/bodgit/vbconv/process"
	"github.com/bodgit/vbconv/progress"
	"go.uber.org/zap"
)

// ErrBusy is returned when a conversion is requested while another one is
// still running.
var ErrBusy = errors.New("vbconv: conversion already running")

// Result is the converted data of one artifact.
type Result = artifact.Result

// Filesystem is the file access needed by a Converter.
type Filesystem interface {
	fsx.FS
	fsx.Finder
}

// Converter runs asset conversions for one project. Only one conversion runs
// at a time.
type Converter struct {
	fs       Filesystem
	launcher process.Launcher
	project  *config.Project
	logger   *zap.Logger
	history  *cache.Store
	progress *progress.Reporter
	busy     atomic.Bool
}

// New returns a Converter. history may be nil to disable recording.
func New(fsys Filesystem, launcher process.Launcher, project *config.Project, logger *zap.Logger, history *cache.Store) *Converter {
	return &Converter{
		fs:       fsys,
		launcher: launcher,
		project:  project,
		logger:   logger,
		history:  history,
		progress: progress.NewReporter(),
	}
}

// Progress returns the reporter observers can follow a batch with.
func (c *Converter) Progress() *progress.Reporter {
	return c.progress
}
