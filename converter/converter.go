// Package converter derives the command line of the external raster to tile
// converter from an asset configuration and runs it.
package converter

import (
	"context"

	"github.com/bodgit/vbconv/config"
	"github.com/bodgit/vbconv/process"
	"github.com/bodgit/vbconv/tile"
)

// Reduction returns the duplicate tile merging in effect for a. Spritesheet
// animations are never reduced as every frame must keep the same size, and
// disabling tileset reduction disables it entirely.
func Reduction(a *config.Asset) tile.Reduce {
	if !a.Map.Generate || !a.Tileset.Reduce || a.Spritesheet() {
		return tile.Reduce{}
	}
	return tile.Reduce{
		Unique:  a.Map.Reduce.Unique,
		Flipped: a.Map.Reduce.Flipped,
	}
}

// Flags returns the converter flags for a. shared names the tileset file when
// the tileset is shared between the images of the asset.
func Flags(a *config.Asset, shared string) []string {
	flags := []string{
		"-fh!", // no header file
		"-ftc", // C source output
		"-gt",  // tiled graphics
		"-gB2", // 2 bits per pixel
		"-p!",  // no palette
	}

	if !a.Map.Generate {
		flags = append(flags, "-m!")
	} else {
		flags = append(flags, "-mLs")

		r := Reduction(a)
		letters := ""
		if r.Unique {
			letters += "t"
		}
		if r.Flipped {
			letters += "f"
		}
		if letters == "" {
			letters = "!"
		}
		flags = append(flags, "-mR"+letters)
	}

	if a.Tileset.Shared && shared != "" {
		flags = append(flags, "-gS", "-O"+shared, "-S"+shared)
	}

	return flags
}

// Run converts images with the converter at tool, writing output into dir.
func Run(ctx context.Context, l process.Launcher, tool, dir string, images, flags []string) error {
	args := make([]string, 0, len(images)+len(flags))
	args = append(args, images...)
	args = append(args, flags...)

	_, err := process.Run(ctx, l, process.Spec{
		Path: tool,
		Args: args,
		Dir:  dir,
	})
	return err
}
