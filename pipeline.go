package vbconv

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bodgit/vbconv/animation"
	"github.com/bodgit/vbconv/artifact"
	"github.com/bodgit/vbconv/cache"
	"github.com/bodgit/vbconv/compress"
	"github.com/bodgit/vbconv/config"
	"github.com/bodgit/vbconv/converter"
	"github.com/bodgit/vbconv/decoder"
	"github.com/bodgit/vbconv/normalize"
	"github.com/bodgit/vbconv/progress"
	"github.com/bodgit/vbconv/quantize"
	"github.com/bodgit/vbconv/stale"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AssetReport is the outcome of converting one configuration file.
type AssetReport struct {
	Config string
	Name   string
	// Images are the source images that were converted.
	Images    []string
	Artifacts []string
	Results   []*Result
	// Objects are the compiled objects removed to force a rebuild.
	Objects []string
	// Skipped is set when there was nothing to convert.
	Skipped bool
	Err     error
}

// Report is the outcome of a batch.
type Report struct {
	Run    uuid.UUID
	Assets []AssetReport
}

// Failed returns the number of assets that could not be converted.
func (r *Report) Failed() int {
	n := 0
	for _, a := range r.Assets {
		if a.Err != nil {
			n++
		}
	}
	return n
}

func baseName(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Discover returns every asset configuration file under root.
func (c *Converter) Discover(root string) ([]string, error) {
	dir, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return c.fs.Find(dir, c.project.Pattern)
}

// ConvertAll converts every asset found under root.
func (c *Converter) ConvertAll(ctx context.Context, root string) (*Report, error) {
	configs, err := c.Discover(root)
	if err != nil {
		return nil, err
	}
	return c.Convert(ctx, configs, false)
}

// ConvertChanged converts only the images under root whose artifacts are
// missing or older than the image or its configuration.
func (c *Converter) ConvertChanged(ctx context.Context, root string) (*Report, error) {
	configs, err := c.Discover(root)
	if err != nil {
		return nil, err
	}
	return c.Convert(ctx, configs, true)
}

// Convert converts the assets described by configs concurrently. A failing
// asset is logged and reported without affecting the others; the returned
// error is only set when the batch itself could not run.
func (c *Converter) Convert(ctx context.Context, configs []string, changedOnly bool) (*Report, error) {
	if !c.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer c.busy.Store(false)

	report := &Report{
		Run:    uuid.New(),
		Assets: make([]AssetReport, len(configs)),
	}
	logger := c.logger.With(zap.String("run_id", report.Run.String()))

	c.progress.Begin(len(configs), fmt.Sprintf("Converting %d assets", len(configs)))
	logger.Debug("starting batch", zap.Int("assets", len(configs)), zap.Bool("changed_only", changedOnly))

	var errcList []<-chan error
	for i, file := range configs {
		errcList = append(errcList, c.assetWorker(ctx, logger, report.Run, file, changedOnly, &report.Assets[i]))
	}

	return report, waitForPipeline(errcList...)
}

func (c *Converter) assetWorker(ctx context.Context, logger *zap.Logger, run uuid.UUID, file string, changedOnly bool, out *AssetReport) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		defer c.progress.Step()

		*out = c.convertAsset(ctx, logger.With(zap.String("config", file)), file, changedOnly)
		if out.Err != nil {
			logger.Error("conversion failed", zap.String("config", file), zap.Error(out.Err))
			c.progress.Log(progress.Error, out.Err.Error(), file)
		}

		if err := c.record(run, out); err != nil {
			errc <- err
		}
	}()
	return errc
}

func (c *Converter) record(run uuid.UUID, r *AssetReport) error {
	if c.history == nil || r.Skipped {
		return nil
	}

	now := time.Now()
	if r.Err != nil {
		_, err := c.history.Add(cache.Record{
			Run:     run,
			Time:    now,
			Config:  r.Config,
			Name:    r.Name,
			Summary: cache.Summary{Error: r.Err.Error()},
		})
		return err
	}

	for i, res := range r.Results {
		if _, err := c.history.Add(cache.Record{
			Run:    run,
			Time:   now,
			Config: r.Config,
			Name:   res.Name,
			Summary: cache.Summary{
				Artifact:     r.Artifacts[i],
				Tiles:        res.Tiles.Count,
				Compression:  string(res.Tiles.Compression),
				Ratio:        res.Tiles.Ratio,
				Frames:       res.Animation.Frames,
				LargestFrame: res.Animation.LargestFrame,
				Maps:         len(res.Maps),
			},
		}); err != nil {
			return err
		}
	}
	return nil
}

func (c *Converter) convertAsset(ctx context.Context, logger *zap.Logger, file string, changedOnly bool) (r AssetReport) {
	r.Config = file

	a, err := config.Load(c.fs, file)
	if err != nil {
		r.Err = err
		return
	}
	r.Name = a.Name

	images, err := a.ImagePaths(c.fs)
	if err != nil {
		r.Err = fmt.Errorf("%s: %w", file, err)
		return
	}
	if err := a.CheckFrames(len(images)); err != nil {
		r.Err = fmt.Errorf("%s: %w", file, err)
		return
	}

	if changedOnly {
		if images, err = c.staleImages(a, images); err != nil {
			r.Err = fmt.Errorf("%s: %w", file, err)
			return
		}
	}

	if len(images) == 0 {
		r.Skipped = true
		logger.Debug("nothing to convert")
		c.progress.Log(progress.Info, fmt.Sprintf("%s is up to date", a.Name), file)
		return
	}

	tmp, err := c.fs.MkdirTemp(c.project.Temp, "vbconv-*")
	if err != nil {
		r.Err = err
		return
	}
	defer func() {
		if err := c.fs.RemoveAll(tmp); err != nil {
			logger.Warn("cannot remove working folder", zap.String("dir", tmp), zap.Error(err))
		}
	}()

	inputs, sources, err := c.quantizeImages(logger, a, images, tmp)
	if err != nil {
		r.Err = fmt.Errorf("%s: %w", file, err)
		return
	}
	if len(inputs) == 0 {
		r.Skipped = true
		return
	}
	r.Images = sources

	results, err := c.convertImages(ctx, a, tmp, inputs)
	if err != nil {
		r.Err = fmt.Errorf("%s: %w", file, err)
		return
	}

	for _, res := range results {
		path := artifact.Path(a.Dir(), res.Name)
		if err := artifact.Write(c.fs, path, res); err != nil {
			r.Err = err
			return
		}
		r.Artifacts = append(r.Artifacts, path)
		r.Results = append(r.Results, res)

		if c.project.Build != "" {
			objects, err := artifact.DeleteObjects(c.fs, c.fs, c.project.Build, res.Name)
			r.Objects = append(r.Objects, objects...)
			if err != nil {
				logger.Warn("cannot remove stale objects", zap.String("artifact", res.Name), zap.Error(err))
				c.progress.Log(progress.Warning, fmt.Sprintf("cannot remove objects of %s: %v", res.Name, err), path)
			}
		}

		logger.Info("converted",
			zap.String("artifact", path),
			zap.Int("tiles", res.Tiles.Count),
			zap.String("compression", string(res.Tiles.Compression)),
			zap.Float64("ratio", res.Tiles.Ratio),
		)
		c.progress.Log(progress.Info, fmt.Sprintf("Converted %s (%d tiles)", res.Name, res.Tiles.Count), path)
	}

	return
}

func (c *Converter) staleImages(a *config.Asset, images []string) ([]string, error) {
	t := stale.New(c.fs)

	if a.Collective() {
		inputs := append(append([]string(nil), images...), a.Path)
		s, err := t.Group(inputs, artifact.Path(a.Dir(), a.Name))
		if err != nil || !s {
			return nil, err
		}
		return images, nil
	}

	return t.Images(images, a.Path, func(image string) string {
		return artifact.Path(a.Dir(), baseName(image))
	})
}

// quantizeImages writes the indexed version of every image into dir and
// returns the written paths along with the sources they came from. Missing
// images are skipped.
func (c *Converter) quantizeImages(logger *zap.Logger, a *config.Asset, images []string, dir string) ([]string, []string, error) {
	var inputs, sources []string
	for _, image := range images {
		src, err := quantize.Load(c.fs, image)
		if err != nil {
			if errors.Is(err, quantize.ErrFileNotFound) {
				logger.Warn("image not found", zap.String("image", image))
				c.progress.Log(progress.Warning, fmt.Sprintf("image %s not found", filepath.Base(image)), image)
				continue
			}
			return nil, nil, err
		}

		m, err := quantize.Image(src, a.QuantizeSettings(), a.Mode())
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", image, err)
		}

		input := filepath.Join(dir, baseName(image)+".png")
		if err := quantize.WritePNG(c.fs, input, m); err != nil {
			return nil, nil, err
		}
		inputs = append(inputs, input)
		sources = append(sources, image)
	}
	return inputs, sources, nil
}

// compressTiles keeps the compressed stream only if it is smaller.
func compressTiles(t decoder.Tiles, comp compress.Compressor, lengths, offsets []int) (artifact.Tiles, error) {
	out := artifact.Tiles{
		Count:        t.Count,
		Data:         t.Data,
		Compression:  config.CompressionNone,
		FrameOffsets: offsets,
	}
	if comp == nil {
		return out, nil
	}

	r, err := compress.Tiles(t.Data, comp, lengths)
	if err != nil {
		return out, err
	}
	if !r.Smaller() {
		return out, nil
	}

	out.Data = r.Data
	out.Ratio = r.Ratio
	out.Compression = config.Compression(comp.Name())
	if len(lengths) > 0 {
		out.FrameOffsets = r.FrameOffsets
	}
	return out, nil
}

func (c *Converter) maps(a *config.Asset, name string, maps ...decoder.Map) ([]artifact.Map, error) {
	if !a.Map.Generate {
		return nil, nil
	}

	comp, err := compress.Lookup(string(a.Map.Compression))
	if err != nil {
		return nil, err
	}

	var out []artifact.Map
	for _, m := range maps {
		if len(m.Data) == 0 {
			continue
		}
		out = append(out, artifact.Map{
			Name:        name,
			Data:        compress.Map(m.Data, comp),
			Width:       m.Width,
			Height:      m.Height,
			Compression: config.CompressionNone,
		})
	}
	return out, nil
}

func (c *Converter) convertImages(ctx context.Context, a *config.Asset, dir string, inputs []string) ([]*Result, error) {
	shared := ""
	if a.Tileset.Shared {
		shared = a.Name
	}

	if err := converter.Run(ctx, c.launcher, c.project.Converter, dir, inputs, converter.Flags(a, shared)); err != nil {
		return nil, err
	}

	files := make([]*decoder.File, 0, len(inputs))
	for _, input := range inputs {
		f, err := decoder.DecodeFile(c.fs, decoder.OutputPath(dir, input))
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	reduce := converter.Reduction(a)
	opts := normalize.Options{
		Shared:        a.Tileset.Shared,
		ReduceUnique:  reduce.Unique,
		ReduceFlipped: reduce.Flipped,
	}

	comp, err := compress.Lookup(string(a.Tileset.Compression))
	if err != nil {
		return nil, err
	}

	switch {
	case a.Tileset.Shared:
		return c.sharedTileset(a, dir, files, opts, comp)
	case a.IndividualFrames():
		return c.individualFrames(a, files, opts, comp)
	}

	for _, f := range files {
		normalize.File(f, opts)
	}
	animation.Sort(files)

	results := make([]*Result, 0, len(files))
	for _, f := range files {
		name := baseName(f.Path)
		res := &Result{
			Name:      name,
			Section:   a.Section,
			Animation: artifact.Animation{Frames: 1, LargestFrame: f.Tiles.Count},
		}

		if a.Spritesheet() {
			asm, err := animation.Spritesheet(f, a.Animation.Frames, a.Animation.FrameWidth, a.Animation.FrameHeight)
			if err != nil {
				return nil, err
			}
			if res.Tiles, err = compressTiles(asm.Tiles, comp, asm.FrameLengths, asm.FrameOffsets); err != nil {
				return nil, err
			}
			res.Animation = artifact.Animation{Frames: asm.Frames, LargestFrame: asm.LargestFrame}
		} else if res.Tiles, err = compressTiles(f.Tiles, comp, nil, nil); err != nil {
			return nil, err
		}

		if res.Maps, err = c.maps(a, name, f.Map); err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	return results, nil
}

func (c *Converter) sharedTileset(a *config.Asset, dir string, files []*decoder.File, opts normalize.Options, comp compress.Compressor) ([]*Result, error) {
	ts, err := decoder.DecodeFile(c.fs, decoder.SharedPath(dir, a.Name))
	if err != nil {
		return nil, err
	}

	maps := make([]*decoder.Map, len(files))
	for i, f := range files {
		maps[i] = &f.Map
	}
	normalize.Charset(&ts.Tiles, maps, opts)
	animation.Sort(files)

	res := &Result{
		Name:      a.Name,
		Section:   a.Section,
		Animation: artifact.Animation{Frames: 1, LargestFrame: ts.Tiles.Count},
	}
	if res.Tiles, err = compressTiles(ts.Tiles, comp, nil, nil); err != nil {
		return nil, err
	}

	for _, f := range files {
		m, err := c.maps(a, baseName(f.Path), f.Map)
		if err != nil {
			return nil, err
		}
		res.Maps = append(res.Maps, m...)
	}

	return []*Result{res}, nil
}

// individualFrames assembles one frame per file. Frames are always
// compressed one by one, even if the result is bigger, so that each frame
// can be loaded on its own.
func (c *Converter) individualFrames(a *config.Asset, files []*decoder.File, opts normalize.Options, comp compress.Compressor) ([]*Result, error) {
	for _, f := range files {
		normalize.File(f, opts)
	}

	asm, err := animation.Individual(files)
	if err != nil {
		return nil, err
	}

	cr, err := asm.Compress(comp)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Name:    a.Name,
		Section: a.Section,
		Tiles: artifact.Tiles{
			Count:        asm.Tiles.Count,
			Data:         cr.Data,
			Compression:  config.CompressionNone,
			FrameOffsets: cr.FrameOffsets,
		},
		Animation: artifact.Animation{Frames: asm.Frames, LargestFrame: asm.LargestFrame},
	}
	if comp != nil {
		res.Tiles.Compression = config.Compression(comp.Name())
		res.Tiles.Ratio = cr.Ratio
	}

	if res.Maps, err = c.maps(a, a.Name, asm.Maps...); err != nil {
		return nil, err
	}

	return []*Result{res}, nil
}

// waitForPipeline drains every channel and returns the first error seen.
func waitForPipeline(errs ...<-chan error) error {
	var first error
	for err := range mergeErrors(errs...) {
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
