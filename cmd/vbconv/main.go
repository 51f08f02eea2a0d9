package main

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"sync"

	"github.com/bodgit/vbconv"
	"github.com/bodgit/vbconv/cache"
	"github.com/bodgit/vbconv/config"
	"github.com/bodgit/vbconv/fsx"
	"github.com/bodgit/vbconv/log"
	"github.com/bodgit/vbconv/process"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func loadProject(c *cli.Context) (*config.Project, error) {
	p, err := config.LoadProject(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("converter") {
		p.Converter = c.String("converter")
	}
	return p, nil
}

func openHistory(c *cli.Context, p *config.Project) (*cache.Store, error) {
	if c.Bool("no-history") || p.Cache == "" {
		return nil, nil
	}
	return cache.Open(p.Cache)
}

func convert(changedOnly bool) cli.ActionFunc {
	return func(c *cli.Context) error {
		root := c.Args().First()
		if root == "" {
			root = "."
		}

		p, err := loadProject(c)
		if err != nil {
			return cli.Exit(err, 1)
		}

		logger := log.Nop()
		if c.Bool("verbose") {
			logger = log.New(os.Stderr, true)
		}
		defer logger.Sync() //nolint:errcheck

		history, err := openHistory(c, p)
		if err != nil {
			return cli.Exit(err, 1)
		}
		if history != nil {
			defer history.Close()
		}

		conv := vbconv.New(fsx.OS{}, process.NewExec(), p, logger, history)

		updates, cancel := conv.Progress().Subscribe(64)
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range updates {
				renderUpdate(os.Stdout, u)
			}
		}()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		var report *vbconv.Report
		if changedOnly {
			report, err = conv.ConvertChanged(ctx, root)
		} else {
			report, err = conv.ConvertAll(ctx, root)
		}

		cancel()
		wg.Wait()

		if err != nil {
			return cli.Exit(err, 1)
		}
		if n := report.Failed(); n > 0 {
			return cli.Exit(fmt.Sprintf("%d of %d assets failed", n, len(report.Assets)), 1)
		}

		logger.Debug("batch complete", zap.String("run_id", report.Run.String()))

		return nil
	}
}

func main() {
	app := cli.NewApp()

	app.Name = "vbconv"
	app.Usage = "Virtual Boy image to tile converter"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			EnvVars: []string{"VBCONV_CONFIG"},
			Value:   filepath.Join(cwd, config.DefaultProjectFile),
			Usage:   "path to project configuration",
		},
		&cli.StringFlag{
			Name:    "converter",
			EnvVars: []string{"VBCONV_CONVERTER"},
			Usage:   "path to the external tile converter",
		},
		&cli.BoolFlag{
			Name:  "no-history",
			Usage: "do not record conversions",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "convert",
			Usage:     "Convert every asset",
			ArgsUsage: "[DIRECTORY]",
			Action:    convert(false),
		},
		{
			Name:      "changed",
			Usage:     "Convert only assets whose images or configuration changed",
			ArgsUsage: "[DIRECTORY]",
			Action:    convert(true),
		},
		{
			Name:      "status",
			Usage:     "Show recent conversions",
			ArgsUsage: "[CONFIG]",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "limit",
					Value: 20,
					Usage: "number of conversions to show, 0 for all",
				},
			},
			Action: func(c *cli.Context) error {
				p, err := loadProject(c)
				if err != nil {
					return cli.Exit(err, 1)
				}

				history, err := cache.Open(p.Cache)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer history.Close()

				if c.NArg() > 0 {
					file, err := filepath.Abs(c.Args().First())
					if err != nil {
						return cli.Exit(err, 1)
					}
					r, err := history.Last(file)
					if err != nil {
						return cli.Exit(err, 1)
					}
					if r == nil {
						return cli.Exit(fmt.Sprintf("%s was never converted", file), 1)
					}
					renderRecord(os.Stdout, *r)
					return nil
				}

				records, err := history.List(c.Int("limit"))
				if err != nil {
					return cli.Exit(err, 1)
				}

				for _, r := range records {
					renderRecord(os.Stdout, r)
				}

				return nil
			},
		},
		{
			Name:      "preview",
			Usage:     "Render a generated source back into a PNG",
			ArgsUsage: "SOURCE IMAGE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				m, err := vbconv.Preview(fsx.OS{}, c.Args().Get(0))
				if err != nil {
					return cli.Exit(err, 1)
				}

				f, err := os.Create(c.Args().Get(1))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer f.Close()

				if err := png.Encode(f, m); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
