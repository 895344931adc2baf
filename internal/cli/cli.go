// Package cli handles command line interface logic
package cli

import (
	"context"
	"errors"

	"github.com/retroenv/bblevel/internal/config"
	"github.com/retroenv/bblevel/internal/fileprocessor"
	"github.com/retroenv/bblevel/internal/options"
	"github.com/retroenv/bblevel/internal/pipeline"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
	urfave "github.com/urfave/cli/v2"
)

var (
	// ErrMissingFile is returned when a command is called without a file argument.
	ErrMissingFile = errors.New("no input file given")
	// ErrOutputWithBatch is returned when an output name is given for multiple input files.
	ErrOutputWithBatch = errors.New("output name can not be used with multiple input files")
)

// documentExtension is the extension of documents exported in batch mode.
const documentExtension = ".yaml"

// Flag names.
const (
	layoutFlag = "layout"
	debugFlag  = "debug"
	quietFlag  = "quiet"
	outputFlag = "output"
	levelsFlag = "levels"
)

// New returns the command line application.
func New(version, commit, date string) *urfave.App {
	app := urfave.NewApp()
	app.Name = "bblevel"
	app.Usage = "level data decoder and patcher for the game program image"
	app.Version = buildinfo.Version(version, commit, date)

	app.Flags = []urfave.Flag{
		&urfave.StringFlag{
			Name:  layoutFlag,
			Usage: "YAML file overriding addresses and capacities of the default image layout",
		},
		&urfave.BoolFlag{
			Name:  debugFlag,
			Usage: "enable debugging options for extended logging",
		},
		&urfave.BoolFlag{
			Name:    quietFlag,
			Aliases: []string{"q"},
			Usage:   "perform operations quietly",
		},
	}

	app.Commands = []*urfave.Command{
		{
			Name:      "info",
			Usage:     "Decode the levels and print the segment table",
			ArgsUsage: "FILE...",
			Action: func(c *urfave.Context) error {
				return runFiles(c, version, commit, date, (*pipeline.Pipeline).Info)
			},
		},
		{
			Name:      "export",
			Usage:     "Decode the levels and write them as a YAML document",
			ArgsUsage: "FILE...",
			Flags: []urfave.Flag{
				&urfave.StringFlag{
					Name:    outputFlag,
					Aliases: []string{"o"},
					Usage:   "name of the output document, printed on console if no name given; multiple files are written next to their inputs",
				},
			},
			Action: func(c *urfave.Context) error {
				return export(c, version, commit, date)
			},
		},
		{
			Name:      "patch",
			Usage:     "Write the levels of a YAML document into the image",
			ArgsUsage: "FILE",
			Flags: []urfave.Flag{
				&urfave.StringFlag{
					Name:     levelsFlag,
					Aliases:  []string{"l"},
					Usage:    "name of the level document to import",
					Required: true,
				},
				&urfave.StringFlag{
					Name:     outputFlag,
					Aliases:  []string{"o"},
					Usage:    "name of the patched output image",
					Required: true,
				},
			},
			Action: func(c *urfave.Context) error {
				opts, logger, err := setup(c, version, commit, date)
				if err != nil {
					return err
				}
				opts.Levels = c.String(levelsFlag)
				opts.Output = c.String(outputFlag)
				return pipeline.New(logger).Patch(c.Context, opts)
			},
		},
		{
			Name:      "watch",
			Usage:     "Patch the image again every time the YAML document changes",
			ArgsUsage: "FILE",
			Flags: []urfave.Flag{
				&urfave.StringFlag{
					Name:     levelsFlag,
					Aliases:  []string{"l"},
					Usage:    "name of the level document to watch",
					Required: true,
				},
				&urfave.StringFlag{
					Name:     outputFlag,
					Aliases:  []string{"o"},
					Usage:    "name of the patched output image",
					Required: true,
				},
			},
			Action: func(c *urfave.Context) error {
				opts, logger, err := setup(c, version, commit, date)
				if err != nil {
					return err
				}
				opts.Levels = c.String(levelsFlag)
				opts.Output = c.String(outputFlag)
				return pipeline.New(logger).Watch(c.Context, opts)
			},
		},
		{
			Name:      "verify",
			Usage:     "Check that decoding and patching recreates the image byte for byte",
			ArgsUsage: "FILE...",
			Action: func(c *urfave.Context) error {
				return runFiles(c, version, commit, date, (*pipeline.Pipeline).Verify)
			},
		},
	}

	return app
}

// setup reads the global options, creates the logger and prints the banner.
func setup(c *urfave.Context, version, commit, date string) (options.Program, *log.Logger, error) {
	opts := options.Program{
		Parameters: options.Parameters{
			Input:  c.Args().First(),
			Layout: c.String(layoutFlag),
		},
		Flags: options.Flags{
			Debug: c.Bool(debugFlag),
			Quiet: c.Bool(quietFlag),
		},
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	if c.NArg() < 1 {
		_ = urfave.ShowSubcommandHelp(c)
		return opts, logger, ErrMissingFile
	}
	return opts, logger, nil
}

// export writes the document of a single image to the output or the console.
// Multiple images are exported to documents named after their input files.
func export(c *urfave.Context, version, commit, date string) error {
	opts, logger, err := setup(c, version, commit, date)
	if err != nil {
		return err
	}

	files, err := fileprocessor.GetFilesToProcess(c.Args().Slice())
	if err != nil {
		return err
	}

	p := pipeline.New(logger)
	output := c.String(outputFlag)
	if len(files) == 1 {
		opts.Input = files[0]
		opts.Output = output
		return p.Export(c.Context, opts, c.App.Writer)
	}
	if output != "" {
		return ErrOutputWithBatch
	}

	return fileprocessor.ProcessFiles(c.Context, opts, files, func(ctx context.Context, opts options.Program) error {
		opts.Output = fileprocessor.GenerateOutputFilename(opts.Input, documentExtension)
		return p.Export(ctx, opts, nil)
	})
}

func runFiles(c *urfave.Context, version, commit, date string,
	process func(*pipeline.Pipeline, context.Context, options.Program) error) error {

	opts, logger, err := setup(c, version, commit, date)
	if err != nil {
		return err
	}

	files, err := fileprocessor.GetFilesToProcess(c.Args().Slice())
	if err != nil {
		return err
	}

	p := pipeline.New(logger)
	return fileprocessor.ProcessFiles(c.Context, opts, files, func(ctx context.Context, opts options.Program) error {
		return process(p, ctx, opts)
	})
}
