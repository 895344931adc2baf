// Package fileprocessor handles the expansion of file arguments and their sequential processing.
package fileprocessor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/retroenv/bblevel/internal/options"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// ProcessFunc processes the input file set in the options.
type ProcessFunc func(ctx context.Context, opts options.Program) error

// GetFilesToProcess returns the list of files matching the given arguments.
// Arguments containing glob patterns are expanded, other arguments are
// returned unchanged.
func GetFilesToProcess(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[") {
			files = append(files, arg)
			continue
		}

		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match pattern '%s'", arg)
		}
		files = append(files, matches...)
	}
	return files, nil
}

// ProcessFiles calls the process function for every file. Processing stops
// at the first error or when the context is cancelled.
func ProcessFiles(ctx context.Context, opts options.Program, files []string, process ProcessFunc) error {
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		opts.Input = file
		if err := process(ctx, opts); err != nil {
			return fmt.Errorf("processing %s: %w", file, err)
		}
	}
	return nil
}

// GenerateOutputFilename generates output filename for a given input file
func GenerateOutputFilename(inputFile, extension string) string {
	ext := filepath.Ext(inputFile)
	return inputFile[:len(inputFile)-len(ext)] + extension
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}
	logger.Info("bblevel", log.String("version", buildinfo.Version(version, commit, date)))
}
