package finder

import (
	"fmt"

	"findfiles/internal/archiver"
	"findfiles/internal/models"
	"findfiles/internal/progress"
	"findfiles/internal/scanner"
)

const DefaultDirectory = "."

// Find lists the result files under opts.Directory. When the directory names
// a tar archive it is first unpacked next to it into "<prefix>-extracted",
// which is left on disk. An empty result is not an error: a single warning
// event is emitted and Result.Warning is set.
func Find(opts models.Options) (models.Result, error) {
	dir := opts.Directory
	if dir == "" {
		dir = DefaultDirectory
	}
	observer := opts.Observer
	if observer == nil {
		observer = progress.Discard
	}
	verbose := observer
	if !opts.Verbose {
		verbose = progress.Discard
	}

	result := models.Result{Root: dir}

	switch archiver.Classify(dir) {
	case models.KindDirectory:
	case models.KindArchive:
		dest := archiver.ExtractedDir(dir)
		if err := archiver.ExtractArchive(dir, dest, opts.ProgressCallback); err != nil {
			return result, fmt.Errorf("error extracting %s: %w", dir, err)
		}
		result.Root = dest
		result.Extracted = true
		verbose.Notify(models.Event{Type: models.EventExtracted, Path: dest})
	default:
		return result, fmt.Errorf("%s: %w", dir, models.ErrInvalidPath)
	}

	files, lastDir, err := scanner.Walk(result.Root, opts.Suffixes, verbose)
	result.LastDir = lastDir
	if err != nil {
		return result, fmt.Errorf("error scanning directory: %w", err)
	}
	result.Files = files

	verbose.Notify(models.Event{Type: models.EventFound, Path: result.Root, Count: len(files)})

	if len(files) == 0 {
		result.Warning = fmt.Sprintf("Could not find any file of interest in %s!", lastDir)
		observer.Notify(models.Event{Type: models.EventWarning, Path: lastDir, Message: result.Warning})
	}

	return result, nil
}
