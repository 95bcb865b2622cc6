package scanner

import (
	"fmt"
	"os"
	"path/filepath"

	"findfiles/internal/models"
	"findfiles/internal/utils"
)

// DefaultSuffixes are the result file suffixes looked for when none are given.
var DefaultSuffixes = []string{".info", ".pickle", ".pickle.gz"}

// Walk searches root and every directory below it for files whose name ends
// with one of suffixes. Matches from a directory are listed before anything
// found in its subdirectories. It returns the matches and the last directory
// visited.
func Walk(root string, suffixes []string, observer models.Observer) ([]string, string, error) {
	if len(suffixes) == 0 {
		suffixes = DefaultSuffixes
	}
	w := &walker{suffixes: suffixes, observer: observer}
	if err := w.visit(root); err != nil {
		return w.files, w.lastDir, err
	}
	return w.files, w.lastDir, nil
}

type walker struct {
	suffixes []string
	observer models.Observer
	files    []string
	lastDir  string
}

func (w *walker) visit(dir string) error {
	w.lastDir = dir
	if w.observer != nil {
		w.observer.Notify(models.Event{Type: models.EventSearching, Path: dir})
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("error reading directory %s: %w", dir, err)
	}

	var subdirs []string
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		// Symlinked directories count as files and are never descended into
		if e.IsDir() {
			subdirs = append(subdirs, path)
			continue
		}
		if utils.HasAnySuffix(e.Name(), w.suffixes) {
			w.files = append(w.files, path)
		}
	}

	for _, sub := range subdirs {
		if err := w.visit(sub); err != nil {
			return err
		}
	}
	return nil
}
