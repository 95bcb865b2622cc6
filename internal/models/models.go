package models

import "errors"

var (
	ErrInvalidPath = errors.New("path is neither a directory nor a tar archive")
	ErrUnsafeEntry = errors.New("archive entry escapes the destination directory")
)

// Kind is the classification of an input path.
type Kind int

const (
	KindInvalid Kind = iota
	KindDirectory
	KindArchive
)

type EventType int

const (
	EventSearching EventType = iota
	EventExtracted
	EventFound
	EventWarning
)

// Event is emitted while a search runs. Path names the directory concerned,
// Count is only set for EventFound.
type Event struct {
	Type    EventType
	Path    string
	Count   int
	Message string
}

type Observer interface {
	Notify(Event)
}

// Options configures a single search.
type Options struct {
	Directory string
	Verbose   bool
	Suffixes  []string
	Observer  Observer
	// ProgressCallback receives extraction progress in bytes. Optional.
	ProgressCallback func(current, total int64)
}

type Result struct {
	Files     []string
	Root      string
	LastDir   string
	Extracted bool
	Warning   string
}
