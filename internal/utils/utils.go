package utils

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	ArchiveMarker   = ".tar"
	ExtractedSuffix = "-extracted"
)

// HasArchiveMarker reports whether the path contains ".tar" anywhere.
func HasArchiveMarker(path string) bool {
	return strings.Contains(path, ArchiveMarker)
}

// ExtractedDirName truncates path at the first ".tar" and appends "-extracted".
func ExtractedDirName(path string) string {
	prefix, _, _ := strings.Cut(path, ArchiveMarker)
	return prefix + ExtractedSuffix
}

// SanitizeEntryName turns an archive entry name into a relative, slash-free
// path fragment suitable for joining onto a destination directory.
func SanitizeEntryName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")

	// Strip leading slashes so absolute entries land under dest
	name = strings.TrimLeft(name, "/")

	if name == "" {
		return ""
	}
	return filepath.FromSlash(name)
}

// WithinDir reports whether path resolves to dest or somewhere below it.
func WithinDir(dest, path string) bool {
	dest = filepath.Clean(dest)
	path = filepath.Clean(path)
	if path == dest {
		return true
	}
	return strings.HasPrefix(path, dest+string(os.PathSeparator))
}

func HasAnySuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}
