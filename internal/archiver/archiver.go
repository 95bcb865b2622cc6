package archiver

import (
	"archive/tar"
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"findfiles/internal/models"
	"findfiles/internal/progress"
	"findfiles/internal/utils"

	"github.com/klauspost/compress/gzip"
)

var gzipMagic = []byte{0x1f, 0x8b}

type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
)

type ProgressCallback func(current, total int64)

// Classify decides how a search root should be treated. The archive check is
// name based; the compression is sniffed later when the archive is opened.
func Classify(path string) models.Kind {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return models.KindDirectory
	}
	if utils.HasArchiveMarker(path) {
		return models.KindArchive
	}
	return models.KindInvalid
}

// ExtractedDir returns the directory an archive at path is unpacked into.
func ExtractedDir(path string) string {
	return utils.ExtractedDirName(path)
}

// DetectCompression peeks at the head of r. Without a recognised magic number
// the ".gz" suffix of name decides.
func DetectCompression(r *bufio.Reader, name string) Compression {
	head, _ := r.Peek(len(gzipMagic))
	if bytes.Equal(head, gzipMagic) {
		return CompressionGzip
	}
	if strings.HasSuffix(name, ".gz") && !looksLikeTar(r) {
		return CompressionGzip
	}
	return CompressionNone
}

// looksLikeTar checks for the ustar magic at offset 257 of the first header.
func looksLikeTar(r *bufio.Reader) bool {
	head, err := r.Peek(263)
	if err != nil {
		return false
	}
	return bytes.HasPrefix(head[257:], []byte("ustar"))
}

// ExtractArchive unpacks the tar (optionally gzip compressed) archive src into
// dest, creating dest if needed.
func ExtractArchive(src, dest string, progressCallback ProgressCallback) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat archive %s: %w", src, err)
	}
	if info.IsDir() {
		return fmt.Errorf("failed to open archive: %s is a directory", src)
	}

	var reader io.Reader = f
	if progressCallback != nil {
		var read int64
		total := info.Size()
		reader = &progress.ProgressReader{
			Reader: f,
			Callback: func(n int64) {
				read += n
				progressCallback(read, total)
			},
		}
	}

	br := bufio.NewReader(reader)
	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read archive %s: empty file", src)
		}
		return fmt.Errorf("failed to read archive %s: %w", src, err)
	}

	var stream io.Reader = br
	if DetectCompression(br, src) == CompressionGzip {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return fmt.Errorf("failed to open gzip stream %s: %w", src, err)
		}
		defer gz.Close()
		stream = gz
	}

	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dest, err)
	}

	return extractTar(tar.NewReader(stream), dest)
}

func extractTar(tr *tar.Reader, dest string) error {
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar header: %w", err)
		}

		cleanName := utils.SanitizeEntryName(header.Name)
		if cleanName == "" {
			continue
		}
		path := filepath.Join(dest, cleanName)

		if !utils.WithinDir(dest, path) {
			return fmt.Errorf("invalid file path %s: %w", header.Name, models.ErrUnsafeEntry)
		}
		if err := checkNoSymlinks(dest, path, header.Typeflag == tar.TypeDir); err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(path, header.FileInfo().Mode().Perm()|0700); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", path, err)
			}
		case tar.TypeReg:
			if err := writeFile(tr, path, header.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := writeSymlink(dest, path, header.Linkname); err != nil {
				return err
			}
		case tar.TypeLink:
			if err := writeHardlink(dest, path, header.Linkname); err != nil {
				return err
			}
		}
	}
}

// checkNoSymlinks refuses paths that pass through a symlink created by an
// earlier entry. The last component is checked too when self is set.
func checkNoSymlinks(dest, path string, self bool) error {
	rel, err := filepath.Rel(dest, path)
	if err != nil || rel == "." {
		return err
	}

	parts := strings.Split(rel, string(os.PathSeparator))
	if !self {
		parts = parts[:len(parts)-1]
	}

	cur := dest
	for _, part := range parts {
		cur = filepath.Join(cur, part)
		info, err := os.Lstat(cur)
		if os.IsNotExist(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to inspect %s: %w", cur, err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("path %s goes through symlink %s: %w", path, cur, models.ErrUnsafeEntry)
		}
	}
	return nil
}

// removeExisting clears a non-directory left at path so the new entry does
// not write through it.
func removeExisting(path string) error {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", path, err)
	}
	if info.IsDir() {
		return nil
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func writeFile(r io.Reader, path string, perm os.FileMode) error {
	if perm == 0 {
		perm = 0644
	}

	// Create the directory for the file
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := removeExisting(path); err != nil {
		return err
	}

	destFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}

	_, err = io.Copy(destFile, r)
	closeErr := destFile.Close()

	if err != nil {
		return fmt.Errorf("failed to extract file %s: %w", path, err)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close file %s: %w", path, closeErr)
	}
	return nil
}

// writeSymlink only materialises links whose target stays inside dest.
func writeSymlink(dest, path, linkname string) error {
	target := linkname
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	if !utils.WithinDir(dest, target) {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := removeExisting(path); err != nil {
		return err
	}
	if err := os.Symlink(linkname, path); err != nil {
		return fmt.Errorf("failed to create symlink %s: %w", path, err)
	}
	return nil
}

// writeHardlink links path to an entry extracted earlier. Link names are
// relative to the archive root.
func writeHardlink(dest, path, linkname string) error {
	cleanTarget := utils.SanitizeEntryName(linkname)
	target := filepath.Join(dest, cleanTarget)
	if cleanTarget == "" || !utils.WithinDir(dest, target) || target == filepath.Clean(dest) {
		return fmt.Errorf("invalid link target %s: %w", linkname, models.ErrUnsafeEntry)
	}
	if err := checkNoSymlinks(dest, target, false); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := removeExisting(path); err != nil {
		return err
	}
	if err := os.Link(target, path); err != nil {
		return fmt.Errorf("failed to create hard link %s: %w", path, err)
	}
	return nil
}
