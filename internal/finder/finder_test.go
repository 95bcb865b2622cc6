package finder

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"findfiles/internal/models"
	"findfiles/internal/progress/progresstest"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("test content"), 0644))
	}
}

func writeTar(t *testing.T, path string, compress bool, files ...string) {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, f := range files {
		body := []byte("data")
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: f, Mode: 0644, Size: int64(len(body)), Typeflag: tar.TypeReg}))
		_, err := tw.Write(body)
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())

	data := buf.Bytes()
	if compress {
		var gz bytes.Buffer
		gw := gzip.NewWriter(&gz)
		_, err := gw.Write(data)
		require.NoError(t, err)
		require.NoError(t, gw.Close())
		data = gz.Bytes()
	}
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func TestFind_Directory(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, "a.info", "b.pickle", "c.pickle.gz", "d.txt", "sub/e.info")

	rec := &progresstest.Recorder{}
	result, err := Find(models.Options{Directory: tmpDir, Verbose: true, Observer: rec})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(tmpDir, "a.info"),
		filepath.Join(tmpDir, "b.pickle"),
		filepath.Join(tmpDir, "c.pickle.gz"),
		filepath.Join(tmpDir, "sub", "e.info"),
	}, result.Files)
	assert.Equal(t, tmpDir, result.Root)
	assert.False(t, result.Extracted)
	assert.Empty(t, result.Warning)

	assert.Equal(t, 2, rec.Count(models.EventSearching))
	assert.Equal(t, 1, rec.Count(models.EventFound))
	assert.Equal(t, 0, rec.Count(models.EventWarning))

	events := rec.Events()
	last := events[len(events)-1]
	assert.Equal(t, models.EventFound, last.Type)
	assert.Equal(t, 4, last.Count)
}

func TestFind_EmptyDirectoryWarnsOnce(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, "notes.txt", "sub/other.csv")

	rec := &progresstest.Recorder{}
	result, err := Find(models.Options{Directory: tmpDir, Verbose: true, Observer: rec})
	require.NoError(t, err)

	assert.Empty(t, result.Files)
	assert.Equal(t, 1, rec.Count(models.EventWarning))
	assert.Equal(t, filepath.Join(tmpDir, "sub"), result.LastDir)
	assert.Equal(t, "Could not find any file of interest in "+filepath.Join(tmpDir, "sub")+"!", result.Warning)
}

func TestFind_QuietStillWarns(t *testing.T) {
	tmpDir := t.TempDir()

	rec := &progresstest.Recorder{}
	result, err := Find(models.Options{Directory: tmpDir, Verbose: false, Observer: rec})
	require.NoError(t, err)

	assert.Empty(t, result.Files)
	require.Len(t, rec.Events(), 1)
	assert.Equal(t, models.EventWarning, rec.Events()[0].Type)
	assert.Equal(t, tmpDir, rec.Events()[0].Path)
}

func TestFind_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, "a.info", "x/b.pickle", "x/y/c.pickle.gz", "z/d.info")

	first, err := Find(models.Options{Directory: tmpDir})
	require.NoError(t, err)
	second, err := Find(models.Options{Directory: tmpDir})
	require.NoError(t, err)

	assert.Equal(t, first.Files, second.Files)
}

func TestFind_TarGzArchive(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "bbob.tar.gz")
	writeTar(t, src, true, "x/y.info", "x/notes.txt")

	rec := &progresstest.Recorder{}
	result, err := Find(models.Options{Directory: src, Verbose: true, Observer: rec})
	require.NoError(t, err)

	dest := filepath.Join(tmpDir, "bbob-extracted")
	assert.True(t, result.Extracted)
	assert.Equal(t, dest, result.Root)
	require.Len(t, result.Files, 1)
	assert.True(t, strings.HasSuffix(result.Files[0], filepath.Join("x", "y.info")))
	assert.True(t, strings.HasPrefix(result.Files[0], dest))
	assert.Equal(t, 1, rec.Count(models.EventExtracted))
	assert.DirExists(t, dest)
}

func TestFind_PlainTarArchive(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "bbob.tar")
	writeTar(t, src, false, "x/y.info")

	result, err := Find(models.Options{Directory: src})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tmpDir, "bbob-extracted", "x", "y.info")}, result.Files)
}

func TestFind_ArchiveProgress(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "bbob.tar.gz")
	writeTar(t, src, true, "x/y.info")

	calls := 0
	_, err := Find(models.Options{
		Directory:        src,
		ProgressCallback: func(current, total int64) { calls++ },
	})
	require.NoError(t, err)
	assert.Greater(t, calls, 0)
}

func TestFind_InvalidPath(t *testing.T) {
	rec := &progresstest.Recorder{}
	_, err := Find(models.Options{Directory: filepath.Join(t.TempDir(), "missing"), Verbose: true, Observer: rec})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidPath)
	assert.Empty(t, rec.Events())
}

func TestFind_MissingArchive(t *testing.T) {
	_, err := Find(models.Options{Directory: filepath.Join(t.TempDir(), "missing.tar.gz")})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFind_CustomSuffixes(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, "a.info", "b.dat")

	result, err := Find(models.Options{Directory: tmpDir, Suffixes: []string{".dat"}})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tmpDir, "b.dat")}, result.Files)
}

func TestFind_DefaultsToCurrentDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, "a.info")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() { os.Chdir(wd) })

	result, err := Find(models.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.info"}, result.Files)
	assert.Equal(t, DefaultDirectory, result.Root)
}
