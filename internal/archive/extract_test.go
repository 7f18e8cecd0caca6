package archive

import (
	"archive/tar"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writePackage builds a gzip tar archive at path from name -> content.
func writePackage(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	names := make([]string, 0, len(entries))
	for n := range entries {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, name := range names {
		data := entries[name]
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(data)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
}

func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, _ := filepath.Rel(root, p)
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	sort.Strings(out)
	return out
}

func TestExtract_Basic(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "sample.unitypackage")
	writePackage(t, pkg, map[string][]byte{
		"aabbccddeeff00112233445566778899/asset":    []byte("payload"),
		"aabbccddeeff00112233445566778899/pathname": []byte("Assets/Thing.cs\n"),
	})

	scratch, err := Extract(pkg, dir)
	require.NoError(t, err)
	t.Cleanup(func() { Cleanup(scratch) })

	assert.Equal(t, []string{
		"aabbccddeeff00112233445566778899/asset",
		"aabbccddeeff00112233445566778899/pathname",
	}, listFiles(t, scratch))
}

func TestExtract_NotFound(t *testing.T) {
	_, err := Extract(filepath.Join(t.TempDir(), "missing.unitypackage"), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExtract_Corrupt(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "junk.unitypackage")
	require.NoError(t, os.WriteFile(pkg, []byte("this is not gzip"), 0o644))

	_, err := Extract(pkg, dir)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestExtract_SkipsTraversalEntries(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "evil.unitypackage")
	writePackage(t, pkg, map[string][]byte{
		"../escape.txt":       []byte("nope"),
		"a/../../escape2.txt": []byte("nope"),
		"ok/asset":            []byte("fine"),
	})

	scratch, err := Extract(pkg, dir)
	require.NoError(t, err)
	t.Cleanup(func() { Cleanup(scratch) })

	assert.Equal(t, []string{"ok/asset"}, listFiles(t, scratch))
	_, statErr := os.Stat(filepath.Join(dir, "escape.txt"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestExtract_ScratchDirsAreUnique(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "sample.unitypackage")
	writePackage(t, pkg, map[string][]byte{"x/asset": []byte("a")})

	s1, err := Extract(pkg, dir)
	require.NoError(t, err)
	s2, err := Extract(pkg, dir)
	require.NoError(t, err)
	t.Cleanup(func() { Cleanup(s1); Cleanup(s2) })

	assert.NotEqual(t, s1, s2)
}

func TestWriteEntry_TruncatesAtLimit(t *testing.T) {
	dir := t.TempDir()

	target := filepath.Join(dir, "big.bin")
	require.NoError(t, writeEntry(target, strings.NewReader("abcdef"), 3))
	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	// an entry exactly at the limit survives whole
	target = filepath.Join(dir, "exact.bin")
	require.NoError(t, writeEntry(target, strings.NewReader("abc"), 3))
	got, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestCleanup_MissingDirIsQuiet(t *testing.T) {
	// must not panic or error on an already-deleted dir
	Cleanup(filepath.Join(t.TempDir(), "gone"))
}
