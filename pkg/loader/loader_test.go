package loader_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/filetree"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/loader"
)

type zipEntry struct {
	name string
	body string
}

func writeZip(t *testing.T, path string, entries []zipEntry) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)

	for _, e := range entries {
		w, createErr := zw.Create(e.name)
		require.NoError(t, createErr)

		_, writeErr := w.Write([]byte(e.body))
		require.NoError(t, writeErr)
	}

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func fileNames(res *loader.Result) []string {
	var names []string

	for _, id := range res.Tree.Files() {
		var parts []string

		for cur := id; cur != res.Tree.Root(); cur = res.Tree.Parent(cur) {
			parts = append([]string{res.Tree.Node(cur).Name}, parts...)
		}

		names = append(names, strings.Join(parts, "/"))
	}

	return names
}

func TestLoad_ZipScenario(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	scratch := t.TempDir()
	zipPath := filepath.Join(dir, "bundle.zip")

	writeZip(t, zipPath, []zipEntry{
		{"empty.txt", ""},
		{"notes.md", "# notes"},
		{"src/main.go", "package main"},
		{"src/util.py", "import os"},
	})

	res, err := loader.New(loader.WithTempDir(scratch)).Load(context.Background(), zipPath)
	require.NoError(t, err)

	files := res.Tree.Files()
	require.Len(t, files, 4)
	assert.Len(t, res.Payloads, 4)

	empty := res.Tree.Node(files[0])
	assert.Equal(t, "empty.txt", empty.Name)
	assert.Zero(t, empty.Size)

	payload, ok := res.Payloads.Get(empty.BinaryIndex)
	require.True(t, ok)
	assert.NotNil(t, payload)
	assert.Empty(t, payload)

	for _, id := range files {
		n := res.Tree.Node(id)
		assert.False(t, n.FSBacked)
		assert.True(t, n.CreatedAt.IsZero())
		assert.Contains(t, n.Path, filepath.ToSlash(zipPath)+"/")
	}

	archive := res.Tree.Children(res.Tree.Root())
	require.Len(t, archive, 1)
	assert.Equal(t, filetree.KindArchive, res.Tree.Node(archive[0]).Kind)

	leftovers, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, leftovers, "extraction dir must be removed")
}

func TestLoad_ZipFlattensSelfNamedFolder(t *testing.T) {
	t.Parallel()

	zipPath := filepath.Join(t.TempDir(), "project.zip")
	writeZip(t, zipPath, []zipEntry{
		{"project/", ""},
		{"project/readme.md", "hi"},
		{"project/lib/a.go", "package lib"},
		{"__MACOSX/project/._readme.md", "junk"},
		{"project/.DS_Store", "junk"},
	})

	res, err := loader.New(loader.WithTempDir(t.TempDir())).Load(context.Background(), zipPath)
	require.NoError(t, err)

	assert.Equal(t, []string{"project.zip/lib/a.go", "project.zip/readme.md"}, fileNames(res))
}

func TestLoad_ZipSlipRejected(t *testing.T) {
	t.Parallel()

	scratch := t.TempDir()
	zipPath := filepath.Join(t.TempDir(), "evil.zip")
	writeZip(t, zipPath, []zipEntry{{"../escape.txt", "x"}})

	_, err := loader.New(loader.WithTempDir(scratch)).Load(context.Background(), zipPath)
	require.ErrorIs(t, err, loader.ErrInvalidArchive)

	leftovers, readErr := os.ReadDir(scratch)
	require.NoError(t, readErr)
	assert.Empty(t, leftovers)
}

func TestLoad_CorruptZip(t *testing.T) {
	t.Parallel()

	zipPath := filepath.Join(t.TempDir(), "broken.zip")
	writeFile(t, zipPath, "definitely not a zip")

	_, err := loader.New().Load(context.Background(), zipPath)
	require.ErrorIs(t, err, loader.ErrInvalidArchive)
}

func TestLoad_Directory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.txt"), "bravo")
	writeFile(t, filepath.Join(root, "a", "z.go"), "package a")
	writeFile(t, filepath.Join(root, "a", "y.md"), "why")

	res, err := loader.New().Load(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"a/y.md", "a/z.go", "b.txt"}, fileNames(res))

	for want, id := range res.Tree.Files() {
		n := res.Tree.Node(id)
		assert.Equal(t, want, n.BinaryIndex, "indices follow walk order")
		assert.True(t, n.FSBacked)
		assert.False(t, n.LastModified.IsZero())

		data, ok := res.Payloads.Get(n.BinaryIndex)
		require.True(t, ok)

		onDisk, err := os.ReadFile(n.Path)
		require.NoError(t, err)
		assert.Equal(t, onDisk, data)
		assert.Equal(t, int64(len(onDisk)), n.Size)
	}

	assert.Equal(t, ".go", res.Tree.Node(res.Tree.Files()[1]).Extension)
}

func TestLoad_DirectoryExpandsNestedZip(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "top.txt"), "top")
	writeZip(t, filepath.Join(root, "inner.zip"), []zipEntry{{"doc.md", "inner"}})

	res, err := loader.New(loader.WithTempDir(t.TempDir())).Load(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"inner.zip/doc.md", "top.txt"}, fileNames(res))
}

func TestLoad_SingleFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "solo.py")
	writeFile(t, path, "print('hi')")

	res, err := loader.New().Load(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, res.Tree.Files(), 1)
	assert.Equal(t, path, res.Tree.Node(res.Tree.Files()[0]).Path)
	assert.Equal(t, 1, res.Payloads.Live())
}

func TestLoad_ValidationErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	rar := filepath.Join(dir, "archive.r00")
	writeFile(t, rar, "rar")

	big := filepath.Join(dir, "big", "big.txt")
	writeFile(t, big, "0123456789abcdef")

	many := filepath.Join(dir, "many")
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		writeFile(t, filepath.Join(many, name), "12345678")
	}

	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing", filepath.Join(dir, "nope"), loader.ErrPathNotFound},
		{"rar", rar, loader.ErrUnsupportedArchive},
		{"file too large", big, loader.ErrFileTooLarge},
		{"dir with large file", filepath.Dir(big), loader.ErrFileTooLarge},
		{"tree too large", many, loader.ErrTreeTooLarge},
	}

	l := loader.New(loader.WithLimits(10, 20))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := l.Load(context.Background(), tt.path)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoad_ZipOverLimit(t *testing.T) {
	t.Parallel()

	zipPath := filepath.Join(t.TempDir(), "large.zip")
	writeZip(t, zipPath, []zipEntry{{"a.txt", "0123456789"}, {"b.txt", "0123456789"}})

	_, err := loader.New(loader.WithLimits(1<<20, 15)).Load(context.Background(), zipPath)
	require.ErrorIs(t, err, loader.ErrTreeTooLarge)
}

func TestLoad_AggregateCountsExpandedArchives(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("x", 600)
	root := t.TempDir()
	writeZip(t, filepath.Join(root, "a.zip"), []zipEntry{{"big.txt", body}})
	writeFile(t, filepath.Join(root, "b.txt"), body)

	_, err := loader.New(loader.WithLimits(1000, 1000)).Load(context.Background(), root)
	require.ErrorIs(t, err, loader.ErrTreeTooLarge)

	res, err := loader.New(loader.WithLimits(1000, 1200)).Load(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.zip/big.txt", "b.txt"}, fileNames(res))
}

func TestLoad_InvalidArchiveInDirectoryFails(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ok.txt"), "fine")
	writeFile(t, filepath.Join(root, "bad.zip"), "not a zip")

	_, err := loader.New().Load(context.Background(), root)
	require.ErrorIs(t, err, loader.ErrInvalidArchive)

	slipRoot := t.TempDir()
	writeZip(t, filepath.Join(slipRoot, "evil.zip"), []zipEntry{{"../escape.txt", "boom"}})

	_, err = loader.New().Load(context.Background(), slipRoot)
	require.ErrorIs(t, err, loader.ErrInvalidArchive)
}
