package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nb "github.com/akeil/notebook"
	"github.com/akeil/notebook/pkg/memory"
)

func sampleBook(t *testing.T) *nb.Notebook {
	book, err := nb.Open(memory.New())
	require.NoError(t, err)
	work, err := book.CreateFolder(book.Root(), "Work")
	require.NoError(t, err)
	_, err = book.CreateContent(work, "Plan", "text/plain", "plan.txt", []byte("plan"))
	require.NoError(t, err)
	return book
}

func TestSplitPath(t *testing.T) {
	assert.Equal(t, []string{"foo", "bar"}, splitPath("/foo/bar"))
	assert.Equal(t, []string{"foo", "bar"}, splitPath("foo//bar/"))
	assert.Empty(t, splitPath("/"))
}

func TestFindNode(t *testing.T) {
	book := sampleBook(t)

	n, err := findNode(book, "/work/PLAN")
	require.NoError(t, err)
	assert.Equal(t, "Plan", n.Title())

	n, err = findNode(book, "/")
	require.NoError(t, err)
	assert.Same(t, book.Root(), n)

	_, err = findNode(book, "work/missing")
	assert.Error(t, err)
}

func TestFindDst(t *testing.T) {
	book := sampleBook(t)

	n, name, err := findDst(book, "Work")
	require.NoError(t, err)
	assert.Equal(t, "Work", n.Title())
	assert.Equal(t, "", name)

	n, name, err = findDst(book, "Work/New")
	require.NoError(t, err)
	assert.Equal(t, "Work", n.Title())
	assert.Equal(t, "New", name)

	_, _, err = findDst(book, "Work/Plan/New")
	assert.Error(t, err, "content is not a folder")
	_, _, err = findDst(book, "a/b/c")
	assert.Error(t, err)
}

func TestNormalizeSrcDst(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0644))
	}

	src, dst, err := normalizeSrcDst([]string{filepath.Join(dir, "*.txt"), "Work"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")}, src)
	assert.Equal(t, "Work", dst)

	src, dst, err = normalizeSrcDst([]string{filepath.Join(dir, "c.md")})
	require.NoError(t, err)
	assert.Len(t, src, 1)
	assert.Equal(t, "", dst)

	_, _, err = normalizeSrcDst([]string{filepath.Join(dir, "missing"), "/"})
	assert.Error(t, err)

	assert.Equal(t, "c", titleFromFilename(filepath.Join(dir, "c.md")))
}

func TestLoadSettings(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	s, err := loadSettings("")
	require.NoError(t, err)
	assert.Equal(t, "fs", s.Backend)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: sqlite\npath: /tmp/nb.db\n"), 0644))
	s, err = loadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", s.Backend)
	assert.Equal(t, "/tmp/nb.db", s.Path)
	assert.Equal(t, "warning", s.LogLevel)

	s = s.override("fs", "", "debug", "")
	assert.Equal(t, "fs", s.Backend)
	assert.Equal(t, "/tmp/nb.db", s.Path)
	assert.Equal(t, "debug", s.LogLevel)

	require.NoError(t, os.WriteFile(path, []byte("unknown: x\n"), 0644))
	_, err = loadSettings(path)
	assert.Error(t, err)

	_, err = loadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "explicit file must exist")
}
