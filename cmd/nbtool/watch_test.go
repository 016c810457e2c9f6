package main

import (
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nb "github.com/akeil/notebook"
	"github.com/akeil/notebook/pkg/memory"
)

func TestDiff(t *testing.T) {
	st := memory.New()
	book, err := nb.Open(st)
	require.NoError(t, err)
	a, err := book.CreateFolder(book.Root(), "A")
	require.NoError(t, err)
	b, err := book.CreateFolder(book.Root(), "B")
	require.NoError(t, err)
	_, err = book.Sync()
	require.NoError(t, err)

	old, err := nb.Open(st)
	require.NoError(t, err)

	require.NoError(t, a.SetTitle("A2"))
	require.NoError(t, book.Delete(b))
	c, err := book.CreateFolder(book.Root(), "C")
	require.NoError(t, err)
	book.Preferences().Set("k", "v")
	_, err = book.Sync()
	require.NoError(t, err)

	fresh, err := nb.Open(st)
	require.NoError(t, err)

	r := diff(old, fresh)
	assert.Equal(t, []string{c.ID()}, r.Added)
	assert.Equal(t, []string{a.ID()}, r.Updated)
	assert.Equal(t, []string{b.ID()}, r.Removed)
	assert.True(t, r.Preferences)

	assert.True(t, diff(fresh, fresh).Empty())
}

func TestRelevant(t *testing.T) {
	fsSettings := settings{Backend: "fs", Path: "/data/nb"}
	assert.True(t, relevant(fsSettings, fsnotify.Event{Name: "/data/nb/abc/node.xml"}))
	assert.False(t, relevant(fsSettings, fsnotify.Event{Name: "/data/nb/abc/.nb-tmp-123"}))

	dbSettings := settings{Backend: "sqlite", Path: "/data/nb.db"}
	assert.True(t, relevant(dbSettings, fsnotify.Event{Name: "/data/nb.db-journal"}))
	assert.False(t, relevant(dbSettings, fsnotify.Event{Name: "/data/other.txt"}))
}

func TestWatchPaths(t *testing.T) {
	s := defaultSettings()
	s.Path = t.TempDir()
	require.NoError(t, doInit(s))

	paths := watchPaths(s)
	assert.Len(t, paths, 3, "base, root and trash")
	assert.Equal(t, s.Path, paths[0])

	s.Backend = "sqlite"
	s.Path = filepath.Join(s.Path, "x.db")
	assert.Equal(t, []string{filepath.Dir(s.Path)}, watchPaths(s))
}
