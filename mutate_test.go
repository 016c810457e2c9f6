package notebook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nb "github.com/akeil/notebook"
	"github.com/akeil/notebook/pkg/memory"
)

func openSample(t *testing.T) *nb.Notebook {
	s := storageWith(t,
		folder("root", ""),
		trash("trash", "root"),
		folder("a", "root"),
		folder("b", "a"),
		content("c", "b"),
		folder("d", "root"),
		content("e", "d"),
		content("f", "d"),
		content("g", "trash"),
	)
	book, err := nb.Open(s)
	require.NoError(t, err)
	return book
}

func TestCreateFolder(t *testing.T) {
	book := openSample(t)
	a := book.Node("a")

	n, err := book.CreateFolder(a, "New")
	require.NoError(t, err)
	assert.Equal(t, nb.FolderKind, n.Kind())
	assert.Equal(t, nb.FolderContentType, n.ContentType())
	assert.Same(t, a, n.Parent())
	assert.Same(t, n, book.Node(n.ID()))
	assert.Equal(t, []string{"b", n.ID()}, ids(a.Children()))
	assert.False(t, n.Created().IsZero())
	assert.True(t, n.IsDirty())
	assert.Equal(t, []nb.Change{{NodeID: n.ID(), Kind: nb.ChangeCreated}}, book.PendingChanges())
}

func TestCreateContent(t *testing.T) {
	book := openSample(t)
	n, err := book.CreateContent(book.Root(), "Note", "text/markdown", "note.md", []byte("# Note"))
	require.NoError(t, err)
	assert.Equal(t, nb.ContentKind, n.Kind())
	assert.Equal(t, []string{"note.md"}, n.PayloadNames())
	data, err := n.Payload("note.md")
	require.NoError(t, err)
	assert.Equal(t, []byte("# Note"), data)

	_, err = book.CreateContent(book.Root(), "x", nb.FolderContentType, "x", nil)
	assert.True(t, nb.IsIllegalOperation(err), "got %v", err)
	_, err = book.CreateContent(book.Root(), "x", "text/plain", "", nil)
	assert.True(t, nb.IsIllegalOperation(err), "got %v", err)
}

func TestCreateIllegal(t *testing.T) {
	book := openSample(t)

	_, err := book.CreateFolder(book.Trash(), "x")
	assert.True(t, nb.IsIllegalOperation(err), "below trash: %v", err)

	_, err = book.CreateFolder(book.Node("g"), "x")
	assert.True(t, nb.IsIllegalOperation(err), "inside trash: %v", err)

	d := book.Node("d")
	require.NoError(t, book.Delete(d))
	_, err = book.CreateFolder(d, "x")
	assert.True(t, nb.IsIllegalOperation(err), "below deleted: %v", err)

	other := openSample(t)
	_, err = book.CreateFolder(other.Root(), "x")
	assert.True(t, nb.IsIllegalOperation(err), "other notebook: %v", err)
}

func TestDeleteIllegal(t *testing.T) {
	book := openSample(t)

	err := book.Delete(book.Root())
	assert.True(t, nb.IsIllegalOperation(err), "root: %v", err)

	err = book.Delete(book.Trash())
	assert.True(t, nb.IsIllegalOperation(err), "trash: %v", err)

	a := book.Node("a")
	require.NoError(t, book.Delete(a))
	err = book.Delete(a)
	assert.True(t, nb.IsIllegalOperation(err), "deleted: %v", err)
}

func TestMutateDeletedNode(t *testing.T) {
	book := openSample(t)
	c := book.Node("c")
	require.NoError(t, book.Delete(book.Node("a")))
	assert.True(t, c.IsDeleted())

	checks := map[string]error{
		"title":   c.SetTitle("x"),
		"order":   c.SetOrder(1),
		"icon":    c.SetIcon("x", "y"),
		"colors":  c.SetTitleColors("x", "y"),
		"extra":   c.SetExtra("x", "y"),
		"payload": c.SetPayload("x", []byte("y")),
		"move":    book.Move(c, book.Root(), nil),
	}
	for name, err := range checks {
		assert.True(t, nb.IsIllegalOperation(err), "%v: %v", name, err)
	}
}

func TestMove(t *testing.T) {
	book := openSample(t)
	c, d := book.Node("c"), book.Node("d")
	e := book.Node("e")

	require.NoError(t, book.Move(c, d, e))
	assert.Same(t, d, c.Parent())
	assert.Equal(t, []string{"e", "c", "f"}, ids(d.Children()))
	assert.Empty(t, book.Node("b").Children())
	assert.True(t, c.IsDirty())

	// reorder within the same parent
	require.NoError(t, book.Move(e, d, book.Node("f")))
	assert.Equal(t, []string{"c", "f", "e"}, ids(d.Children()))

	require.NoError(t, book.Move(c, book.Root(), nil))
	assert.Equal(t, []string{"a", "d", "trash", "c"}, ids(book.Root().Children()))
}

func TestMoveIntoDescendantFails(t *testing.T) {
	book := openSample(t)
	a, b := book.Node("a"), book.Node("b")
	root := book.Root()
	rootBefore := ids(root.Children())
	bBefore := ids(b.Children())

	err := book.Move(a, b, nil)
	assert.True(t, nb.IsIllegalOperation(err), "got %v", err)
	err = book.Move(a, book.Node("c"), nil)
	assert.True(t, nb.IsIllegalOperation(err), "got %v", err)
	err = book.Move(a, a, nil)
	assert.True(t, nb.IsIllegalOperation(err), "got %v", err)

	assert.Equal(t, rootBefore, ids(root.Children()))
	assert.Equal(t, bBefore, ids(b.Children()))
	assert.Same(t, root, a.Parent())
	assert.Empty(t, book.PendingChanges())
}

func TestMoveIllegal(t *testing.T) {
	book := openSample(t)
	other := openSample(t)
	c, d := book.Node("c"), book.Node("d")
	dBefore := ids(d.Children())

	cases := map[string]error{
		"root":          book.Move(book.Root(), d, nil),
		"trash":         book.Move(book.Trash(), d, nil),
		"behind other":  book.Move(c, d, book.Node("a")),
		"behind itself": book.Move(c, book.Node("b"), c),
		"other book":    book.Move(c, other.Node("d"), nil),
		"from other":    book.Move(other.Node("c"), d, nil),
		"inside trash":  book.Move(c, book.Node("g"), nil),
	}
	for name, err := range cases {
		assert.True(t, nb.IsIllegalOperation(err), "%v: %v", name, err)
	}
	assert.Equal(t, dBefore, ids(d.Children()))
	assert.Same(t, book.Node("b"), c.Parent())
}

func TestMoveToTrash(t *testing.T) {
	book := openSample(t)
	d := book.Node("d")
	require.NoError(t, book.MoveToTrash(d))
	assert.Same(t, book.Trash(), d.Parent())
	assert.True(t, d.InTrash())
	assert.True(t, book.Node("e").InTrash())

	// and back out again
	require.NoError(t, book.Move(d, book.Root(), nil))
	assert.False(t, d.InTrash())
}

func TestSetters(t *testing.T) {
	book := openSample(t)
	n := book.Node("e")

	require.NoError(t, n.SetTitle("Title"))
	require.NoError(t, n.SetOrder(5))
	require.NoError(t, n.SetIcon("i", "o"))
	require.NoError(t, n.SetTitleColors("red", "blue"))
	require.NoError(t, n.SetExtra("x-key", "v"))

	attrs := n.StoredAttributes()
	assert.Equal(t, "Title", attrs["title"])
	assert.Equal(t, "5", attrs["order"])
	assert.Equal(t, "i", attrs["icon"])
	assert.Equal(t, "o", attrs["icon_open"])
	assert.Equal(t, "red", attrs["title_fgcolor"])
	assert.Equal(t, "blue", attrs["title_bgcolor"])
	assert.Equal(t, "v", attrs["x-key"])

	err := n.SetExtra("title", "x")
	assert.True(t, nb.IsIllegalOperation(err), "got %v", err)

	require.NoError(t, n.RemoveExtra("x-key"))
	_, ok := n.Extra("x-key")
	assert.False(t, ok)
}

func TestPayloadMutations(t *testing.T) {
	book := openSample(t)
	n := book.Node("e")

	require.NoError(t, n.SetPayload("b.png", []byte("b")))
	require.NoError(t, n.SetPayload("a.png", []byte("a")))
	assert.Equal(t, []string{"index.html", "b.png", "a.png"}, n.PayloadNames())

	err := n.RemovePayload("index.html")
	assert.True(t, nb.IsIllegalOperation(err), "main payload: %v", err)
	err = n.RemovePayload("missing")
	assert.True(t, nb.IsPayloadDoesNotExist(err), "got %v", err)

	require.NoError(t, n.SetMainPayloadName("a.png"))
	assert.Equal(t, "a.png", n.MainPayloadName())
	assert.Equal(t, []string{"index.html", "b.png"}, n.AdditionalPayloadNames())

	require.NoError(t, n.RemovePayload("index.html"))
	assert.Equal(t, []string{"a.png", "b.png"}, n.PayloadNames())

	err = book.Node("d").SetPayload("x", nil)
	assert.True(t, nb.IsIllegalOperation(err), "folder: %v", err)
}

func TestNodeOfEmptyNotebook(t *testing.T) {
	book := nb.New(memory.New())
	assert.Nil(t, book.Node("x"))
	assert.Equal(t, 0, book.Len())
	assert.NoError(t, book.Walk(func(n *nb.Node) error {
		t.Errorf("unexpected node %v", n.ID())
		return nil
	}))
}
