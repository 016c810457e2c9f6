package notebook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nb "github.com/akeil/notebook"
	"github.com/akeil/notebook/pkg/memory"
)

func TestOpenEmptyStorage(t *testing.T) {
	s := memory.New()
	book, err := nb.Open(s)
	require.NoError(t, err)

	root := book.Root()
	require.NotNil(t, root)
	assert.True(t, root.IsRoot())
	assert.Equal(t, nb.FolderKind, root.Kind())
	assert.Equal(t, "Root", root.Title())
	assert.Nil(t, root.Parent())

	trash := book.Trash()
	require.NotNil(t, trash)
	assert.Same(t, root, trash.Parent())
	assert.Equal(t, []*nb.Node{trash}, root.Children())

	all, err := s.GetAllNodes()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestOpenChildrenSortedByID(t *testing.T) {
	s := storageWith(t,
		folder("root", ""),
		trash("t", "root"),
		content("c2", "root"),
		content("c1", "root"),
	)
	book, err := nb.Open(s)
	require.NoError(t, err)

	assert.Equal(t, []string{"c1", "c2", "t"}, ids(book.Root().Children()))
	assert.Same(t, book.Root(), book.Trash().Parent())
	assert.Equal(t, 4, book.Len())
}

func TestOpenVisitsAllNodes(t *testing.T) {
	s := storageWith(t,
		folder("root", ""),
		trash("trash", "root"),
		folder("f1", "root"),
		folder("f2", "f1"),
		content("c1", "f2"),
		content("c2", "f1"),
		content("c3", "trash"),
		content("c4", "c3"),
	)
	book, err := nb.Open(s)
	require.NoError(t, err)

	assert.Equal(t, 8, book.Len())
	assert.Equal(t, []string{"Folder f1", "Folder f2", "Page c1"}, book.Node("c1").Path())
	assert.Equal(t, 3, book.Node("c1").Depth())
	assert.True(t, book.Node("c4").InTrash())
	assert.False(t, book.Node("c1").InTrash())
}

func TestOpenOrderIndependent(t *testing.T) {
	nodes := []nb.StoredNode{
		folder("root", ""),
		trash("trash", "root"),
		folder("a", "root"),
		folder("b", "a"),
		folder("c", "b"),
		content("d", "c"),
		content("e", "a"),
		content("f", "root"),
	}
	s := storageWith(t, nodes...)

	ref, err := nb.Open(s)
	require.NoError(t, err)
	expected := structure(ref)

	all := []string{"root", "trash", "a", "b", "c", "d", "e", "f"}
	orders := [][]string{
		{"d", "c", "b", "a", "e", "f", "trash", "root"},
		{"root", "trash", "a", "b", "c", "d", "e", "f"},
	}
	orders = append(orders, permutations(all, 20, 42)...)

	for _, order := range orders {
		book, err := nb.Open(ordered{Storage: s, order: order})
		require.NoError(t, err, "order %v", order)
		assert.Equal(t, expected, structure(book), "order %v", order)
	}
}

func TestOpenSynthesizesTrash(t *testing.T) {
	s := storageWith(t, folder("root", ""), folder("a", "root"))
	book, err := nb.Open(s)
	require.NoError(t, err)

	trash := book.Trash()
	require.NotNil(t, trash)
	assert.Equal(t, nb.TrashKind, trash.Kind())
	assert.Same(t, book.Root(), trash.Parent())

	has, err := s.HasNode(trash.ID())
	require.NoError(t, err)
	assert.True(t, has)

	sn, err := s.GetNode(trash.ID())
	require.NoError(t, err)
	assert.Equal(t, nb.TrashContentType, sn.ContentType)
	assert.Equal(t, "root", sn.Attributes["parent_id"])
}

func TestOpenInvalidStructure(t *testing.T) {
	cases := []struct {
		name  string
		nodes []nb.StoredNode
	}{
		{"no parent", []nb.StoredNode{
			folder("root", ""),
			folder("a", "missing"),
		}},
		{"self-parent", []nb.StoredNode{
			folder("root", ""),
			folder("a", "a"),
		}},
		{"indirect cycle", []nb.StoredNode{
			folder("root", ""),
			folder("a", "c"),
			folder("b", "a"),
			folder("c", "b"),
		}},
		{"two node cycle", []nb.StoredNode{
			folder("root", ""),
			folder("a", "b"),
			folder("b", "a"),
		}},
		{"multiple roots", []nb.StoredNode{
			folder("root", ""),
			folder("other", ""),
		}},
		{"no root", []nb.StoredNode{
			folder("a", "b"),
			folder("b", "a"),
		}},
		{"multiple trashes", []nb.StoredNode{
			folder("root", ""),
			trash("t1", "root"),
			trash("t2", "root"),
		}},
		{"trash not below root", []nb.StoredNode{
			folder("root", ""),
			folder("a", "root"),
			trash("t", "a"),
		}},
		{"root is trash", []nb.StoredNode{
			trash("t", ""),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := storageWith(t, tc.nodes...)
			all := make([]string, len(tc.nodes))
			for i, sn := range tc.nodes {
				all[i] = sn.ID
			}
			orders := append([][]string{all}, permutations(all, 10, 7)...)
			for _, order := range orders {
				_, err := nb.Open(ordered{Storage: s, order: order})
				assert.True(t, nb.IsInvalidStructure(err), "order %v: got %v", order, err)
			}

			// nothing was written
			stored, err := s.GetAllNodes()
			require.NoError(t, err)
			assert.Len(t, stored, len(tc.nodes))
		})
	}
}

func TestOpenInvalidAttribute(t *testing.T) {
	sn := folder("a", "root")
	sn.Attributes["created_time"] = "yesterday"
	s := storageWith(t, folder("root", ""), sn)

	_, err := nb.Open(s)
	assert.True(t, nb.IsInvalidStructure(err), "got %v", err)
}

func TestNodeAttributes(t *testing.T) {
	sn := content("c", "root")
	sn.Attributes["created_time"] = "1600000000"
	sn.Attributes["modified_time"] = "1600000060"
	sn.Attributes["order"] = "3"
	sn.Attributes["icon"] = "book"
	sn.Attributes["icon_open"] = "book-open"
	sn.Attributes["title_fgcolor"] = "#000"
	sn.Attributes["title_bgcolor"] = "#fff"
	sn.Attributes["x-custom"] = "value"
	sn.Payloads = append(sn.Payloads, nb.StoredPayload{Name: "image.png"})
	s := storageWith(t, folder("root", ""), sn)

	book, err := nb.Open(s)
	require.NoError(t, err)
	n := book.Node("c")
	require.NotNil(t, n)

	assert.Equal(t, "Page c", n.Title())
	assert.Equal(t, int64(1600000000), n.Created().Unix())
	assert.Equal(t, int64(1600000060), n.Modified().Unix())
	assert.Equal(t, 3, n.Order())
	icon, iconOpen := n.Icon()
	assert.Equal(t, "book", icon)
	assert.Equal(t, "book-open", iconOpen)
	fg, bg := n.TitleColors()
	assert.Equal(t, "#000", fg)
	assert.Equal(t, "#fff", bg)
	v, ok := n.Extra("x-custom")
	assert.True(t, ok)
	assert.Equal(t, "value", v)
	assert.Equal(t, []string{"x-custom"}, n.ExtraKeys())

	assert.Equal(t, "index.html", n.MainPayloadName())
	assert.Equal(t, []string{"image.png"}, n.AdditionalPayloadNames())

	data, err := n.Payload("image.png")
	require.NoError(t, err)
	assert.Equal(t, payloadData("c", "image.png"), data)

	_, err = n.Payload("missing")
	assert.True(t, nb.IsPayloadDoesNotExist(err), "got %v", err)

	assert.Equal(t, sn.Attributes, n.StoredAttributes())
}

func TestWalkSkipChildren(t *testing.T) {
	s := storageWith(t,
		folder("root", ""),
		trash("trash", "root"),
		folder("a", "root"),
		content("b", "a"),
	)
	book, err := nb.Open(s)
	require.NoError(t, err)

	visited := make([]string, 0)
	err = book.Walk(func(n *nb.Node) error {
		visited = append(visited, n.ID())
		if n.ID() == "a" {
			return nb.SkipChildren
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "a", "trash"}, visited)
}
