// Package storagetest provides a test suite for Storage implementations.
package storagetest

import (
	"bytes"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nb "github.com/akeil/notebook"
)

// Factory creates a new, empty Storage for a single test.
type Factory func(t *testing.T) nb.Storage

// Run runs the complete suite against storages created by factory.
func Run(t *testing.T, factory Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s nb.Storage)
	}{
		{"AddGetNode", testAddGetNode},
		{"AddNodeTwice", testAddNodeTwice},
		{"GetMissingNode", testGetMissingNode},
		{"GetAllNodes", testGetAllNodes},
		{"Payloads", testPayloads},
		{"PayloadErrors", testPayloadErrors},
		{"EmptyPayload", testEmptyPayload},
		{"SpecialPayloadNames", testSpecialPayloadNames},
		{"RemoveNode", testRemoveNode},
		{"SetNodeAttributes", testSetNodeAttributes},
		{"NotebookAttributes", testNotebookAttributes},
		{"AttributeValues", testAttributeValues},
		{"OpenNotebook", testOpenNotebook},
		{"SyncRoundTrip", testSyncRoundTrip},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, factory(t))
		})
	}
}

func readPayload(t *testing.T, s nb.Storage, id, name string) []byte {
	data, err := nb.ReadPayload(s, id, name)
	require.NoError(t, err)
	return data
}

func testAddGetNode(t *testing.T, s nb.Storage) {
	attrs := map[string]string{"title": "A", "parent_id": "root"}
	payloads := []nb.PayloadData{
		{Name: "main.html", Data: []byte("<p>hello</p>")},
		{Name: "image.png", Data: []byte{0x89, 0x50, 0x4e, 0x47}},
	}
	require.NoError(t, s.AddNode("a", "text/html", attrs, payloads))

	has, err := s.HasNode("a")
	require.NoError(t, err)
	assert.True(t, has)

	sn, err := s.GetNode("a")
	require.NoError(t, err)
	assert.Equal(t, "a", sn.ID)
	assert.Equal(t, "text/html", sn.ContentType)
	assert.Equal(t, attrs, sn.Attributes)
	assert.Equal(t, []string{"main.html", "image.png"}, sn.PayloadNames())
	assert.Equal(t, nb.HashPayload([]byte("<p>hello</p>")), sn.Payloads[0].MD5)

	assert.Equal(t, []byte("<p>hello</p>"), readPayload(t, s, "a", "main.html"))
	assert.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, readPayload(t, s, "a", "image.png"))

	// the storage keeps its own copy
	attrs["title"] = "changed"
	sn, err = s.GetNode("a")
	require.NoError(t, err)
	assert.Equal(t, "A", sn.Attributes["title"])
}

func testAddNodeTwice(t *testing.T, s nb.Storage) {
	require.NoError(t, s.AddNode("a", nb.FolderContentType, nil, nil))
	err := s.AddNode("a", nb.FolderContentType, nil, nil)
	assert.True(t, nb.IsNodeAlreadyExists(err), "got %v", err)
}

func testGetMissingNode(t *testing.T, s nb.Storage) {
	_, err := s.GetNode("missing")
	assert.True(t, nb.IsNodeDoesNotExist(err), "got %v", err)

	has, err := s.HasNode("missing")
	require.NoError(t, err)
	assert.False(t, has)

	_, err = s.GetNodePayload("missing", "x")
	assert.True(t, nb.IsNodeDoesNotExist(err), "got %v", err)
}

func testGetAllNodes(t *testing.T, s nb.Storage) {
	all, err := s.GetAllNodes()
	require.NoError(t, err)
	assert.Empty(t, all)

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.AddNode(id, nb.FolderContentType, map[string]string{"title": id}, nil))
	}

	all, err = s.GetAllNodes()
	require.NoError(t, err)
	ids := make([]string, len(all))
	for i, sn := range all {
		ids[i] = sn.ID
		assert.Equal(t, sn.ID, sn.Attributes["title"])
	}
	sort.Strings(ids)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func testPayloads(t *testing.T, s nb.Storage) {
	require.NoError(t, s.AddNode("a", "text/plain", nil, []nb.PayloadData{{Name: "one", Data: []byte("1")}}))

	require.NoError(t, s.AddNodePayload("a", "two", strings.NewReader("2")))
	has, err := s.HasNodePayload("a", "two")
	require.NoError(t, err)
	assert.True(t, has)
	assert.Equal(t, []byte("2"), readPayload(t, s, "a", "two"))

	sn, err := s.GetNode("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, sn.PayloadNames())

	require.NoError(t, s.RemoveNodePayload("a", "one"))
	has, err = s.HasNodePayload("a", "one")
	require.NoError(t, err)
	assert.False(t, has)

	sn, err = s.GetNode("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"two"}, sn.PayloadNames())
}

func testPayloadErrors(t *testing.T, s nb.Storage) {
	require.NoError(t, s.AddNode("a", "text/plain", nil, []nb.PayloadData{{Name: "one", Data: []byte("1")}}))

	err := s.AddNodePayload("a", "one", strings.NewReader("x"))
	assert.True(t, nb.IsPayloadAlreadyExists(err), "got %v", err)

	err = s.AddNodePayload("missing", "one", strings.NewReader("x"))
	assert.True(t, nb.IsNodeDoesNotExist(err), "got %v", err)

	_, err = s.GetNodePayload("a", "two")
	assert.True(t, nb.IsPayloadDoesNotExist(err), "got %v", err)

	err = s.RemoveNodePayload("a", "two")
	assert.True(t, nb.IsPayloadDoesNotExist(err), "got %v", err)

	err = s.RemoveNodePayload("missing", "one")
	assert.True(t, nb.IsNodeDoesNotExist(err), "got %v", err)

	has, err := s.HasNodePayload("missing", "one")
	require.NoError(t, err)
	assert.False(t, has)
}

func testEmptyPayload(t *testing.T, s nb.Storage) {
	require.NoError(t, s.AddNode("a", "text/plain", nil, []nb.PayloadData{{Name: "empty"}}))
	r, err := s.GetNodePayload("a", "empty")
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func testSpecialPayloadNames(t *testing.T, s nb.Storage) {
	names := []string{"with space.txt", "ümlaut.html", "percent%20.bin"}
	payloads := make([]nb.PayloadData, len(names))
	for i, name := range names {
		payloads[i] = nb.PayloadData{Name: name, Data: []byte(name)}
	}
	require.NoError(t, s.AddNode("a", "text/plain", nil, payloads))

	sn, err := s.GetNode("a")
	require.NoError(t, err)
	assert.Equal(t, names, sn.PayloadNames())
	for _, name := range names {
		assert.Equal(t, []byte(name), readPayload(t, s, "a", name))
	}
}

func testRemoveNode(t *testing.T, s nb.Storage) {
	require.NoError(t, s.AddNode("a", "text/plain", nil, []nb.PayloadData{{Name: "one", Data: []byte("1")}}))
	require.NoError(t, s.RemoveNode("a"))

	has, err := s.HasNode("a")
	require.NoError(t, err)
	assert.False(t, has)

	err = s.RemoveNode("a")
	assert.True(t, nb.IsNodeDoesNotExist(err), "got %v", err)

	// the id can be used again
	require.NoError(t, s.AddNode("a", nb.FolderContentType, nil, nil))
}

func testSetNodeAttributes(t *testing.T, s nb.Storage) {
	require.NoError(t, s.AddNode("a", nb.FolderContentType, map[string]string{"title": "A", "x": "1"}, nil))
	require.NoError(t, s.SetNodeAttributes("a", map[string]string{"title": "B"}))

	sn, err := s.GetNode("a")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"title": "B"}, sn.Attributes)

	err = s.SetNodeAttributes("missing", map[string]string{})
	assert.True(t, nb.IsNodeDoesNotExist(err), "got %v", err)
}

func testNotebookAttributes(t *testing.T, s nb.Storage) {
	stored, err := s.GetNotebook()
	require.NoError(t, err)
	assert.Empty(t, stored.Attributes)

	attrs := map[string]string{"client_preferences": "a: 1\n", "other": "x"}
	require.NoError(t, s.SetNotebookAttributes(attrs))
	stored, err = s.GetNotebook()
	require.NoError(t, err)
	assert.Equal(t, attrs, stored.Attributes)
}

func testAttributeValues(t *testing.T, s nb.Storage) {
	attrs := map[string]string{
		"empty":     "",
		"multiline": "line 1\nline 2\n",
		"markup":    "<b>&amp;</b> \"quoted\" 'single'",
		"unicode":   "日本語 ✓",
		"spaces":    "  leading and trailing  ",
	}
	require.NoError(t, s.AddNode("a", nb.FolderContentType, attrs, nil))
	sn, err := s.GetNode("a")
	require.NoError(t, err)
	assert.Equal(t, attrs, sn.Attributes)
}

func testOpenNotebook(t *testing.T, s nb.Storage) {
	book, err := nb.Open(s)
	require.NoError(t, err)
	require.NotNil(t, book.Root())
	require.NotNil(t, book.Trash())

	all, err := s.GetAllNodes()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	again, err := nb.Open(s)
	require.NoError(t, err)
	assert.Equal(t, book.Root().ID(), again.Root().ID())
	assert.Equal(t, book.Trash().ID(), again.Trash().ID())
}

func testSyncRoundTrip(t *testing.T, s nb.Storage) {
	book, err := nb.Open(s)
	require.NoError(t, err)

	folder, err := book.CreateFolder(book.Root(), "Folder")
	require.NoError(t, err)
	page, err := book.CreateContent(folder, "Page", "text/html", "index.html", []byte("<p>page</p>"))
	require.NoError(t, err)
	require.NoError(t, page.SetPayload("image.png", []byte{1, 2, 3}))
	book.Preferences().Section("view").Set("zoom", 2)

	report, err := book.Sync()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{folder.ID(), page.ID()}, report.Created)
	assert.True(t, report.Preferences)

	other, err := nb.Open(s)
	require.NoError(t, err)
	loaded := other.Node(page.ID())
	require.NotNil(t, loaded)
	assert.Equal(t, "Page", loaded.Title())
	assert.Equal(t, folder.ID(), loaded.Parent().ID())
	assert.Equal(t, []string{"index.html", "image.png"}, loaded.PayloadNames())

	data, err := loaded.Payload("image.png")
	require.NoError(t, err)
	assert.True(t, bytes.Equal([]byte{1, 2, 3}, data))
	assert.Equal(t, 2, other.Preferences().Section("view").GetInt("zoom", 0))

	require.NoError(t, other.Delete(other.Node(folder.ID())))
	report, err = other.Sync()
	require.NoError(t, err)
	assert.Equal(t, []string{page.ID(), folder.ID()}, report.Removed)

	has, err := s.HasNode(folder.ID())
	require.NoError(t, err)
	assert.False(t, has)
	has, err = s.HasNode(page.ID())
	require.NoError(t, err)
	assert.False(t, has)
}
