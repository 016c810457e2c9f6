package notebook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nb "github.com/akeil/notebook"
)

func openFilterSample(t *testing.T) *nb.Notebook {
	s := storageWith(t,
		folder("root", ""),
		trash("trash", "root"),
		stored("work", nb.FolderContentType, "root", "Work"),
		stored("plans", nb.FolderContentType, "work", "Plans"),
		page("q1", "plans", "Q1 Goals"),
		page("notes", "work", "Meeting notes"),
		page("old", "trash", "Old goals"),
	)
	book, err := nb.Open(s)
	require.NoError(t, err)
	return book
}

func TestFilter(t *testing.T) {
	book := openFilterSample(t)

	assert.Equal(t, []string{"old", "notes", "q1"}, ids(book.Filter(nb.IsContent)))
	assert.Equal(t, []string{"notes", "q1"}, ids(book.Filter(nb.IsContent, nb.NotInTrash)))
	assert.Equal(t, []string{"root", "work", "plans"}, ids(book.Filter(nb.IsFolder)))
	assert.Equal(t, []string{"old", "q1"}, ids(book.Filter(nb.MatchTitle("GOALS"))))
	assert.Len(t, book.Filter(), book.Len())
}

func TestMatchPath(t *testing.T) {
	book := openFilterSample(t)

	cases := []struct {
		pattern string
		want    []string
	}{
		{"Work", []string{"work"}},
		{"/Work/*", []string{"notes", "plans"}},
		{"Work/**", []string{"work", "notes", "plans", "q1"}},
		{"**/Q1*", []string{"q1"}},
		{"Trash/*", []string{"old"}},
		{"Nothing/**", []string{}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ids(book.Filter(nb.MatchPath(tc.pattern))), tc.pattern)
	}

	assert.True(t, nb.ValidPattern("Work/**/*.md"))
	assert.False(t, nb.ValidPattern("Work/[a"))
	assert.Empty(t, book.Filter(nb.MatchPath("Work/[a")))
}

func TestDisplaySort(t *testing.T) {
	s := storageWith(t,
		folder("root", ""),
		trash("a-trash", "root"),
		stored("f-b", nb.FolderContentType, "root", "beta"),
		stored("f-a", nb.FolderContentType, "root", "Alpha"),
		stored("f-first", nb.FolderContentType, "root", "zulu"),
		page("c-2", "root", "same"),
		page("c-1", "root", "Same"),
	)
	book, err := nb.Open(s)
	require.NoError(t, err)
	require.NoError(t, book.Node("f-first").SetOrder(-1))

	sorted := nb.SortedChildren(book.Root(), nb.DisplaySort)
	assert.Equal(t, []string{"f-first", "f-a", "f-b", "c-1", "c-2", "a-trash"}, ids(sorted))

	// tree order is unchanged
	assert.Equal(t, []string{"a-trash", "c-1", "c-2", "f-a", "f-b", "f-first"}, ids(book.Root().Children()))
}
