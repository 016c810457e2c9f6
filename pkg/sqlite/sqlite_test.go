package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nb "github.com/akeil/notebook"
	"github.com/akeil/notebook/pkg/storagetest"
)

func open(t *testing.T) *Storage {
	s, err := Open(filepath.Join(t.TempDir(), "notebook.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestStorage(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) nb.Storage {
		return open(t)
	})
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "notebook.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.AddNode("a", nb.FolderContentType, map[string]string{"title": "A"}, nil))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	sn, err := s.GetNode("a")
	require.NoError(t, err)
	assert.Equal(t, "A", sn.Attributes["title"])
}

func TestFailedAddLeavesNoNode(t *testing.T) {
	s := open(t)
	payloads := []nb.PayloadData{
		{Name: "x", Data: []byte("1")},
		{Name: "x", Data: []byte("2")},
	}
	err := s.AddNode("a", "text/plain", nil, payloads)
	assert.True(t, nb.IsPayloadAlreadyExists(err), "got %v", err)

	has, err := s.HasNode("a")
	require.NoError(t, err)
	assert.False(t, has, "transaction is rolled back")
}
