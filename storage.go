package notebook

import (
	"crypto/md5"
	"encoding/hex"
	"io"
)

// Storage is the interface for the persistence backend.
//
// A Storage only deals with opaque stored nodes: an ID, a content type,
// a map of string attributes and a list of named payloads.
// Typed attributes are handled by the Daos, never by the backend.
//
// Implementations are not expected to be safe for concurrent use.
type Storage interface {
	// AddNode creates a new node with the given payloads.
	// Fails with NodeAlreadyExists if the ID is taken.
	AddNode(id, contentType string, attributes map[string]string, payloads []PayloadData) error
	// AddNodePayload adds a single payload to an existing node.
	AddNodePayload(id, name string, r io.Reader) error
	// GetAllNodes reads all stored nodes. The list is in no particular order.
	GetAllNodes() ([]StoredNode, error)
	GetNode(id string) (StoredNode, error)
	// GetNodePayload opens a reader for the payload data.
	// The caller is responsible for closing it.
	GetNodePayload(id, name string) (io.ReadCloser, error)
	GetNotebook() (StoredNotebook, error)
	HasNode(id string) (bool, error)
	HasNodePayload(id, name string) (bool, error)
	RemoveNode(id string) error
	RemoveNodePayload(id, name string) error
	// SetNodeAttributes replaces all attributes of a node.
	SetNodeAttributes(id string, attributes map[string]string) error
	// SetNotebookAttributes replaces the notebook level attributes.
	SetNotebookAttributes(attributes map[string]string) error
}

// StoredNode is the representation of a node in a Storage.
type StoredNode struct {
	ID          string
	ContentType string
	Attributes  map[string]string
	Payloads    []StoredPayload
}

// PayloadNames returns the payload names in stored order.
func (s StoredNode) PayloadNames() []string {
	names := make([]string, len(s.Payloads))
	for i, p := range s.Payloads {
		names[i] = p.Name
	}
	return names
}

// HasPayload tells if the stored node has a payload with the given name.
func (s StoredNode) HasPayload(name string) bool {
	for _, p := range s.Payloads {
		if p.Name == name {
			return true
		}
	}
	return false
}

// StoredPayload holds the metadata for one payload of a StoredNode.
type StoredPayload struct {
	Name string
	// MD5 is the hex encoded MD5 hash of the payload data.
	MD5 string
}

// PayloadData is a named payload with its content.
type PayloadData struct {
	Name string
	Data []byte
}

// StoredNotebook holds the notebook level attributes.
type StoredNotebook struct {
	Attributes map[string]string
}

// HashPayload calculates the content hash for payload data.
func HashPayload(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// ReadPayload reads the full content of a stored payload.
func ReadPayload(s Storage, id, name string) ([]byte, error) {
	r, err := s.GetNodePayload(id, name)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

// CopyAttributes returns a copy of the given attribute map.
// A nil map is returned as an empty map.
func CopyAttributes(attrs map[string]string) map[string]string {
	c := make(map[string]string, len(attrs))
	for k, v := range attrs {
		c[k] = v
	}
	return c
}
