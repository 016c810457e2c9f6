// Package memory provides a Storage that keeps all nodes in memory.
// It is mainly used for testing.
package memory

import (
	"bytes"
	"io"
	"sort"

	nb "github.com/akeil/notebook"
)

type payload struct {
	name string
	data []byte
}

type node struct {
	contentType string
	attributes  map[string]string
	payloads    []payload
}

func (n *node) payloadIndex(name string) int {
	for i, p := range n.payloads {
		if p.name == name {
			return i
		}
	}
	return -1
}

func (n *node) stored(id string) nb.StoredNode {
	sn := nb.StoredNode{
		ID:          id,
		ContentType: n.contentType,
		Attributes:  nb.CopyAttributes(n.attributes),
		Payloads:    make([]nb.StoredPayload, len(n.payloads)),
	}
	for i, p := range n.payloads {
		sn.Payloads[i] = nb.StoredPayload{Name: p.name, MD5: nb.HashPayload(p.data)}
	}
	return sn
}

// Storage holds nodes in a map.
// All values are copied when they are passed in or out.
type Storage struct {
	nodes    map[string]*node
	notebook map[string]string
}

// New creates an empty in-memory storage.
func New() *Storage {
	return &Storage{
		nodes:    make(map[string]*node),
		notebook: make(map[string]string),
	}
}

func (s *Storage) AddNode(id, contentType string, attributes map[string]string, payloads []nb.PayloadData) error {
	if _, ok := s.nodes[id]; ok {
		return nb.NewNodeAlreadyExistsError(id)
	}

	n := &node{
		contentType: contentType,
		attributes:  nb.CopyAttributes(attributes),
		payloads:    make([]payload, 0, len(payloads)),
	}
	for _, p := range payloads {
		if n.payloadIndex(p.Name) >= 0 {
			return nb.NewPayloadAlreadyExistsError(id, p.Name)
		}
		n.payloads = append(n.payloads, payload{name: p.Name, data: copyBytes(p.Data)})
	}
	s.nodes[id] = n
	return nil
}

func (s *Storage) AddNodePayload(id, name string, r io.Reader) error {
	n, ok := s.nodes[id]
	if !ok {
		return nb.NewNodeDoesNotExistError(id)
	}
	if n.payloadIndex(name) >= 0 {
		return nb.NewPayloadAlreadyExistsError(id, name)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	n.payloads = append(n.payloads, payload{name: name, data: data})
	return nil
}

// GetAllNodes returns the nodes ordered by id.
func (s *Storage) GetAllNodes() ([]nb.StoredNode, error) {
	ids := make([]string, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := make([]nb.StoredNode, len(ids))
	for i, id := range ids {
		result[i] = s.nodes[id].stored(id)
	}
	return result, nil
}

func (s *Storage) GetNode(id string) (nb.StoredNode, error) {
	n, ok := s.nodes[id]
	if !ok {
		return nb.StoredNode{}, nb.NewNodeDoesNotExistError(id)
	}
	return n.stored(id), nil
}

func (s *Storage) GetNodePayload(id, name string) (io.ReadCloser, error) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, nb.NewNodeDoesNotExistError(id)
	}
	i := n.payloadIndex(name)
	if i < 0 {
		return nil, nb.NewPayloadDoesNotExistError(id, name)
	}
	return io.NopCloser(bytes.NewReader(copyBytes(n.payloads[i].data))), nil
}

func (s *Storage) GetNotebook() (nb.StoredNotebook, error) {
	return nb.StoredNotebook{Attributes: nb.CopyAttributes(s.notebook)}, nil
}

func (s *Storage) HasNode(id string) (bool, error) {
	_, ok := s.nodes[id]
	return ok, nil
}

func (s *Storage) HasNodePayload(id, name string) (bool, error) {
	n, ok := s.nodes[id]
	if !ok {
		return false, nil
	}
	return n.payloadIndex(name) >= 0, nil
}

func (s *Storage) RemoveNode(id string) error {
	if _, ok := s.nodes[id]; !ok {
		return nb.NewNodeDoesNotExistError(id)
	}
	delete(s.nodes, id)
	return nil
}

func (s *Storage) RemoveNodePayload(id, name string) error {
	n, ok := s.nodes[id]
	if !ok {
		return nb.NewNodeDoesNotExistError(id)
	}
	i := n.payloadIndex(name)
	if i < 0 {
		return nb.NewPayloadDoesNotExistError(id, name)
	}
	n.payloads = append(n.payloads[:i], n.payloads[i+1:]...)
	return nil
}

func (s *Storage) SetNodeAttributes(id string, attributes map[string]string) error {
	n, ok := s.nodes[id]
	if !ok {
		return nb.NewNodeDoesNotExistError(id)
	}
	n.attributes = nb.CopyAttributes(attributes)
	return nil
}

func (s *Storage) SetNotebookAttributes(attributes map[string]string) error {
	s.notebook = nb.CopyAttributes(attributes)
	return nil
}

func copyBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
