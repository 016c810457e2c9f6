// Package fs provides a Storage that keeps nodes in a directory tree.
//
// Layout:
//
//	<base>/notebook.xml
//	<base>/<id>/node.xml
//	<base>/<id>/payload/<name>
//
// Node ids and payload names are path-escaped. A node exists if its
// node.xml exists.
package fs

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	nb "github.com/akeil/notebook"
	"github.com/akeil/notebook/internal/fs"
	"github.com/akeil/notebook/internal/logging"
)

const (
	notebookFile = "notebook.xml"
	nodeFile     = "node.xml"
	payloadDir   = "payload"
)

// Storage is a filesystem based storage.
type Storage struct {
	base string
}

// New creates a storage in the given directory.
// The directory is created if it does not exist.
func New(base string) (*Storage, error) {
	err := os.MkdirAll(base, 0755)
	if err != nil {
		return nil, err
	}
	return &Storage{base: base}, nil
}

// Base returns the base directory.
func (s *Storage) Base() string {
	return s.base
}

func escape(name string) string {
	e := url.PathEscape(name)
	if e == "." || e == ".." {
		e = strings.ReplaceAll(e, ".", "%2E")
	}
	return e
}

func (s *Storage) nodeDir(id string) string {
	return filepath.Join(s.base, escape(id))
}

func (s *Storage) nodePath(id string) string {
	return filepath.Join(s.nodeDir(id), nodeFile)
}

func (s *Storage) payloadPath(id, name string) string {
	return filepath.Join(s.nodeDir(id), payloadDir, escape(name))
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (s *Storage) readNode(id string) (nb.StoredNode, error) {
	p := s.nodePath(id)
	var doc nodeDocument
	err := readXML(p, &doc)
	if os.IsNotExist(err) {
		return nb.StoredNode{}, nb.NewNodeDoesNotExistError(id)
	} else if err != nil {
		return nb.StoredNode{}, err
	}

	sn, err := doc.toStored(p)
	if err != nil {
		return sn, err
	}
	if sn.ID != id {
		return nb.StoredNode{}, nb.NewParseError(p, "id %q does not match directory", sn.ID)
	}
	return sn, nil
}

func (s *Storage) writeNode(sn nb.StoredNode) error {
	doc := newNodeDocument(sn)
	return fs.WriteReader(s.nodePath(sn.ID), func(w io.Writer) error {
		return encodeXML(w, doc)
	}, 0644)
}

func (s *Storage) AddNode(id, contentType string, attributes map[string]string, payloads []nb.PayloadData) error {
	has, err := s.HasNode(id)
	if err != nil {
		return err
	}
	if has {
		return nb.NewNodeAlreadyExistsError(id)
	}

	err = os.MkdirAll(filepath.Join(s.nodeDir(id), payloadDir), 0755)
	if err != nil {
		return err
	}

	sn := nb.StoredNode{
		ID:          id,
		ContentType: contentType,
		Attributes:  nb.CopyAttributes(attributes),
		Payloads:    make([]nb.StoredPayload, 0, len(payloads)),
	}
	for _, p := range payloads {
		if sn.HasPayload(p.Name) {
			return nb.NewPayloadAlreadyExistsError(id, p.Name)
		}
		err = fs.WriteFile(s.payloadPath(id, p.Name), p.Data, 0644)
		if err != nil {
			return err
		}
		sn.Payloads = append(sn.Payloads, nb.StoredPayload{Name: p.Name, MD5: nb.HashPayload(p.Data)})
	}

	// node.xml comes last, the node exists only after it was written
	err = s.writeNode(sn)
	if err != nil {
		return err
	}
	logging.Debug("Added node %q to %v", id, s.base)
	return nil
}

func (s *Storage) AddNodePayload(id, name string, r io.Reader) error {
	sn, err := s.readNode(id)
	if err != nil {
		return err
	}
	if sn.HasPayload(name) {
		return nb.NewPayloadAlreadyExistsError(id, name)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	err = fs.WriteFile(s.payloadPath(id, name), data, 0644)
	if err != nil {
		return err
	}

	sn.Payloads = append(sn.Payloads, nb.StoredPayload{Name: name, MD5: nb.HashPayload(data)})
	return s.writeNode(sn)
}

// GetAllNodes reads all node directories below the base directory.
// Directories without node.xml are skipped.
func (s *Storage) GetAllNodes() ([]nb.StoredNode, error) {
	entries, err := os.ReadDir(s.base)
	if err != nil {
		return nil, err
	}

	nodes := make([]nb.StoredNode, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || fs.IsTemp(e.Name()) {
			continue
		}
		id, err := url.PathUnescape(e.Name())
		if err != nil {
			logging.Warning("Skip directory %q: %v", e.Name(), err)
			continue
		}
		sn, err := s.readNode(id)
		if nb.IsNodeDoesNotExist(err) {
			logging.Debug("Skip directory %q without %v", e.Name(), nodeFile)
			continue
		} else if err != nil {
			return nil, err
		}
		nodes = append(nodes, sn)
	}
	return nodes, nil
}

func (s *Storage) GetNode(id string) (nb.StoredNode, error) {
	return s.readNode(id)
}

func (s *Storage) GetNodePayload(id, name string) (io.ReadCloser, error) {
	sn, err := s.readNode(id)
	if err != nil {
		return nil, err
	}
	if !sn.HasPayload(name) {
		return nil, nb.NewPayloadDoesNotExistError(id, name)
	}

	f, err := os.Open(s.payloadPath(id, name))
	if os.IsNotExist(err) {
		return nil, nb.NewPayloadDoesNotExistError(id, name)
	}
	return f, err
}

// GetNotebook reads the notebook attributes.
// A missing notebook.xml yields empty attributes.
func (s *Storage) GetNotebook() (nb.StoredNotebook, error) {
	p := filepath.Join(s.base, notebookFile)
	var doc notebookDocument
	err := readXML(p, &doc)
	if os.IsNotExist(err) {
		return nb.StoredNotebook{Attributes: make(map[string]string)}, nil
	} else if err != nil {
		return nb.StoredNotebook{}, err
	}
	return doc.toStored(p)
}

func (s *Storage) HasNode(id string) (bool, error) {
	return exists(s.nodePath(id))
}

func (s *Storage) HasNodePayload(id, name string) (bool, error) {
	sn, err := s.readNode(id)
	if nb.IsNodeDoesNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return sn.HasPayload(name), nil
}

func (s *Storage) RemoveNode(id string) error {
	has, err := s.HasNode(id)
	if err != nil {
		return err
	}
	if !has {
		return nb.NewNodeDoesNotExistError(id)
	}

	err = os.Remove(s.nodePath(id))
	if err != nil {
		return err
	}
	logging.Debug("Removed node %q from %v", id, s.base)
	return os.RemoveAll(s.nodeDir(id))
}

func (s *Storage) RemoveNodePayload(id, name string) error {
	sn, err := s.readNode(id)
	if err != nil {
		return err
	}
	if !sn.HasPayload(name) {
		return nb.NewPayloadDoesNotExistError(id, name)
	}

	kept := make([]nb.StoredPayload, 0, len(sn.Payloads))
	for _, p := range sn.Payloads {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	sn.Payloads = kept
	err = s.writeNode(sn)
	if err != nil {
		return err
	}

	err = os.Remove(s.payloadPath(id, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Storage) SetNodeAttributes(id string, attributes map[string]string) error {
	sn, err := s.readNode(id)
	if err != nil {
		return err
	}
	sn.Attributes = nb.CopyAttributes(attributes)
	return s.writeNode(sn)
}

func (s *Storage) SetNotebookAttributes(attributes map[string]string) error {
	doc := &notebookDocument{Attributes: newAttributeList(attributes)}
	return fs.WriteReader(filepath.Join(s.base, notebookFile), func(w io.Writer) error {
		return encodeXML(w, doc)
	}, 0644)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
