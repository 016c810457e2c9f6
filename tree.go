package notebook

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/akeil/notebook/internal/logging"
)

const (
	defaultRootTitle  = "Root"
	defaultTrashTitle = "Trash"
)

// link validates the given unattached nodes and links them into the tree.
//
// Nodes already in the notebook count as linked; the fresh nodes may refer
// to them as parents. If no trash exists after validation, one is created
// through the storage backend.
// The notebook is only modified if the whole set is valid.
// Returns the linked nodes, including a created trash.
func (nb *Notebook) link(fresh []*Node) ([]*Node, error) {
	sort.Slice(fresh, func(i, j int) bool {
		return fresh[i].id < fresh[j].id
	})

	index := make(map[string]*Node, len(nb.nodes)+len(fresh))
	for id, n := range nb.nodes {
		index[id] = n
	}
	for _, n := range fresh {
		if _, ok := index[n.id]; ok {
			return nil, NewInvalidStructureError("duplicate node id %q", n.id)
		}
		index[n.id] = n
	}

	// parent ids of the nodes that are linked so far
	linked := make(map[string]string, len(index))
	for id, n := range nb.nodes {
		linked[id] = n.parentID
	}

	for _, n := range fresh {
		if n.parentID == "" {
			continue
		}
		if _, ok := index[n.parentID]; !ok {
			return nil, NewInvalidStructureError("no parent: node %q refers to unknown parent %q", n.id, n.parentID)
		}
		if n.parentID == n.id {
			return nil, NewInvalidStructureError("self-parent: node %q is its own parent", n.id)
		}
		p := n.parentID
		for p != "" {
			if p == n.id {
				return nil, NewInvalidStructureError("indirect self-reference: node %q is its own ancestor", n.id)
			}
			next, ok := linked[p]
			if !ok {
				break
			}
			p = next
		}
		linked[n.id] = n.parentID
	}

	rootID := nb.rootID
	for _, n := range fresh {
		if n.parentID != "" {
			continue
		}
		if rootID != "" {
			return nil, NewInvalidStructureError("multiple roots: %q and %q", rootID, n.id)
		}
		rootID = n.id
	}
	if rootID == "" {
		return nil, NewInvalidStructureError("no root")
	}

	trashID := nb.trashID
	for _, n := range fresh {
		if n.kind != TrashKind {
			continue
		}
		if trashID != "" {
			return nil, NewInvalidStructureError("multiple trashes: %q and %q", trashID, n.id)
		}
		trashID = n.id
	}
	if trashID != "" && index[trashID].parentID != rootID {
		return nil, NewInvalidStructureError("trash %q is not a direct child of root", trashID)
	}

	if trashID == "" {
		logging.Info("No trash found, create one below root %q", rootID)
		trash, err := nb.createTrash(rootID)
		if err != nil {
			return nil, err
		}
		fresh = append(fresh, trash)
		trashID = trash.id
	}

	// commit
	for _, n := range fresh {
		n.nb = nb
		nb.nodes[n.id] = n
	}
	touched := make(map[string]bool)
	for _, n := range fresh {
		if n.parentID == "" {
			continue
		}
		p := nb.nodes[n.parentID]
		p.children = append(p.children, n.id)
		touched[p.id] = true
	}
	for id := range touched {
		sort.Strings(nb.nodes[id].children)
	}
	nb.rootID = rootID
	nb.trashID = trashID

	// nodes that show up below a locally deleted node are deleted as well
	for _, n := range fresh {
		if n.deleted {
			continue
		}
		for _, a := range n.Ancestors() {
			if a.deleted {
				logging.Debug("Node %q is below deleted node %q", n.id, a.id)
				n.deleted = true
				nb.changes.record(n.id, ChangeDeleted, "")
				break
			}
		}
	}

	logging.Debug("Linked %d nodes, root is %q, trash is %q", len(fresh), rootID, trashID)
	return fresh, nil
}

// convert selects the first Dao that accepts the stored node's content type
// and uses it to create an unattached node.
func (nb *Notebook) convert(sn StoredNode) (*Node, error) {
	d, err := findDao(nb.daos, sn.ContentType)
	if err != nil {
		return nil, err
	}
	n, err := d.ToNode(sn, nb.storage, nb)
	if err != nil {
		return nil, err
	}
	if n.id != sn.ID {
		return nil, NewStoredNodeConversionError("dao returned node %q for stored node %q", n.id, sn.ID)
	}
	if n.children == nil {
		n.children = make([]string, 0)
	}
	if n.extra == nil {
		n.extra = make(map[string]string)
	}
	return n, nil
}

func (nb *Notebook) convertAll(stored []StoredNode) ([]*Node, error) {
	nodes := make([]*Node, 0, len(stored))
	for _, sn := range stored {
		n, err := nb.convert(sn)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// createRoot creates a root folder in the storage.
func (nb *Notebook) createRoot() (StoredNode, error) {
	sn := newStoredFolder(FolderContentType, "", defaultRootTitle)
	logging.Info("Create root folder %q", sn.ID)
	err := nb.storage.AddNode(sn.ID, sn.ContentType, sn.Attributes, nil)
	if err != nil {
		return StoredNode{}, Wrap(err, "create root")
	}
	return sn, nil
}

// createTrash creates a trash node below the given root in the storage
// and returns the unattached node.
func (nb *Notebook) createTrash(rootID string) (*Node, error) {
	sn := newStoredFolder(TrashContentType, rootID, defaultTrashTitle)
	err := nb.storage.AddNode(sn.ID, sn.ContentType, sn.Attributes, nil)
	if err != nil {
		return nil, Wrap(err, "create trash")
	}
	return nb.convert(sn)
}

func newStoredFolder(contentType, parentID, title string) StoredNode {
	now := time.Now().UTC().Truncate(time.Second)
	ts, _ := CreatedTimeAttr.Encode(now)
	attrs := map[string]string{
		TitleAttr.Key:        title,
		CreatedTimeAttr.Key:  ts,
		ModifiedTimeAttr.Key: ts,
	}
	if parentID != "" {
		attrs[ParentIDAttr.Key] = parentID
	}
	return StoredNode{
		ID:          uuid.New().String(),
		ContentType: contentType,
		Attributes:  attrs,
		Payloads:    make([]StoredPayload, 0),
	}
}
