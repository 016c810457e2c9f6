package notebook

import (
	"time"

	"github.com/google/uuid"

	"github.com/akeil/notebook/internal/logging"
)

func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// checkParent tells if new children can be added to the given node.
func (nb *Notebook) checkParent(parent *Node) error {
	if parent == nil {
		return NewIllegalOperationError("no parent given")
	}
	if parent.nb != nb {
		return NewIllegalOperationError("node %q belongs to another notebook", parent.id)
	}
	if parent.deleted {
		return NewIllegalOperationError("node %q is deleted", parent.id)
	}
	if parent.InTrash() {
		return NewIllegalOperationError("cannot add a node below %q, it is in the trash", parent.id)
	}
	return nil
}

func (nb *Notebook) checkMutable(n *Node) error {
	if n == nil {
		return NewIllegalOperationError("no node given")
	}
	if n.nb != nb {
		return NewIllegalOperationError("node %q belongs to another notebook", n.id)
	}
	if n.deleted {
		return NewIllegalOperationError("node %q is deleted", n.id)
	}
	return nil
}

func (nb *Notebook) attach(n, parent *Node) {
	n.nb = nb
	n.parentID = parent.id
	nb.nodes[n.id] = n
	parent.children = append(parent.children, n.id)
	nb.changes.record(n.id, ChangeCreated, "")
}

// CreateFolder adds a new folder as the last child of parent.
func (nb *Notebook) CreateFolder(parent *Node, title string) (*Node, error) {
	err := nb.checkParent(parent)
	if err != nil {
		return nil, err
	}

	t := now()
	n := &Node{
		id:          uuid.New().String(),
		contentType: FolderContentType,
		kind:        FolderKind,
		title:       title,
		created:     t,
		modified:    t,
		extra:       make(map[string]string),
		children:    make([]string, 0),
	}
	nb.attach(n, parent)
	logging.Debug("Created folder %q in %q", n.id, parent.id)
	return n, nil
}

// CreateContent adds a new content node as the last child of parent.
// The main payload is created with the given data.
func (nb *Notebook) CreateContent(parent *Node, title, contentType, mainPayloadName string, data []byte) (*Node, error) {
	err := nb.checkParent(parent)
	if err != nil {
		return nil, err
	}
	if contentType == FolderContentType || contentType == TrashContentType {
		return nil, NewIllegalOperationError("content type %q is reserved", contentType)
	}
	if mainPayloadName == "" {
		return nil, NewIllegalOperationError("main payload name must not be empty")
	}
	if data == nil {
		data = []byte{}
	}

	t := now()
	n := &Node{
		id:                     uuid.New().String(),
		contentType:            contentType,
		kind:                   ContentKind,
		title:                  title,
		created:                t,
		modified:               t,
		extra:                  make(map[string]string),
		children:               make([]string, 0),
		mainPayloadName:        mainPayloadName,
		additionalPayloadNames: make([]string, 0),
		payloads:               map[string][]byte{mainPayloadName: data},
	}
	nb.attach(n, parent)
	logging.Debug("Created content node %q in %q", n.id, parent.id)
	return n, nil
}

// Delete marks a node and its subtree as deleted and detaches it from
// its parent. The root and the trash cannot be deleted.
// Nodes are removed from the storage on the next Sync.
func (nb *Notebook) Delete(n *Node) error {
	err := nb.checkMutable(n)
	if err != nil {
		return err
	}
	if n.IsRoot() {
		return NewIllegalOperationError("cannot delete the root")
	}
	if n.id == nb.trashID {
		return NewIllegalOperationError("cannot delete the trash")
	}

	if p := n.Parent(); p != nil {
		p.children = removeID(p.children, n.id)
	}
	n.Walk(func(d *Node) error {
		d.deleted = true
		nb.changes.record(d.id, ChangeDeleted, "")
		return nil
	})
	logging.Debug("Deleted node %q", n.id)
	return nil
}

// Move moves a node to a new parent.
//
// The node is placed right after behind, which must be a child of the new
// parent. If behind is nil, the node is appended as the last child.
// The root and the trash cannot be moved, and a node cannot be moved into
// its own subtree.
func (nb *Notebook) Move(n, parent, behind *Node) error {
	err := nb.checkMutable(n)
	if err != nil {
		return err
	}
	err = nb.checkMutable(parent)
	if err != nil {
		return err
	}
	if n.IsRoot() {
		return NewIllegalOperationError("cannot move the root")
	}
	if n.id == nb.trashID {
		return NewIllegalOperationError("cannot move the trash")
	}
	if parent == n || parent.IsDescendantOf(n) {
		return NewIllegalOperationError("cannot move %q into its own subtree", n.id)
	}
	if parent.InTrash() && parent.id != nb.trashID {
		return NewIllegalOperationError("cannot move %q below %q, it is in the trash", n.id, parent.id)
	}
	if behind != nil {
		if behind == n {
			return NewIllegalOperationError("cannot move %q behind itself", n.id)
		}
		if behind.parentID != parent.id || behind.nb != nb || behind.deleted {
			return NewIllegalOperationError("node %q is not a child of %q", behind.id, parent.id)
		}
	}

	old := n.Parent()
	old.children = removeID(old.children, n.id)

	pos := len(parent.children)
	if behind != nil {
		for i, id := range parent.children {
			if id == behind.id {
				pos = i + 1
				break
			}
		}
	}
	parent.children = insertID(parent.children, pos, n.id)

	if n.parentID != parent.id {
		n.parentID = parent.id
		nb.touch(n)
	}
	logging.Debug("Moved node %q to %q", n.id, parent.id)
	return nil
}

// MoveToTrash moves a node into the trash.
func (nb *Notebook) MoveToTrash(n *Node) error {
	return nb.Move(n, nb.Trash(), nil)
}

// touch updates the modification time and records an attribute change.
func (nb *Notebook) touch(n *Node) {
	n.modified = now()
	nb.changes.record(n.id, ChangeAttributes, "")
}

func (n *Node) checkMutable() error {
	if n.nb == nil {
		return NewIllegalOperationError("node %q is not part of a notebook", n.id)
	}
	return n.nb.checkMutable(n)
}

func (n *Node) SetTitle(title string) error {
	err := n.checkMutable()
	if err != nil {
		return err
	}
	n.title = title
	n.nb.touch(n)
	return nil
}

func (n *Node) SetOrder(order int) error {
	err := n.checkMutable()
	if err != nil {
		return err
	}
	n.order = order
	n.nb.touch(n)
	return nil
}

// SetIcon sets the icon names; an empty name removes the icon.
func (n *Node) SetIcon(icon, iconOpen string) error {
	err := n.checkMutable()
	if err != nil {
		return err
	}
	n.icon = icon
	n.iconOpen = iconOpen
	n.nb.touch(n)
	return nil
}

func (n *Node) SetTitleColors(fg, bg string) error {
	err := n.checkMutable()
	if err != nil {
		return err
	}
	n.titleFgColor = fg
	n.titleBgColor = bg
	n.nb.touch(n)
	return nil
}

// SetExtra sets an attribute that has no typed field.
// Well-known attribute keys are rejected.
func (n *Node) SetExtra(key, value string) error {
	err := n.checkMutable()
	if err != nil {
		return err
	}
	if isDefinedAttribute(key) {
		return NewIllegalOperationError("%q is a defined attribute", key)
	}
	n.extra[key] = value
	n.nb.touch(n)
	return nil
}

// RemoveExtra removes an attribute that has no typed field.
func (n *Node) RemoveExtra(key string) error {
	err := n.checkMutable()
	if err != nil {
		return err
	}
	if _, ok := n.extra[key]; !ok {
		return nil
	}
	delete(n.extra, key)
	n.nb.touch(n)
	return nil
}

// SetPayload creates or replaces a payload of a content node.
func (n *Node) SetPayload(name string, data []byte) error {
	err := n.checkMutable()
	if err != nil {
		return err
	}
	if n.kind != ContentKind {
		return NewIllegalOperationError("node %q has no payloads", n.id)
	}
	if name == "" {
		return NewIllegalOperationError("payload name must not be empty")
	}
	if data == nil {
		data = []byte{}
	}

	if !n.HasPayload(name) {
		n.additionalPayloadNames = append(n.additionalPayloadNames, name)
	}
	if n.payloads == nil {
		n.payloads = make(map[string][]byte)
	}
	n.payloads[name] = data
	n.nb.changes.record(n.id, ChangePayloadSet, name)
	n.nb.touch(n)
	return nil
}

// RemovePayload removes an additional payload.
// The main payload cannot be removed.
func (n *Node) RemovePayload(name string) error {
	err := n.checkMutable()
	if err != nil {
		return err
	}
	if !n.HasPayload(name) {
		return NewPayloadDoesNotExistError(n.id, name)
	}
	if name == n.mainPayloadName {
		return NewIllegalOperationError("cannot remove main payload %q of node %q", name, n.id)
	}

	n.additionalPayloadNames = removeID(n.additionalPayloadNames, name)
	delete(n.payloads, name)
	n.nb.changes.record(n.id, ChangePayloadRemoved, name)
	n.nb.touch(n)
	return nil
}

// SetMainPayloadName selects one of the existing payloads as main payload.
func (n *Node) SetMainPayloadName(name string) error {
	err := n.checkMutable()
	if err != nil {
		return err
	}
	if !n.HasPayload(name) {
		return NewPayloadDoesNotExistError(n.id, name)
	}
	if name == n.mainPayloadName {
		return nil
	}

	names := removeID(n.additionalPayloadNames, name)
	names = insertID(names, 0, n.mainPayloadName)
	n.additionalPayloadNames = names
	n.mainPayloadName = name
	n.nb.touch(n)
	return nil
}

func removeID(ids []string, id string) []string {
	r := make([]string, 0, len(ids))
	for _, x := range ids {
		if x != id {
			r = append(r, x)
		}
	}
	return r
}

func insertID(ids []string, pos int, id string) []string {
	r := make([]string, 0, len(ids)+1)
	r = append(r, ids[:pos]...)
	r = append(r, id)
	return append(r, ids[pos:]...)
}
