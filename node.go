package notebook

import (
	"errors"
	"sort"
	"time"
)

// Kind distinguishes the node variants.
type Kind int

const (
	ContentKind Kind = iota
	FolderKind
	TrashKind
	// ExtensionKind is used for nodes created by custom Daos.
	ExtensionKind
)

func (k Kind) String() string {
	switch k {
	case ContentKind:
		return "content"
	case FolderKind:
		return "folder"
	case TrashKind:
		return "trash"
	case ExtensionKind:
		return "extension"
	default:
		return "UNKNOWN"
	}
}

// Content types with a special meaning.
// Every other content type denotes a content node.
const (
	FolderContentType = "application/x-notebook-folder"
	TrashContentType  = "application/x-notebook-trash"
)

// Node is an entry in the notebook tree.
//
// Nodes are owned by a Notebook. Parent and children are referenced by ID
// and resolved through the owning notebook.
type Node struct {
	id           string
	contentType  string
	kind         Kind
	title        string
	created      time.Time
	modified     time.Time
	order        int
	icon         string
	iconOpen     string
	titleFgColor string
	titleBgColor string
	extra        map[string]string
	// well-known attributes without a field for this kind of node
	retained     map[string]string

	// content nodes only
	mainPayloadName        string
	additionalPayloadNames []string
	payloads               map[string][]byte

	parentID string
	children []string
	nb       *Notebook
	deleted  bool
}

func (n *Node) ID() string {
	return n.id
}

func (n *Node) ContentType() string {
	return n.contentType
}

func (n *Node) Kind() Kind {
	return n.kind
}

func (n *Node) Title() string {
	return n.title
}

func (n *Node) Created() time.Time {
	return n.created
}

func (n *Node) Modified() time.Time {
	return n.modified
}

func (n *Node) Order() int {
	return n.order
}

// Icon returns the names of the closed and open icon.
func (n *Node) Icon() (string, string) {
	return n.icon, n.iconOpen
}

// TitleColors returns foreground and background color for the title.
func (n *Node) TitleColors() (string, string) {
	return n.titleFgColor, n.titleBgColor
}

// Extra returns an attribute that has no typed field.
func (n *Node) Extra(key string) (string, bool) {
	v, ok := n.extra[key]
	return v, ok
}

// ExtraKeys lists the keys of all extra attributes in sorted order.
func (n *Node) ExtraKeys() []string {
	keys := make([]string, 0, len(n.extra))
	for k := range n.extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (n *Node) IsContent() bool {
	return n.kind == ContentKind
}

func (n *Node) IsFolder() bool {
	return n.kind == FolderKind
}

func (n *Node) IsTrash() bool {
	return n.kind == TrashKind
}

// IsRoot tells if this is the root node of its notebook.
func (n *Node) IsRoot() bool {
	return n.nb != nil && n.nb.rootID == n.id
}

// IsLeaf tells if the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.children) == 0
}

// IsDeleted tells if the node was deleted locally.
// The deletion is pending until the next Sync.
func (n *Node) IsDeleted() bool {
	return n.deleted
}

// IsDirty tells if the node has local changes that are not yet synced.
func (n *Node) IsDirty() bool {
	if n.nb == nil {
		return false
	}
	return n.nb.changes.has(n.id)
}

// Notebook returns the notebook that owns this node.
func (n *Node) Notebook() *Notebook {
	return n.nb
}

// Parent returns the parent node or nil for the root.
func (n *Node) Parent() *Node {
	if n.nb == nil || n.parentID == "" {
		return nil
	}
	return n.nb.nodes[n.parentID]
}

// Children returns the child nodes in their current order.
func (n *Node) Children() []*Node {
	c := make([]*Node, 0, len(n.children))
	if n.nb == nil {
		return c
	}
	for _, id := range n.children {
		if child := n.nb.nodes[id]; child != nil {
			c = append(c, child)
		}
	}
	return c
}

// Ancestors returns the chain of parents, nearest first.
func (n *Node) Ancestors() []*Node {
	a := make([]*Node, 0)
	for p := n.Parent(); p != nil; p = p.Parent() {
		a = append(a, p)
	}
	return a
}

// Depth is the number of ancestors; the root has depth 0.
func (n *Node) Depth() int {
	return len(n.Ancestors())
}

// IsDescendantOf tells if other is an ancestor of this node.
func (n *Node) IsDescendantOf(other *Node) bool {
	for _, a := range n.Ancestors() {
		if a == other {
			return true
		}
	}
	return false
}

// InTrash tells if this node is the trash or located somewhere below it.
func (n *Node) InTrash() bool {
	if n.kind == TrashKind {
		return true
	}
	for _, a := range n.Ancestors() {
		if a.kind == TrashKind {
			return true
		}
	}
	return false
}

// Path returns the titles from the root down to this node.
// The root itself is not included.
func (n *Node) Path() []string {
	a := n.Ancestors()
	p := make([]string, 0, len(a)+1)
	for i := len(a) - 2; i >= 0; i-- {
		p = append(p, a[i].title)
	}
	if !n.IsRoot() {
		p = append(p, n.title)
	}
	return p
}

// SkipChildren can be returned from a WalkFunc to skip the subtree
// below the current node.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for every node visited by Walk.
type WalkFunc func(n *Node) error

// Walk visits this node and its subtree depth-first.
// Walking stops at the first error returned from fn (other than SkipChildren).
func (n *Node) Walk(fn WalkFunc) error {
	err := fn(n)
	if err == SkipChildren {
		return nil
	} else if err != nil {
		return err
	}

	for _, c := range n.Children() {
		err = c.Walk(fn)
		if err != nil {
			return err
		}
	}
	return nil
}

// MainPayloadName returns the name of the primary payload of a content node.
func (n *Node) MainPayloadName() string {
	return n.mainPayloadName
}

// AdditionalPayloadNames returns the names of all payloads except the main one.
func (n *Node) AdditionalPayloadNames() []string {
	names := make([]string, len(n.additionalPayloadNames))
	copy(names, n.additionalPayloadNames)
	return names
}

// PayloadNames returns the main payload name followed by the additional ones.
func (n *Node) PayloadNames() []string {
	if n.kind != ContentKind {
		return []string{}
	}
	names := make([]string, 0, len(n.additionalPayloadNames)+1)
	names = append(names, n.mainPayloadName)
	return append(names, n.additionalPayloadNames...)
}

// HasPayload tells if the node has a payload with the given name.
func (n *Node) HasPayload(name string) bool {
	for _, p := range n.PayloadNames() {
		if p == name {
			return true
		}
	}
	return false
}

// Payload returns the payload data.
// Payloads are loaded lazily from the storage on first access.
func (n *Node) Payload(name string) ([]byte, error) {
	if !n.HasPayload(name) {
		return nil, NewPayloadDoesNotExistError(n.id, name)
	}

	if data, ok := n.payloads[name]; ok {
		return data, nil
	}

	if n.nb == nil {
		return nil, NewPayloadDoesNotExistError(n.id, name)
	}

	data, err := ReadPayload(n.nb.storage, n.id, name)
	if err != nil {
		return nil, err
	}
	if n.payloads == nil {
		n.payloads = make(map[string][]byte)
	}
	n.payloads[name] = data
	return data, nil
}

// StoredAttributes encodes the node's fields as a stored attribute map.
func (n *Node) StoredAttributes() map[string]string {
	attrs := make(map[string]string)
	for k, v := range n.retained {
		attrs[k] = v
	}
	for k, v := range n.extra {
		attrs[k] = v
	}

	if n.parentID != "" {
		attrs[ParentIDAttr.Key] = n.parentID
	}
	attrs[TitleAttr.Key] = n.title
	if n.kind == ContentKind {
		attrs[MainPayloadNameAttr.Key] = n.mainPayloadName
	}
	if !n.created.IsZero() {
		attrs[CreatedTimeAttr.Key], _ = CreatedTimeAttr.Encode(n.created)
	}
	if !n.modified.IsZero() {
		attrs[ModifiedTimeAttr.Key], _ = ModifiedTimeAttr.Encode(n.modified)
	}
	if n.order != 0 {
		attrs[OrderAttr.Key], _ = OrderAttr.Encode(n.order)
	}

	optional := []struct {
		def   AttributeDefinition
		value string
	}{
		{IconAttr, n.icon},
		{IconOpenAttr, n.iconOpen},
		{TitleFgColorAttr, n.titleFgColor},
		{TitleBgColorAttr, n.titleBgColor},
	}
	for _, o := range optional {
		if o.value != "" {
			attrs[o.def.Key] = o.value
		}
	}

	return attrs
}

// DecodeNode creates an unattached node from a stored node.
// All well-known attributes are coerced to their types, other attributes
// are kept as extra attributes. Well-known attributes that the node has no
// field for are written back unchanged by StoredAttributes.
// Payload handling is left to the caller.
func DecodeNode(sn StoredNode, kind Kind) (*Node, error) {
	attrs := sn.Attributes
	n := &Node{
		id:          sn.ID,
		contentType: sn.ContentType,
		kind:        kind,
		extra:       make(map[string]string),
		retained:    make(map[string]string),
		children:    make([]string, 0),
	}

	var err error
	strs := []struct {
		def AttributeDefinition
		dst *string
	}{
		{ParentIDAttr, &n.parentID},
		{TitleAttr, &n.title},
		{IconAttr, &n.icon},
		{IconOpenAttr, &n.iconOpen},
		{TitleFgColorAttr, &n.titleFgColor},
		{TitleBgColorAttr, &n.titleBgColor},
	}
	for _, s := range strs {
		*s.dst, err = s.def.Text(attrs)
		if err != nil {
			return nil, wrapNodeError(sn.ID, err)
		}
	}

	n.created, err = CreatedTimeAttr.Time(attrs)
	if err != nil {
		return nil, wrapNodeError(sn.ID, err)
	}
	n.modified, err = ModifiedTimeAttr.Time(attrs)
	if err != nil {
		return nil, wrapNodeError(sn.ID, err)
	}
	n.order, err = OrderAttr.Int(attrs)
	if err != nil {
		return nil, wrapNodeError(sn.ID, err)
	}

	for k, v := range attrs {
		if !isDefinedAttribute(k) {
			n.extra[k] = v
		} else if !hasField(kind, k) {
			n.retained[k] = v
		}
	}

	return n, nil
}

// hasField tells if nodes of the given kind keep the well-known attribute
// in a typed field.
func hasField(kind Kind, key string) bool {
	switch key {
	case ClientPreferencesAttr.Key:
		return false
	case MainPayloadNameAttr.Key:
		return kind == ContentKind
	}
	return true
}

func wrapNodeError(id string, err error) error {
	if IsInvalidStructure(err) {
		return NewInvalidStructureError("node %q: %v", id, err)
	}
	return err
}
