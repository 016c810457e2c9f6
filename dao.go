package notebook

// Dao converts between stored nodes and notebook nodes
// for a family of content types.
type Dao interface {
	// Accepts tells if this Dao handles the given content type.
	Accepts(contentType string) bool
	// ToNode converts a stored node to an unattached notebook node.
	ToNode(sn StoredNode, s Storage, nb *Notebook) (*Node, error)
	// ToStored converts a notebook node back to its stored representation.
	ToStored(n *Node) (StoredNode, error)
}

// DefaultDaos returns the built-in Daos in priority order.
func DefaultDaos() []Dao {
	return []Dao{
		TrashDao{},
		FolderDao{},
		ContentDao{},
	}
}

// TrashDao handles the trash node.
type TrashDao struct{}

func (TrashDao) Accepts(contentType string) bool {
	return contentType == TrashContentType
}

func (TrashDao) ToNode(sn StoredNode, s Storage, nb *Notebook) (*Node, error) {
	return DecodeNode(sn, TrashKind)
}

func (TrashDao) ToStored(n *Node) (StoredNode, error) {
	return storedWithoutPayloads(n), nil
}

// FolderDao handles folders.
type FolderDao struct{}

func (FolderDao) Accepts(contentType string) bool {
	return contentType == FolderContentType
}

func (FolderDao) ToNode(sn StoredNode, s Storage, nb *Notebook) (*Node, error) {
	return DecodeNode(sn, FolderKind)
}

func (FolderDao) ToStored(n *Node) (StoredNode, error) {
	return storedWithoutPayloads(n), nil
}

// ContentDao handles content nodes.
// It accepts every content type and should come last.
type ContentDao struct{}

func (ContentDao) Accepts(contentType string) bool {
	return true
}

// ToNode validates the payloads of the stored node.
// A content node needs at least one payload and a main payload name
// that refers to one of them.
func (ContentDao) ToNode(sn StoredNode, s Storage, nb *Notebook) (*Node, error) {
	if len(sn.Payloads) == 0 {
		return nil, NewInvalidStructureError("content node %q has no payloads", sn.ID)
	}
	if !MainPayloadNameAttr.Present(sn.Attributes) {
		return nil, NewInvalidStructureError("content node %q has no %v", sn.ID, MainPayloadNameAttr.Key)
	}
	main, err := MainPayloadNameAttr.Text(sn.Attributes)
	if err != nil {
		return nil, wrapNodeError(sn.ID, err)
	}
	if !sn.HasPayload(main) {
		return nil, NewInvalidStructureError("content node %q: main payload %q not among payloads", sn.ID, main)
	}

	n, err := DecodeNode(sn, ContentKind)
	if err != nil {
		return nil, err
	}

	n.mainPayloadName = main
	n.additionalPayloadNames = make([]string, 0, len(sn.Payloads)-1)
	seen := map[string]bool{main: true}
	for _, name := range sn.PayloadNames() {
		if !seen[name] {
			seen[name] = true
			n.additionalPayloadNames = append(n.additionalPayloadNames, name)
		}
	}
	n.payloads = make(map[string][]byte)

	return n, nil
}

// ToStored includes the payload names. Hashes are only set for payloads
// that are held in memory.
func (ContentDao) ToStored(n *Node) (StoredNode, error) {
	sn := storedWithoutPayloads(n)
	for _, name := range n.PayloadNames() {
		p := StoredPayload{Name: name}
		if data, ok := n.payloads[name]; ok {
			p.MD5 = HashPayload(data)
		}
		sn.Payloads = append(sn.Payloads, p)
	}
	return sn, nil
}

func storedWithoutPayloads(n *Node) StoredNode {
	return StoredNode{
		ID:          n.id,
		ContentType: n.contentType,
		Attributes:  n.StoredAttributes(),
		Payloads:    make([]StoredPayload, 0),
	}
}

// findDao returns the first Dao that accepts the content type.
func findDao(daos []Dao, contentType string) (Dao, error) {
	for _, d := range daos {
		if d.Accepts(contentType) {
			return d, nil
		}
	}
	return nil, NewStoredNodeConversionError("no dao accepts content type %q", contentType)
}
