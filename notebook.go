package notebook

import (
	"github.com/akeil/notebook/internal/logging"
)

// Notebook is the in-memory tree of nodes on top of a Storage.
//
// Nodes are held in a flat map keyed by ID. A Notebook is not safe for
// concurrent use.
type Notebook struct {
	storage Storage
	daos    []Dao
	nodes   map[string]*Node
	rootID  string
	trashID string
	prefs   *Preferences
	changes *changeLog
}

// Option configures a Notebook.
type Option func(nb *Notebook)

// WithDaos registers additional Daos.
// They are tried before the default Daos, in the given order.
func WithDaos(daos ...Dao) Option {
	return func(nb *Notebook) {
		list := make([]Dao, 0, len(daos)+len(nb.daos))
		list = append(list, daos...)
		nb.daos = append(list, nb.daos...)
	}
}

// WithOnlyDaos replaces the list of Daos.
func WithOnlyDaos(daos ...Dao) Option {
	return func(nb *Notebook) {
		nb.daos = make([]Dao, len(daos))
		copy(nb.daos, daos)
	}
}

// New creates an empty notebook for the given storage.
// Use Sync to populate it.
func New(s Storage, opts ...Option) *Notebook {
	nb := &Notebook{
		storage: s,
		daos:    DefaultDaos(),
		nodes:   make(map[string]*Node),
		prefs:   newPreferences(nil),
		changes: newChangeLog(),
	}
	for _, opt := range opts {
		opt(nb)
	}
	return nb
}

// Open loads a notebook from the given storage.
//
// If the storage is empty, a root folder is created first.
// A trash is created if none exists.
func Open(s Storage, opts ...Option) (*Notebook, error) {
	nb := New(s, opts...)

	stored, err := s.GetAllNodes()
	if err != nil {
		return nil, Wrap(err, "read nodes")
	}
	if len(stored) == 0 {
		root, err := nb.createRoot()
		if err != nil {
			return nil, err
		}
		stored = append(stored, root)
	}

	nodes, err := nb.convertAll(stored)
	if err != nil {
		return nil, err
	}
	_, err = nb.link(nodes)
	if err != nil {
		return nil, err
	}

	err = nb.loadPreferences()
	if err != nil {
		return nil, err
	}

	logging.Info("Opened notebook with %d nodes", len(nb.nodes))
	return nb, nil
}

// Storage returns the storage backend of this notebook.
func (nb *Notebook) Storage() Storage {
	return nb.storage
}

// Root returns the root node or nil for an empty notebook.
func (nb *Notebook) Root() *Node {
	return nb.nodes[nb.rootID]
}

// Trash returns the trash node or nil for an empty notebook.
func (nb *Notebook) Trash() *Node {
	return nb.nodes[nb.trashID]
}

// IsEmpty tells if the notebook has no nodes at all.
func (nb *Notebook) IsEmpty() bool {
	return nb.rootID == ""
}

// Node looks up a node by ID.
// Returns nil if there is no such node or if it was deleted.
func (nb *Notebook) Node(id string) *Node {
	n := nb.nodes[id]
	if n == nil || n.deleted {
		return nil
	}
	return n
}

// Walk visits all nodes that are reachable from the root,
// depth-first and parents before children.
func (nb *Notebook) Walk(fn WalkFunc) error {
	root := nb.Root()
	if root == nil {
		return nil
	}
	return root.Walk(fn)
}

// Nodes returns all nodes reachable from the root in walk order.
func (nb *Notebook) Nodes() []*Node {
	nodes := make([]*Node, 0, len(nb.nodes))
	nb.Walk(func(n *Node) error {
		nodes = append(nodes, n)
		return nil
	})
	return nodes
}

// Len is the number of nodes reachable from the root.
func (nb *Notebook) Len() int {
	return len(nb.Nodes())
}

// PendingChanges lists the local changes that are not yet synced.
func (nb *Notebook) PendingChanges() []Change {
	return nb.changes.all()
}

// Preferences returns the client preferences stored with the notebook.
func (nb *Notebook) Preferences() *Preferences {
	return nb.prefs
}

func (nb *Notebook) loadPreferences() error {
	stored, err := nb.storage.GetNotebook()
	if err != nil {
		return Wrap(err, "read notebook attributes")
	}
	m, err := ClientPreferencesAttr.Dict(stored.Attributes)
	if err != nil {
		return err
	}
	nb.prefs = newPreferences(m)
	return nil
}

// SavePreferences writes the preferences to the storage if they were changed.
// Other notebook attributes are kept.
func (nb *Notebook) SavePreferences() error {
	if !nb.prefs.IsDirty() {
		return nil
	}

	stored, err := nb.storage.GetNotebook()
	if err != nil {
		return Wrap(err, "read notebook attributes")
	}
	v, err := ClientPreferencesAttr.Encode(nb.prefs.toMap())
	if err != nil {
		return err
	}
	attrs := CopyAttributes(stored.Attributes)
	attrs[ClientPreferencesAttr.Key] = v

	err = nb.storage.SetNotebookAttributes(attrs)
	if err != nil {
		return Wrap(err, "write preferences")
	}
	nb.prefs.markClean()
	logging.Debug("Saved client preferences")
	return nil
}

// daoFor finds the Dao to convert a node back to a stored node.
func (nb *Notebook) daoFor(n *Node) (Dao, error) {
	return findDao(nb.daos, n.contentType)
}
