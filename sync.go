package notebook

import (
	"bytes"
	"sort"

	"github.com/akeil/notebook/internal/logging"
)

// SyncReport lists the node ids that were handled by a Sync.
type SyncReport struct {
	// Added are nodes found in the storage and linked into the tree.
	Added []string
	// Created are local nodes that were written to the storage.
	Created []string
	// Updated are nodes with attribute or payload changes.
	Updated []string
	// Removed are locally deleted nodes that were removed from the storage.
	Removed []string
	// Preferences tells if the client preferences were written.
	Preferences bool
}

func newSyncReport() *SyncReport {
	return &SyncReport{
		Added:   make([]string, 0),
		Created: make([]string, 0),
		Updated: make([]string, 0),
		Removed: make([]string, 0),
	}
}

// Empty tells if the Sync did not change anything.
func (r *SyncReport) Empty() bool {
	return len(r.Added) == 0 && len(r.Created) == 0 && len(r.Updated) == 0 &&
		len(r.Removed) == 0 && !r.Preferences
}

// Sync reconciles the notebook with its storage.
//
// Nodes that exist only in the storage are added to the tree.
// Local nodes that do not exist in the storage are created, parents before
// children, together with their payloads. Then pending attribute and
// payload changes are written and locally deleted nodes are removed,
// deepest first.
//
// There is no rollback. If Sync fails, the steps that were completed
// before the failure remain in effect and the remaining changes stay
// pending.
//
// A Sync without changes on either side does nothing. Nodes that are
// already in the tree are never replaced.
func (nb *Notebook) Sync() (*SyncReport, error) {
	report := newSyncReport()
	wasEmpty := nb.IsEmpty()

	stored, err := nb.storage.GetAllNodes()
	if err != nil {
		return nil, Wrap(err, "read nodes")
	}
	remote := make(map[string]StoredNode, len(stored))
	for _, sn := range stored {
		remote[sn.ID] = sn
	}

	if wasEmpty && len(remote) == 0 {
		root, err := nb.createRoot()
		if err != nil {
			return nil, err
		}
		remote[root.ID] = root
	}

	local := make(map[string]*Node)
	nb.Walk(func(n *Node) error {
		local[n.id] = n
		return nil
	})

	newInRemote := make([]StoredNode, 0)
	for id, sn := range remote {
		if _, ok := nb.nodes[id]; !ok {
			newInRemote = append(newInRemote, sn)
		}
	}
	newInLocal := make([]*Node, 0)
	for id, n := range local {
		if _, ok := remote[id]; !ok {
			newInLocal = append(newInLocal, n)
		}
	}
	logging.Debug("Sync: %d new in storage, %d new in notebook", len(newInRemote), len(newInLocal))

	// 1. remote adds
	if len(newInRemote) > 0 {
		fresh, err := nb.convertAll(newInRemote)
		if err != nil {
			return nil, err
		}
		linked, err := nb.link(fresh)
		if err != nil {
			return nil, err
		}
		for _, n := range linked {
			report.Added = append(report.Added, n.id)
			remote[n.id] = StoredNode{ID: n.id}
		}
		sort.Strings(report.Added)
	}
	if wasEmpty && !nb.prefs.IsDirty() {
		err = nb.loadPreferences()
		if err != nil {
			return nil, err
		}
	}

	// 2. local creates, parents first
	depths := make(map[string]int, len(newInLocal))
	for _, n := range newInLocal {
		depths[n.id] = n.Depth()
	}
	sort.Slice(newInLocal, func(i, j int) bool {
		a, b := newInLocal[i], newInLocal[j]
		if depths[a.id] != depths[b.id] {
			return depths[a.id] < depths[b.id]
		}
		return a.id < b.id
	})
	for _, n := range newInLocal {
		err = nb.store(n)
		if err != nil {
			return report, err
		}
		nb.changes.drop(n.id)
		report.Created = append(report.Created, n.id)
	}

	// 3. attribute and payload changes
	for _, id := range nb.changes.nodeIDs() {
		n := nb.nodes[id]
		if n == nil {
			nb.changes.drop(id)
			continue
		}
		if n.deleted {
			continue
		}
		err = nb.flush(n)
		if err != nil {
			return report, err
		}
		nb.changes.drop(id)
		report.Updated = append(report.Updated, id)
	}

	// 4. local deletes, children first
	deleted := make([]*Node, 0)
	for _, n := range nb.nodes {
		if n.deleted {
			deleted = append(deleted, n)
		}
	}
	depths = make(map[string]int, len(deleted))
	for _, n := range deleted {
		depths[n.id] = n.Depth()
	}
	sort.Slice(deleted, func(i, j int) bool {
		a, b := deleted[i], deleted[j]
		if depths[a.id] != depths[b.id] {
			return depths[a.id] > depths[b.id]
		}
		return a.id < b.id
	})
	for _, n := range deleted {
		if _, persisted := remote[n.id]; persisted {
			err = nb.storage.RemoveNode(n.id)
			if err != nil {
				return report, Wrap(err, "remove node %q", n.id)
			}
			report.Removed = append(report.Removed, n.id)
		}
		delete(nb.nodes, n.id)
		nb.changes.drop(n.id)
	}

	// 5. preferences
	if nb.prefs.IsDirty() {
		err = nb.SavePreferences()
		if err != nil {
			return report, err
		}
		report.Preferences = true
	}

	logging.Info("Sync: %d added, %d created, %d updated, %d removed",
		len(report.Added), len(report.Created), len(report.Updated), len(report.Removed))
	return report, nil
}

// store creates a local node in the storage, including all payloads.
func (nb *Notebook) store(n *Node) error {
	d, err := nb.daoFor(n)
	if err != nil {
		return err
	}
	sn, err := d.ToStored(n)
	if err != nil {
		return err
	}

	payloads := make([]PayloadData, 0, len(sn.Payloads))
	for _, p := range sn.Payloads {
		data, err := n.Payload(p.Name)
		if err != nil {
			return Wrap(err, "create node %q", n.id)
		}
		payloads = append(payloads, PayloadData{Name: p.Name, Data: data})
	}

	err = nb.storage.AddNode(sn.ID, sn.ContentType, sn.Attributes, payloads)
	if err != nil {
		return Wrap(err, "create node %q", n.id)
	}
	logging.Debug("Created node %q in storage", n.id)
	return nil
}

// flush writes pending payload and attribute changes for one node.
func (nb *Notebook) flush(n *Node) error {
	state := payloadState(nb.changes.forNode(n.id))
	names := make([]string, 0, len(state))
	for name := range state {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		has, err := nb.storage.HasNodePayload(n.id, name)
		if err != nil {
			return err
		}
		if has {
			err = nb.storage.RemoveNodePayload(n.id, name)
			if err != nil {
				return Wrap(err, "update node %q", n.id)
			}
		}
		if state[name] {
			data := n.payloads[name]
			err = nb.storage.AddNodePayload(n.id, name, bytes.NewReader(data))
			if err != nil {
				return Wrap(err, "update node %q", n.id)
			}
		}
	}

	d, err := nb.daoFor(n)
	if err != nil {
		return err
	}
	sn, err := d.ToStored(n)
	if err != nil {
		return err
	}
	err = nb.storage.SetNodeAttributes(n.id, sn.Attributes)
	if err != nil {
		return Wrap(err, "update node %q", n.id)
	}
	logging.Debug("Updated node %q in storage", n.id)
	return nil
}
