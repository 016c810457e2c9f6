package notebook

// ChangeKind tells what kind of local modification a Change records.
type ChangeKind int

const (
	ChangeCreated ChangeKind = iota
	ChangeAttributes
	ChangePayloadSet
	ChangePayloadRemoved
	ChangeDeleted
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeCreated:
		return "created"
	case ChangeAttributes:
		return "attributes"
	case ChangePayloadSet:
		return "payload-set"
	case ChangePayloadRemoved:
		return "payload-removed"
	case ChangeDeleted:
		return "deleted"
	default:
		return "UNKNOWN"
	}
}

// Change is one entry in the change log of a notebook.
type Change struct {
	NodeID string
	Kind   ChangeKind
	// Payload is the payload name for payload changes.
	Payload string
}

// changeLog collects local modifications in the order they were made.
// Entries are dropped per node once Sync has written them.
type changeLog struct {
	entries []Change
}

func newChangeLog() *changeLog {
	return &changeLog{entries: make([]Change, 0)}
}

func (c *changeLog) record(id string, k ChangeKind, payload string) {
	c.entries = append(c.entries, Change{NodeID: id, Kind: k, Payload: payload})
}

func (c *changeLog) has(id string) bool {
	for _, e := range c.entries {
		if e.NodeID == id {
			return true
		}
	}
	return false
}

func (c *changeLog) forNode(id string) []Change {
	r := make([]Change, 0)
	for _, e := range c.entries {
		if e.NodeID == id {
			r = append(r, e)
		}
	}
	return r
}

// nodeIDs lists the ids with pending changes, in order of first change.
func (c *changeLog) nodeIDs() []string {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, e := range c.entries {
		if !seen[e.NodeID] {
			seen[e.NodeID] = true
			ids = append(ids, e.NodeID)
		}
	}
	return ids
}

func (c *changeLog) drop(id string) {
	kept := c.entries[:0]
	for _, e := range c.entries {
		if e.NodeID != id {
			kept = append(kept, e)
		}
	}
	c.entries = kept
}

func (c *changeLog) all() []Change {
	r := make([]Change, len(c.entries))
	copy(r, c.entries)
	return r
}

// payloadState collapses the payload changes for one node.
// The result maps payload names to true (write) or false (remove);
// the last change for a name wins.
func payloadState(changes []Change) map[string]bool {
	state := make(map[string]bool)
	for _, ch := range changes {
		switch ch.Kind {
		case ChangePayloadSet:
			state[ch.Payload] = true
		case ChangePayloadRemoved:
			state[ch.Payload] = false
		}
	}
	return state
}
