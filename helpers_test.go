package notebook_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	nb "github.com/akeil/notebook"
	"github.com/akeil/notebook/pkg/memory"
)

func stored(id, contentType, parent, title string) nb.StoredNode {
	attrs := map[string]string{"title": title}
	if parent != "" {
		attrs["parent_id"] = parent
	}
	return nb.StoredNode{
		ID:          id,
		ContentType: contentType,
		Attributes:  attrs,
	}
}

func folder(id, parent string) nb.StoredNode {
	return stored(id, nb.FolderContentType, parent, "Folder "+id)
}

func trash(id, parent string) nb.StoredNode {
	return stored(id, nb.TrashContentType, parent, "Trash")
}

func content(id, parent string) nb.StoredNode {
	sn := stored(id, "text/html", parent, "Page "+id)
	sn.Attributes["main_payload_name"] = "index.html"
	sn.Payloads = []nb.StoredPayload{{Name: "index.html"}}
	return sn
}

func page(id, parent, title string) nb.StoredNode {
	sn := content(id, parent)
	sn.Attributes["title"] = title
	return sn
}

func payloadData(id, name string) []byte {
	return []byte("<p>" + name + " of " + id + "</p>")
}

// storageWith creates a memory storage holding the given nodes.
// Payload data is generated from node id and payload name.
func storageWith(t *testing.T, nodes ...nb.StoredNode) *memory.Storage {
	s := memory.New()
	for _, sn := range nodes {
		payloads := make([]nb.PayloadData, len(sn.Payloads))
		for i, p := range sn.Payloads {
			payloads[i] = nb.PayloadData{Name: p.Name, Data: payloadData(sn.ID, p.Name)}
		}
		require.NoError(t, s.AddNode(sn.ID, sn.ContentType, sn.Attributes, payloads))
	}
	return s
}

// ordered returns the nodes from GetAllNodes in a fixed order.
type ordered struct {
	*memory.Storage
	order []string
}

func (o ordered) GetAllNodes() ([]nb.StoredNode, error) {
	result := make([]nb.StoredNode, 0, len(o.order))
	for _, id := range o.order {
		sn, err := o.Storage.GetNode(id)
		if err != nil {
			return nil, err
		}
		result = append(result, sn)
	}
	return result, nil
}

func permutations(ids []string, n int, seed int64) [][]string {
	r := rand.New(rand.NewSource(seed))
	result := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		p := make([]string, len(ids))
		copy(p, ids)
		r.Shuffle(len(p), func(a, b int) {
			p[a], p[b] = p[b], p[a]
		})
		result = append(result, p)
	}
	return result
}

// structure maps each node id to its parent id and sorted child ids.
func structure(book *nb.Notebook) map[string][]string {
	m := make(map[string][]string)
	book.Walk(func(n *nb.Node) error {
		entry := []string{""}
		if p := n.Parent(); p != nil {
			entry[0] = p.ID()
		}
		for _, c := range n.Children() {
			entry = append(entry, c.ID())
		}
		m[n.ID()] = entry
		return nil
	})
	return m
}

func ids(nodes []*nb.Node) []string {
	r := make([]string, len(nodes))
	for i, n := range nodes {
		r[i] = n.ID()
	}
	return r
}
