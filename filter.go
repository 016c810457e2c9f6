package notebook

import (
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// NodeFilter is a predicate for nodes.
type NodeFilter func(n *Node) bool

// Filter returns all nodes reachable from the root that match every filter,
// in walk order.
func (nb *Notebook) Filter(filters ...NodeFilter) []*Node {
	result := make([]*Node, 0)
	nb.Walk(func(n *Node) error {
		for _, f := range filters {
			if !f(n) {
				return nil
			}
		}
		result = append(result, n)
		return nil
	})
	return result
}

func IsContent(n *Node) bool {
	return n.kind == ContentKind
}

func IsFolder(n *Node) bool {
	return n.kind == FolderKind
}

// NotInTrash matches nodes outside of the trash.
func NotInTrash(n *Node) bool {
	return !n.InTrash()
}

// MatchTitle matches nodes whose title contains s (case-insensitive).
func MatchTitle(s string) NodeFilter {
	s = strings.ToLower(s)
	return func(n *Node) bool {
		return strings.Contains(strings.ToLower(n.title), s)
	}
}

// MatchPath matches the slash separated title path of a node against
// a glob pattern. Supports "**" for any number of path elements.
// An invalid pattern matches nothing.
func MatchPath(pattern string) NodeFilter {
	pattern = strings.TrimPrefix(pattern, "/")
	return func(n *Node) bool {
		ok, err := doublestar.Match(pattern, strings.Join(n.Path(), "/"))
		return err == nil && ok
	}
}

// ValidPattern tells if the pattern can be used with MatchPath.
func ValidPattern(pattern string) bool {
	return doublestar.ValidatePattern(strings.TrimPrefix(pattern, "/"))
}

// DisplaySort is a comparison function to order sibling nodes for display:
// folders before content, by title (case-insensitive), and the trash last.
func DisplaySort(one, other *Node) bool {
	// tell if  one <  other
	// special case - Trash goes last
	if one.kind == TrashKind {
		return false
	} else if other.kind == TrashKind {
		return true
	}

	// folders before content
	if one.kind == ContentKind && other.kind != ContentKind {
		return false
	} else if other.kind == ContentKind && one.kind != ContentKind {
		return true
	}

	// explicit order
	if one.order != other.order {
		return one.order < other.order
	}

	// special case, equal titles, fall back on ID
	if strings.EqualFold(one.title, other.title) {
		return one.id < other.id
	}

	return strings.ToLower(one.title) < strings.ToLower(other.title)
}

// SortedChildren returns the children of n ordered by the given comparison.
// The order within the tree is not changed.
func SortedChildren(n *Node, compare func(*Node, *Node) bool) []*Node {
	c := n.Children()
	sort.SliceStable(c, func(i, j int) bool {
		return compare(c[i], c[j])
	})
	return c
}
