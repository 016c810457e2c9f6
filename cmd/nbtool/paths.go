package main

import (
	"fmt"
	"path/filepath"
	"strings"

	nb "github.com/akeil/notebook"
)

// splitPath normalizes a node path:
//
//	/foo/bar  =>  foo, bar
//	foo/bar/  =>  foo, bar
//	foo//bar  =>  foo, bar
func splitPath(path string) []string {
	norm := make([]string, 0)
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			norm = append(norm, s)
		}
	}
	return norm
}

// lookup walks the tree from root, accepting the FIRST child whose title
// matches a path component (case-insensitive).
// Returns the deepest matching node and the path components that were
// not matched.
func lookup(root *nb.Node, path string) (*nb.Node, []string) {
	norm := splitPath(path)
	node := root
	var consumed int
	for _, name := range norm {
		var next *nb.Node
		for _, child := range nb.SortedChildren(node, nb.DisplaySort) {
			if strings.EqualFold(name, child.Title()) {
				next = child
				break
			}
		}
		if next == nil {
			break
		}
		node = next
		consumed++
	}
	return node, norm[consumed:]
}

// findNode returns the node with the exact path.
func findNode(book *nb.Notebook, path string) (*nb.Node, error) {
	n, unmatched := lookup(book.Root(), path)
	if len(unmatched) != 0 {
		return nil, fmt.Errorf("path %q does not exist", path)
	}
	return n, nil
}

// findDst determines a destination from a path.
//
// If the path matches a node exactly, that node is returned
// (the node can refer to a folder or a content node).
//
// If the path matches except the last component,
// the matching node is returned IF it is a folder
// and the last path component is returned as the new title.
func findDst(book *nb.Notebook, path string) (*nb.Node, string, error) {
	node, unmatched := lookup(book.Root(), path)
	switch len(unmatched) {
	case 0:
		return node, "", nil
	case 1:
		if !node.IsContent() {
			return node, unmatched[0], nil
		}
	}
	return nil, "", fmt.Errorf("destination path %q does not exist", path)
}

// Split a list of paths into a list of SRC's and a single DST.
// If the initial list contains less than two entries, DST is empty,
// otherwise, DST is the last element from the list.
// SRC's are expanded with filepath.Glob.
func normalizeSrcDst(paths []string) ([]string, string, error) {
	src := make([]string, 0)
	var dst string

	var temp []string
	if len(paths) == 0 {
		return src, dst, nil // empty
	} else if len(paths) == 1 {
		temp = paths
	} else { // > 1
		temp = paths[0 : len(paths)-1]
		dst = paths[len(paths)-1]
		if dst == "/" || dst == "." {
			dst = ""
		}
	}

	for _, s := range temp {
		matches, err := filepath.Glob(s)
		if err != nil {
			return nil, "", err
		}
		if len(matches) == 0 {
			return nil, "", fmt.Errorf("no such file: %q", s)
		}
		src = append(src, matches...)
	}

	return src, dst, nil
}

func titleFromFilename(path string) string {
	_, file := filepath.Split(path)
	ext := filepath.Ext(file)
	return strings.TrimSuffix(file, ext)
}
