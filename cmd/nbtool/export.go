package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	nb "github.com/akeil/notebook"
	"github.com/akeil/notebook/pkg/render"
)

func doExport(s settings, match, outDir, pageSize string, gray bool) error {
	if !nb.ValidPattern(match) {
		return fmt.Errorf("invalid pattern %q", match)
	}

	book, closer, err := openNotebook(s)
	if err != nil {
		return err
	}
	defer closer()

	nodes := exportRoots(book.Filter(nb.MatchPath(match)))
	if len(nodes) == 0 {
		fmt.Printf("No matching nodes for %q\n", match)
		return nil
	}

	// Collecting reads from the notebook and must not run concurrently.
	docs := make([]*render.Document, len(nodes))
	for i, n := range nodes {
		fmt.Printf("%v read %q\n", ellipsis, n.Title())
		docs[i], err = render.Collect(n)
		if err != nil {
			fmt.Printf("%v Failed to read %q: %v\n", crossmark, n.Title(), err)
			return err
		}
	}

	opts := render.DefaultOptions()
	opts.PageSize = pageSize
	opts.Gray = gray

	names := outputNames(nodes)
	var group errgroup.Group
	for i := range docs {
		doc := docs[i] // scope
		path := filepath.Join(outDir, names[i])
		group.Go(func() error {
			return renderPdf(doc, path, opts)
		})
	}
	return group.Wait()
}

func renderPdf(doc *render.Document, path string, opts render.Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Printf("%v render %q\n", ellipsis, doc.Title)
	err = render.PDF(doc, f, opts)
	if err != nil {
		fmt.Printf("%v Failed to render %q: %v\n", crossmark, doc.Title, err)
		return err
	}

	fmt.Printf("%v %q saved as %q.\n", checkmark, doc.Title, path)
	return nil
}

// exportRoots drops nodes that are already contained in the subtree of
// another matching node.
func exportRoots(nodes []*nb.Node) []*nb.Node {
	matched := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		matched[n.ID()] = true
	}

	roots := make([]*nb.Node, 0, len(nodes))
outer:
	for _, n := range nodes {
		for _, a := range n.Ancestors() {
			if matched[a.ID()] {
				continue outer
			}
		}
		roots = append(roots, n)
	}
	return roots
}

var unsafeChars = strings.NewReplacer("/", "-", "\\", "-", ":", "-", "\x00", "")

// outputNames creates a unique file name for each node.
func outputNames(nodes []*nb.Node) []string {
	names := make([]string, len(nodes))
	seen := make(map[string]int)
	for i, n := range nodes {
		base := strings.TrimSpace(unsafeChars.Replace(n.Title()))
		if base == "" || base == "." || base == ".." {
			base = n.ID()
		}
		seen[strings.ToLower(base)]++
		if c := seen[strings.ToLower(base)]; c > 1 {
			base = fmt.Sprintf("%v (%d)", base, c)
		}
		names[i] = base + ".pdf"
	}
	return names
}
