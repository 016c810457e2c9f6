package main

import (
	"fmt"
	"strings"

	nb "github.com/akeil/notebook"
)

func doLs(s settings, format, match string, showTrash bool) error {
	book, closer, err := openNotebook(s)
	if err != nil {
		return err
	}
	defer closer()

	if match != "" && !nb.ValidPattern(match) {
		return fmt.Errorf("invalid pattern %q", match)
	}

	keep := func(n *nb.Node) bool {
		if !showTrash && n.InTrash() {
			return false
		}
		return match == "" || nb.MatchPath(match)(n)
	}

	// a node is shown if it matches or has a matching descendant
	visible := make(map[string]bool)
	book.Walk(func(n *nb.Node) error {
		if n.IsRoot() || !keep(n) {
			return nil
		}
		visible[n.ID()] = true
		for _, a := range n.Ancestors() {
			visible[a.ID()] = true
		}
		return nil
	})

	if len(visible) == 0 {
		fmt.Println("Found no matching nodes.")
		return nil
	}

	switch format {
	case "tree":
		showTree(book.Root(), 0, visible)
	case "list":
		showList(book.Root(), visible)
	default:
		return fmt.Errorf("unsupported format, choose one of 'tree', 'list'")
	}

	return nil
}

func marker(n *nb.Node) string {
	switch {
	case n.IsTrash():
		return "t"
	case n.IsContent():
		return " "
	default:
		return "d"
	}
}

func showList(root *nb.Node, visible map[string]bool) {
	dateFormat := "Jan 02 2006, 15:04"

	var show func(n *nb.Node)
	show = func(n *nb.Node) {
		if !n.IsRoot() {
			fmt.Print(marker(n))
			fmt.Print(" ")
			fmt.Print(n.Modified().Local().Format(dateFormat))
			fmt.Print(" | ")
			fmt.Print("/" + strings.Join(n.Path(), "/"))
			fmt.Println()
		}
		for _, c := range nb.SortedChildren(n, nb.DisplaySort) {
			if visible[c.ID()] {
				show(c)
			}
		}
	}
	show(root)
}

func showTree(n *nb.Node, level int, visible map[string]bool) {
	if level > 0 {
		for i := 1; i < level; i++ {
			fmt.Print("  ")
		}

		if n.IsContent() {
			fmt.Print("- ")
		} else {
			fmt.Print("+ ")
		}

		fmt.Print(n.Title())
		if n.IsContent() && len(n.PayloadNames()) > 1 {
			fmt.Printf(" (%d)", len(n.PayloadNames()))
		}

		fmt.Println()
	}

	for _, c := range nb.SortedChildren(n, nb.DisplaySort) {
		if visible[c.ID()] {
			showTree(c, level+1, visible)
		}
	}
}

func doTrash(s settings, empty bool) error {
	book, closer, err := openNotebook(s)
	if err != nil {
		return err
	}
	defer closer()

	items := book.Trash().Children()
	if len(items) == 0 {
		fmt.Println("The trash is empty.")
		return nil
	}

	if !empty {
		visible := make(map[string]bool)
		book.Trash().Walk(func(n *nb.Node) error {
			visible[n.ID()] = true
			return nil
		})
		showTree(book.Trash(), 1, visible)
		return nil
	}

	for _, n := range items {
		err = book.Delete(n)
		if err != nil {
			return err
		}
	}
	report, err := book.Sync()
	if err != nil {
		return err
	}
	fmt.Printf("%v Deleted %d node(s) from the trash\n", checkmark, len(report.Removed))
	return nil
}
