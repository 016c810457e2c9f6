package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	nb "github.com/akeil/notebook"
)

// commit writes pending changes and prints a failure.
func commit(book *nb.Notebook) (*nb.SyncReport, error) {
	report, err := book.Sync()
	if err != nil {
		fmt.Printf("%v Failed to save changes: %v\n", crossmark, err)
		return nil, err
	}
	return report, nil
}

func doMkdir(s settings, path string) error {
	book, closer, err := openNotebook(s)
	if err != nil {
		return err
	}
	defer closer()

	parent, name, err := findDst(book, path)
	if err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("%q already exists", path)
	}

	_, err = book.CreateFolder(parent, name)
	if err != nil {
		return err
	}
	_, err = commit(book)
	if err != nil {
		return err
	}
	fmt.Printf("%v Created folder %q\n", checkmark, path)
	return nil
}

func guessContentType(name string) string {
	ct := mime.TypeByExtension(filepath.Ext(name))
	if ct == "" {
		return "application/octet-stream"
	}
	// strip parameters like "; charset=utf-8"
	return strings.TrimSpace(strings.SplitN(ct, ";", 2)[0])
}

func doAdd(s settings, paths []string, contentType string) error {
	src, dst, err := normalizeSrcDst(paths)
	if err != nil {
		return err
	}
	if len(src) == 0 {
		return fmt.Errorf("no source file(s) specified")
	}

	book, closer, err := openNotebook(s)
	if err != nil {
		return err
	}
	defer closer()

	parent := book.Root()
	var title string
	if dst != "" {
		parent, title, err = findDst(book, dst)
		if err != nil {
			return err
		}
		if title == "" && parent.IsContent() {
			return fmt.Errorf("%q is not a folder", dst)
		}
	}
	// a title can only name a single node
	if len(src) > 1 && title != "" {
		return fmt.Errorf("cannot add multiple files as a single node")
	}

	for _, path := range src {
		fmt.Printf("%v add %q\n", ellipsis, path)
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		name := filepath.Base(path)
		ct := contentType
		if ct == "" {
			ct = guessContentType(name)
		}
		t := title
		if t == "" {
			t = titleFromFilename(path)
		}
		_, err = book.CreateContent(parent, t, ct, name, data)
		if err != nil {
			return err
		}
	}

	report, err := commit(book)
	if err != nil {
		return err
	}
	fmt.Printf("%v Added %d node(s)\n", checkmark, len(report.Created))
	return nil
}

func doAttach(s settings, path string, files []string, makeMain bool) error {
	book, closer, err := openNotebook(s)
	if err != nil {
		return err
	}
	defer closer()

	n, err := findNode(book, path)
	if err != nil {
		return err
	}
	if !n.IsContent() {
		return fmt.Errorf("%q is not a content node", path)
	}

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		err = n.SetPayload(filepath.Base(f), data)
		if err != nil {
			return err
		}
	}
	if makeMain && len(files) > 0 {
		err = n.SetMainPayloadName(filepath.Base(files[0]))
		if err != nil {
			return err
		}
	}

	_, err = commit(book)
	if err != nil {
		return err
	}
	fmt.Printf("%v Attached %d file(s) to %q\n", checkmark, len(files), path)
	return nil
}

func doMv(s settings, src, dst string) error {
	book, closer, err := openNotebook(s)
	if err != nil {
		return err
	}
	defer closer()

	n, err := findNode(book, src)
	if err != nil {
		return err
	}
	parent, title, err := findDst(book, dst)
	if err != nil {
		return err
	}
	if title == "" && parent.IsContent() {
		return fmt.Errorf("%q is not a folder", dst)
	}

	if parent != n.Parent() {
		err = book.Move(n, parent, nil)
		if err != nil {
			return err
		}
	}
	if title != "" {
		err = n.SetTitle(title)
		if err != nil {
			return err
		}
	}

	_, err = commit(book)
	if err != nil {
		return err
	}
	fmt.Printf("%v Moved %q to %q\n", checkmark, src, dst)
	return nil
}

func doRm(s settings, paths []string, force bool) error {
	book, closer, err := openNotebook(s)
	if err != nil {
		return err
	}
	defer closer()

	nodes := make([]*nb.Node, 0, len(paths))
	trashed := make([]bool, 0, len(paths))
	for _, p := range paths {
		n, err := findNode(book, p)
		if err != nil {
			return err
		}
		nodes = append(nodes, n)
		trashed = append(trashed, n.InTrash())
	}

	for i, n := range nodes {
		// an earlier node may have contained this one
		if n.IsDeleted() {
			continue
		}
		if force || trashed[i] {
			err = book.Delete(n)
		} else {
			err = book.MoveToTrash(n)
		}
		if err != nil {
			fmt.Printf("%v Failed to remove %q: %v\n", crossmark, paths[i], err)
			return err
		}
	}

	report, err := commit(book)
	if err != nil {
		return err
	}
	if len(report.Removed) > 0 {
		fmt.Printf("%v Deleted %d node(s)\n", checkmark, len(report.Removed))
	}
	if len(report.Updated) > 0 {
		fmt.Printf("%v Moved %d node(s) to the trash\n", checkmark, len(report.Updated))
	}
	return nil
}
