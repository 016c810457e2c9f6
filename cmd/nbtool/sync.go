package main

import (
	"fmt"

	nb "github.com/akeil/notebook"
)

func doInit(s settings) error {
	st, closer, err := openStorage(s)
	if err != nil {
		return err
	}
	defer closer()

	existing, err := st.GetAllNodes()
	if err != nil {
		return err
	}
	if len(existing) != 0 {
		return fmt.Errorf("there is already a notebook at %q", s.Path)
	}

	book, err := nb.Open(st)
	if err != nil {
		return err
	}
	fmt.Printf("%v Created notebook at %q with root %q\n", checkmark, s.Path, book.Root().ID())
	return nil
}

func doSync(s settings) error {
	st, closer, err := openStorage(s)
	if err != nil {
		return err
	}
	defer closer()

	book := nb.New(st)
	fmt.Printf("%v sync %q\n", ellipsis, s.Path)
	report, err := book.Sync()
	if err != nil {
		fmt.Printf("%v Sync failed: %v\n", crossmark, err)
		return err
	}

	printReport(report)
	fmt.Printf("%v Notebook has %d node(s)\n", checkmark, book.Len())
	return nil
}

func printReport(r *nb.SyncReport) {
	if r.Empty() {
		fmt.Println("Nothing changed.")
		return
	}
	rows := []struct {
		label string
		ids   []string
	}{
		{"added", r.Added},
		{"created", r.Created},
		{"updated", r.Updated},
		{"removed", r.Removed},
	}
	for _, row := range rows {
		if len(row.ids) > 0 {
			fmt.Printf("  %-8v %d\n", row.label, len(row.ids))
		}
	}
	if r.Preferences {
		fmt.Println("  preferences saved")
	}
}
