package main

import (
	"fmt"
	"strconv"
	"strings"

	nb "github.com/akeil/notebook"
)

func doPrefs(s settings, key, value string, del bool) error {
	book, closer, err := openNotebook(s)
	if err != nil {
		return err
	}
	defer closer()
	p := book.Preferences()

	if key == "" {
		showPrefs(p, "")
		return nil
	}

	parts := strings.Split(key, ".")
	name := parts[len(parts)-1]
	sections := parts[:len(parts)-1]

	if value == "" && !del {
		sec, ok := lookupSection(p, sections)
		if !ok {
			return fmt.Errorf("no preference %q", key)
		}
		v, ok := sec.Get(name)
		if !ok {
			return fmt.Errorf("no preference %q", key)
		}
		fmt.Println(v)
		return nil
	}

	if del {
		sec, ok := lookupSection(p, sections)
		if !ok {
			return fmt.Errorf("no preference %q", key)
		}
		sec.Delete(name)
	} else {
		sec := p
		for _, s := range sections {
			sec = sec.Section(s)
		}
		sec.Set(name, parseValue(value))
	}

	if !p.IsDirty() {
		fmt.Println("Nothing changed.")
		return nil
	}
	err = book.SavePreferences()
	if err != nil {
		return err
	}
	fmt.Printf("%v Saved preferences\n", checkmark)
	return nil
}

// lookupSection finds a nested section without creating it.
func lookupSection(p *nb.Preferences, names []string) (*nb.Preferences, bool) {
	for _, name := range names {
		if !p.HasSection(name) {
			return nil, false
		}
		p = p.Section(name)
	}
	return p, true
}

// parseValue guesses the type of a value given on the command line.
func parseValue(s string) interface{} {
	// ParseBool would also take "1" and "0"
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func showPrefs(p *nb.Preferences, prefix string) {
	for _, k := range p.Keys() {
		v, _ := p.Get(k)
		fmt.Printf("%v%v = %v\n", prefix, k, v)
	}
	for _, name := range p.Sections() {
		showPrefs(p.Section(name), prefix+name+".")
	}
}
