package main

import (
	"fmt"
	"os"
)

func doCat(s settings, path, payload string) error {
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

	if payload == "" {
		payload = n.MainPayloadName()
	}
	data, err := n.Payload(payload)
	if err != nil {
		return err
	}

	_, err = os.Stdout.Write(data)
	return err
}
