package render

import (
	"path"
	"strings"
	"time"

	nb "github.com/akeil/notebook"
	"github.com/akeil/notebook/internal/logging"
)

// Document holds everything needed to render a subtree.
// It is collected from the notebook up front so that rendering
// does not touch the notebook or its storage.
type Document struct {
	Title    string
	Modified time.Time
	Sections []Section
}

// Section is a single node of the exported subtree.
type Section struct {
	ID     string
	Title  string
	Level  int
	Folder bool
	Text   string
	Images []Image
}

// Image is the raw data of an image payload.
type Image struct {
	Name string
	Data []byte
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// IsImage tells if a payload with the given name is rendered as an image.
func IsImage(name string) bool {
	return imageExtensions[strings.ToLower(path.Ext(name))]
}

// IsText tells if a content node is rendered as text.
func IsText(contentType, name string) bool {
	if strings.HasPrefix(contentType, "text/") {
		return true
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".txt", ".md", ".html", ".htm":
		return true
	}
	return false
}

// Collect reads the subtree below n including the payloads it needs.
// The trash is skipped unless n itself is in the trash.
func Collect(n *nb.Node) (*Document, error) {
	doc := &Document{
		Title:    n.Title(),
		Modified: n.Modified(),
		Sections: make([]Section, 0),
	}
	base := n.Depth()
	inTrash := n.InTrash()

	err := n.Walk(func(x *nb.Node) error {
		if x.IsTrash() && !inTrash {
			return nb.SkipChildren
		}
		if x.Modified().After(doc.Modified) {
			doc.Modified = x.Modified()
		}

		s := Section{
			ID:     x.ID(),
			Title:  x.Title(),
			Level:  x.Depth() - base,
			Folder: !x.IsContent(),
		}
		if x.IsContent() {
			err := collectPayloads(x, &s)
			if err != nil {
				return err
			}
		}
		doc.Sections = append(doc.Sections, s)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Debug("Collected %d sections for %q", len(doc.Sections), n.ID())
	return doc, nil
}

func collectPayloads(n *nb.Node, s *Section) error {
	for _, name := range n.PayloadNames() {
		isMain := name == n.MainPayloadName()
		switch {
		case isMain && IsText(n.ContentType(), name):
			data, err := n.Payload(name)
			if err != nil {
				return err
			}
			s.Text = PlainText(name, string(data))
		case IsImage(name):
			data, err := n.Payload(name)
			if err != nil {
				return err
			}
			s.Images = append(s.Images, Image{Name: name, Data: data})
		default:
			logging.Debug("Skip payload %q of node %q", name, n.ID())
		}
	}
	return nil
}
