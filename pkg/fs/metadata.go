package fs

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"

	nb "github.com/akeil/notebook"
)

// nodeDocument is the content of a node.xml file.
//
//	<node>
//	  <id>...</id>
//	  <content-type>text/html</content-type>
//	  <attributes>
//	    <attribute key="title">Page</attribute>
//	  </attributes>
//	  <payloads>
//	    <payload name="index.html" md5="..."/>
//	  </payloads>
//	</node>
//
// Pointer fields are used to tell missing elements from empty ones.
type nodeDocument struct {
	XMLName     xml.Name       `xml:"node"`
	ID          *string        `xml:"id"`
	ContentType *string        `xml:"content-type"`
	Attributes  *attributeList `xml:"attributes"`
	Payloads    *payloadList   `xml:"payloads"`
}

// notebookDocument is the content of the notebook.xml file.
type notebookDocument struct {
	XMLName    xml.Name       `xml:"notebook"`
	Attributes *attributeList `xml:"attributes"`
}

type attributeList struct {
	Items []attribute `xml:"attribute"`
}

type attribute struct {
	Key   *string `xml:"key,attr"`
	Value string  `xml:",chardata"`
}

type payloadList struct {
	Items []payload `xml:"payload"`
}

type payload struct {
	Name *string `xml:"name,attr"`
	MD5  string  `xml:"md5,attr"`
}

func newNodeDocument(sn nb.StoredNode) *nodeDocument {
	id := sn.ID
	ct := sn.ContentType
	doc := &nodeDocument{
		ID:          &id,
		ContentType: &ct,
		Attributes:  newAttributeList(sn.Attributes),
		Payloads:    &payloadList{Items: make([]payload, len(sn.Payloads))},
	}
	for i, p := range sn.Payloads {
		name := p.Name
		doc.Payloads.Items[i] = payload{Name: &name, MD5: p.MD5}
	}
	return doc
}

func newAttributeList(attrs map[string]string) *attributeList {
	l := &attributeList{Items: make([]attribute, 0, len(attrs))}
	for _, k := range sortedKeys(attrs) {
		key := k
		l.Items = append(l.Items, attribute{Key: &key, Value: attrs[k]})
	}
	return l
}

func (l *attributeList) toMap(path string) (map[string]string, error) {
	m := make(map[string]string, len(l.Items))
	for _, a := range l.Items {
		if a.Key == nil {
			return nil, nb.NewParseError(path, "attribute without key")
		}
		m[*a.Key] = a.Value
	}
	return m, nil
}

// toStored validates the document and converts it to a stored node.
func (d *nodeDocument) toStored(path string) (nb.StoredNode, error) {
	var sn nb.StoredNode
	if d.ID == nil {
		return sn, nb.NewParseError(path, "missing element <id>")
	}
	if d.ContentType == nil {
		return sn, nb.NewParseError(path, "missing element <content-type>")
	}
	if d.Attributes == nil {
		return sn, nb.NewParseError(path, "missing element <attributes>")
	}
	if d.Payloads == nil {
		return sn, nb.NewParseError(path, "missing element <payloads>")
	}

	attrs, err := d.Attributes.toMap(path)
	if err != nil {
		return sn, err
	}

	sn = nb.StoredNode{
		ID:          *d.ID,
		ContentType: *d.ContentType,
		Attributes:  attrs,
		Payloads:    make([]nb.StoredPayload, len(d.Payloads.Items)),
	}
	for i, p := range d.Payloads.Items {
		if p.Name == nil {
			return nb.StoredNode{}, nb.NewParseError(path, "payload without name")
		}
		sn.Payloads[i] = nb.StoredPayload{Name: *p.Name, MD5: p.MD5}
	}
	return sn, nil
}

func (d *notebookDocument) toStored(path string) (nb.StoredNotebook, error) {
	if d.Attributes == nil {
		return nb.StoredNotebook{}, nb.NewParseError(path, "missing element <attributes>")
	}
	attrs, err := d.Attributes.toMap(path)
	if err != nil {
		return nb.StoredNotebook{}, err
	}
	return nb.StoredNotebook{Attributes: attrs}, nil
}

func readXML(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return decodeXML(path, bytes.NewReader(data), v)
}

func decodeXML(path string, r io.Reader, v interface{}) error {
	err := xml.NewDecoder(r).Decode(v)
	if err != nil {
		return nb.NewParseError(path, "%v", err)
	}
	return nil
}

func encodeXML(w io.Writer, v interface{}) error {
	_, err := io.WriteString(w, xml.Header)
	if err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	err = enc.Encode(v)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
