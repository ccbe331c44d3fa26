package document

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// EncodeXML renders t as XML. t must hold exactly one key (the root element).
// Lists become repeated sibling elements; nil values are omitted.
func EncodeXML(t *Tree) ([]byte, error) {
	if t.Len() != 1 {
		return nil, fmt.Errorf("encode xml: document needs exactly one root element, got %d", t.Len())
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	root := t.keys[0]
	if err := writeXMLElement(enc, root, t.vals[root]); err != nil {
		return nil, fmt.Errorf("encode xml: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("encode xml: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func writeXMLElement(enc *xml.Encoder, name string, v any) error {
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		for _, e := range x {
			if err := writeXMLElement(enc, name, e); err != nil {
				return err
			}
		}
		return nil
	}

	start := xml.StartElement{Name: xml.Name{Local: name}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if sub, ok := v.(*Tree); ok {
		for _, k := range sub.keys {
			if err := writeXMLElement(enc, k, sub.vals[k]); err != nil {
				return err
			}
		}
	} else if text := scalarText(v); text != "" {
		if err := enc.EncodeToken(xml.CharData(text)); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// DecodeXML parses XML into a Tree holding the root element. Text content is
// kept as strings; repeated sibling elements become lists. Attributes are ignored.
func DecodeXML(data []byte) (*Tree, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("decode xml: no root element")
			}
			return nil, fmt.Errorf("decode xml: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			v, err := readXMLElement(dec)
			if err != nil {
				return nil, fmt.Errorf("decode xml: %s: %w", start.Name.Local, err)
			}
			t := New()
			t.Set(start.Name.Local, v)
			return t, nil
		}
	}
}

func readXMLElement(dec *xml.Decoder) (any, error) {
	var text strings.Builder
	var children *Tree
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch x := tok.(type) {
		case xml.CharData:
			text.Write(x)
		case xml.StartElement:
			v, err := readXMLElement(dec)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", x.Name.Local, err)
			}
			if children == nil {
				children = New()
			}
			name := x.Name.Local
			if prev, ok := children.Get(name); ok {
				if list, isList := prev.([]any); isList {
					children.Set(name, append(list, v))
				} else {
					children.Set(name, []any{prev, v})
				}
			} else {
				children.Set(name, v)
			}
		case xml.EndElement:
			if children != nil {
				return children, nil
			}
			return text.String(), nil
		}
	}
}
