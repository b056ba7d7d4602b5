package xmlflat

import (
	"encoding/xml"
	"errors"
	"io"
	"sort"
	"strings"
)

// ErrNoRootElement reports a document with no element content at all.
var ErrNoRootElement = errors.New("xml document has no root element")

type frame struct {
	path        string
	hasChildren bool
	text        strings.Builder
}

// Flatten parses the XML document in r and returns a flat record of dotted
// element paths to values.
//
// Keys use namespace-stripped local names joined with dots, starting at the
// root element. Attributes emit under "<path>.@<name>". Element text is the
// character data before the element's first child, trimmed; empty text emits
// nothing. When two entries produce the same key the later one wins.
func Flatten(r io.Reader) (map[string]string, error) {
	decoder := xml.NewDecoder(r)

	out := make(map[string]string)
	var stack []*frame
	sawRoot := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			sawRoot = true
			path := t.Name.Local
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.hasChildren = true
				path = parent.path + "." + t.Name.Local
			}
			for _, attr := range t.Attr {
				if attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns" {
					continue
				}
				out[path+".@"+attr.Name.Local] = attr.Value
			}
			stack = append(stack, &frame{path: path})

		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if text := strings.TrimSpace(top.text.String()); text != "" {
				out[top.path] = text
			}

		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			if !top.hasChildren {
				top.text.Write(t)
			}
		}
	}

	if !sawRoot {
		return nil, ErrNoRootElement
	}
	return out, nil
}

// Paths parses the XML document in r and returns its distinct element paths,
// sorted. Attribute keys and text values are not considered; each path appears
// once regardless of how many elements share it.
func Paths(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	seen := make(map[string]struct{})
	var stack []string
	sawRoot := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			sawRoot = true
			path := t.Name.Local
			if len(stack) > 0 {
				path = stack[len(stack)-1] + "." + t.Name.Local
			}
			seen[path] = struct{}{}
			stack = append(stack, path)

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if !sawRoot {
		return nil, ErrNoRootElement
	}

	paths := make([]string, 0, len(seen))
	for path := range seen {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}
