package descriptor

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Declaration is one per-frame image block.
type Declaration struct {
	File string
	Tag  string
}

// FrameRef is one entry of the animation block.
type FrameRef struct {
	Tag      string
	Duration int
}

// Document is the structure recovered from a descriptor.
type Document struct {
	Declarations []Declaration
	Animations   []string
	Frames       []FrameRef
}

// Parse reads a descriptor leniently. The footer is opaque, so the document
// is not required to be well-formed; only frame declarations and animation
// frames are collected.
func Parse(text string) (*Document, error) {
	dec := xml.NewDecoder(strings.NewReader(text))
	dec.Strict = false

	doc := &Document{}
	var (
		current     *Declaration
		inAnimation int
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) || isTruncated(err) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing descriptor: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "images":
				if file := attr(el, "file"); file != "" {
					doc.Declarations = append(doc.Declarations, Declaration{File: file})
					current = &doc.Declarations[len(doc.Declarations)-1]
				}
			case "area":
				if current != nil && current.Tag == "" {
					current.Tag = attr(el, "name")
				}
			case "animation":
				inAnimation++
				doc.Animations = append(doc.Animations, attr(el, "name"))
			case "frame":
				if inAnimation > 0 {
					ref := FrameRef{Tag: attr(el, "ref")}
					if d := attr(el, "duration"); d != "" {
						n, err := strconv.Atoi(d)
						if err != nil {
							return nil, fmt.Errorf("frame %q has invalid duration %q: %w", ref.Tag, d, err)
						}
						ref.Duration = n
					}
					doc.Frames = append(doc.Frames, ref)
				}
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "images":
				current = nil
			case "animation":
				if inAnimation > 0 {
					inAnimation--
				}
			}
		}
	}

	return doc, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// isTruncated reports the error the decoder returns when input ends with
// elements still open, as it does for footers that close nothing.
func isTruncated(err error) bool {
	var syntaxErr *xml.SyntaxError
	return errors.As(err, &syntaxErr) && syntaxErr.Msg == "unexpected EOF"
}
