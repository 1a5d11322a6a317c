package docxfile

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/tamzidan/docreflow/internal/document"
)

// bodyElem is one top-level child of <w:body>, addressed by its byte range
// in word/document.xml.
type bodyElem struct {
	start int64
	end   int64
	kind  string // Element local name: "p", "tbl", "sectPr", ...
	text  string
	list  *document.ListInfo
}

// bodyLayout locates the body content within document.xml.
type bodyLayout struct {
	contentStart int64 // Offset just past the <w:body> start tag.
	contentEnd   int64 // Offset of the </w:body> end tag.
	elements     []*bodyElem
}

// parseBody tokenizes document.xml and records the byte range of every
// top-level body element. Decoder.InputOffset marks the boundary between the
// previous token and the next, which is exactly an element's first byte when
// sampled before reading its start tag.
func parseBody(data []byte) (bodyLayout, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var layout bodyLayout
	inBody := false
	sawBody := false

	for {
		start := dec.InputOffset()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return bodyLayout{}, &FormatError{Part: documentPart, Reason: err.Error()}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !inBody {
				if t.Name.Local == "body" {
					inBody = true
					sawBody = true
					layout.contentStart = dec.InputOffset()
				}
				continue
			}
			// Direct child of the body: consume it whole and record the range.
			if err := dec.Skip(); err != nil {
				return bodyLayout{}, &FormatError{Part: documentPart, Reason: err.Error()}
			}
			el := &bodyElem{start: start, end: dec.InputOffset(), kind: t.Name.Local}
			el.text, el.list = parseElement(data[el.start:el.end])
			layout.elements = append(layout.elements, el)
		case xml.EndElement:
			if inBody && t.Name.Local == "body" {
				inBody = false
				layout.contentEnd = start
			}
		}
	}

	if !sawBody {
		return bodyLayout{}, &FormatError{Part: documentPart, Reason: "no body element"}
	}
	if layout.contentEnd == 0 {
		return bodyLayout{}, &FormatError{Part: documentPart, Reason: "unterminated body element"}
	}
	return layout, nil
}

// parseElement walks one element's tokens, concatenating every <w:t> text
// node (tables included) and capturing the first <w:numPr> it sees, which is
// the paragraph's own numbering.
func parseElement(raw []byte) (string, *document.ListInfo) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	var sb strings.Builder
	var list *document.ListInfo
	textDepth := 0
	numDepth := 0
	sawNum := false

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				textDepth++
			case "numPr":
				if !sawNum {
					sawNum = true
					numDepth = 1
					list = &document.ListInfo{}
				}
			case "ilvl":
				if numDepth > 0 {
					if v, err := strconv.Atoi(attrVal(t, "val")); err == nil {
						list.Level = v
					}
				}
			case "numId":
				if numDepth > 0 {
					list.NumID = attrVal(t, "val")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				if textDepth > 0 {
					textDepth--
				}
			case "numPr":
				if numDepth > 0 {
					numDepth--
				}
			}
		case xml.CharData:
			if textDepth > 0 {
				sb.Write(t)
			}
		}
	}
	return sb.String(), list
}

func attrVal(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
