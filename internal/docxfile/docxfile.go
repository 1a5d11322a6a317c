// Package docxfile reads and writes DOCX containers for the reflow pipeline.
//
// The body of word/document.xml is tokenized into byte ranges, one per
// top-level element, and exposed as a mutable document.Document. On save,
// untouched elements are copied verbatim from the original bytes and every
// other zip entry is copied byte-for-byte, so everything the pipeline does
// not model survives the round trip unchanged. A run with no mutations
// writes the input bytes back identically.
package docxfile

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/tamzidan/docreflow/internal/document"
)

const documentPart = "word/document.xml"

// emptyParagraph is the forced-break element inserted for synthetic units.
// The spacing properties match what the surrounding paragraphs typically
// carry so the break costs a single line.
const emptyParagraph = `<w:p><w:pPr><w:spacing w:line="276" w:lineRule="auto"/></w:pPr><w:r></w:r></w:p>`

// FormatError reports a container that is missing expected structure.
type FormatError struct {
	Part   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("docx format: %s: %s", e.Part, e.Reason)
}

// entry is one zip member, held raw.
type entry struct {
	name string
	data []byte
}

// File is an open DOCX container plus the parsed body.
type File struct {
	raw     []byte
	entries []entry
	docIdx  int

	body bodyLayout
	doc  *document.Document
}

// OpenBytes parses a DOCX container held in memory.
func OpenBytes(data []byte) (*File, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx container: %w", err)
	}

	f := &File{raw: data, docIdx: -1}
	for _, zf := range zr.File {
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", zf.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", zf.Name, err)
		}
		if zf.Name == documentPart {
			f.docIdx = len(f.entries)
		}
		f.entries = append(f.entries, entry{name: zf.Name, data: content})
	}
	if f.docIdx < 0 {
		return nil, &FormatError{Part: documentPart, Reason: "missing"}
	}

	layout, err := parseBody(f.entries[f.docIdx].data)
	if err != nil {
		return nil, err
	}
	f.body = layout

	units := make([]*document.ContentUnit, len(layout.elements))
	for i, el := range layout.elements {
		units[i] = &document.ContentUnit{
			Text:   el.text,
			Kind:   el.kind,
			List:   el.list,
			Source: el,
		}
	}
	f.doc = document.New(units)
	return f, nil
}

// Open parses a DOCX container from a reader. The content is buffered whole;
// saving needs the original bytes.
func Open(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read container: %w", err)
	}
	return OpenBytes(data)
}

// OpenFile parses a DOCX container from disk.
func OpenFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return OpenBytes(data)
}

// Document returns the mutable body. Mutations made through it are applied
// on Save.
func (f *File) Document() *document.Document { return f.doc }

// Save writes the container. With no mutations the original bytes stream
// through untouched; otherwise only word/document.xml is rewritten, by
// splicing element byte ranges in the document's current order.
func (f *File) Save(w io.Writer) error {
	if f.doc.Generation() == 0 {
		_, err := w.Write(f.raw)
		return err
	}

	docXML, err := f.spliceBody()
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	for i, e := range f.entries {
		fw, err := zw.Create(e.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", e.name, err)
		}
		content := e.data
		if i == f.docIdx {
			content = docXML
		}
		if _, err := fw.Write(content); err != nil {
			return fmt.Errorf("write %s: %w", e.name, err)
		}
	}
	return zw.Close()
}

// Bytes renders the container to memory.
func (f *File) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// spliceBody rebuilds document.xml: the prologue and epilogue around the
// body content are kept verbatim, and each unit contributes either its
// original byte range or, for synthetic units, the forced-break element.
func (f *File) spliceBody() ([]byte, error) {
	src := f.entries[f.docIdx].data
	var out bytes.Buffer
	out.Grow(len(src) + 256)
	out.Write(src[:f.body.contentStart])
	for _, u := range f.doc.Units() {
		if u.Source == nil {
			if !u.Synthetic {
				return nil, fmt.Errorf("unit %d has no container element", u.ID)
			}
			out.WriteString(emptyParagraph)
			continue
		}
		el, ok := u.Source.(*bodyElem)
		if !ok {
			return nil, fmt.Errorf("unit %d has foreign source %T", u.ID, u.Source)
		}
		out.Write(src[el.start:el.end])
	}
	out.Write(src[f.body.contentEnd:])
	return out.Bytes(), nil
}
