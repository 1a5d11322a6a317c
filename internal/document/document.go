// Package document holds the in-memory model of a document body: an ordered,
// mutable sequence of block-level content units. Units carry a stable opaque
// identity so that references survive insertions and removals; positions are
// resolved on demand and are never valid across a mutation.
package document

import "strings"

// Tag is the structural role assigned to a unit by the classifier.
type Tag string

const (
	TagUnknown   Tag = ""
	TagHeading   Tag = "heading"
	TagParagraph Tag = "paragraph"
	TagList      Tag = "list"
	TagEmpty     Tag = "empty"
	TagOther     Tag = "other"
)

// KnownTag reports whether s names a classifier tag.
func KnownTag(s string) bool {
	switch Tag(s) {
	case TagHeading, TagParagraph, TagList, TagEmpty, TagOther:
		return true
	}
	return false
}

// ListInfo is the numbering metadata of a list-item unit.
type ListInfo struct {
	NumID string // Numbering definition ID; same ID = same list.
	Level int    // 0-based indent level (0 when the source omits it).
}

// UnitID identifies a unit for the lifetime of its document.
type UnitID uint64

// ContentUnit is one block-level node of the document body.
type ContentUnit struct {
	ID        UnitID
	Text      string    // Concatenated raw text of the unit.
	Kind      string    // Container element kind ("p", "tbl", "sectPr", ...); "" when unknown.
	List      *ListInfo // nil when the unit carries no numbering.
	Tag       Tag       // Set by the classifier; TagUnknown until then.
	Synthetic bool      // True for forced-break units inserted by the reflow engine.

	// Source is an opaque handle for the container that produced the unit
	// (the docx store uses it to locate the original element on save).
	Source any
}

// IsEmpty reports whether the unit has no visible text.
func (u *ContentUnit) IsEmpty() bool {
	return strings.TrimSpace(u.Text) == ""
}

// ParagraphLike reports whether the unit is a plain paragraph element.
// Spacing passes only insert and collapse around these; section properties
// and tables are never touched. Units without container metadata count as
// paragraphs.
func (u *ContentUnit) ParagraphLike() bool {
	return u.Kind == "p" || u.Kind == ""
}

// Document is an ordered sequence of content units in reading order.
type Document struct {
	units  []*ContentUnit
	nextID UnitID
	gen    uint64
}

// New builds a document from units in reading order, assigning IDs to any
// unit that does not have one yet. The slice is copied; mutations never
// touch the caller's backing array.
func New(units []*ContentUnit) *Document {
	units = append([]*ContentUnit(nil), units...)
	d := &Document{units: units, nextID: 1}
	for _, u := range units {
		if u.ID == 0 {
			u.ID = d.nextID
		}
		if u.ID >= d.nextID {
			d.nextID = u.ID + 1
		}
	}
	return d
}

// Units returns the live unit sequence. The slice must not be retained
// across mutations.
func (d *Document) Units() []*ContentUnit { return d.units }

// Len returns the number of units.
func (d *Document) Len() int { return len(d.units) }

// Generation increments on every mutation. Callers that cache positions can
// compare generations to detect staleness.
func (d *Document) Generation() uint64 { return d.gen }

// Index resolves a unit to its current position, or -1 if the unit is not
// (or no longer) part of the document.
func (d *Document) Index(u *ContentUnit) int {
	for i, cand := range d.units {
		if cand == u {
			return i
		}
	}
	return -1
}

// NewUnit allocates a unit owned by this document.
func (d *Document) NewUnit(text string) *ContentUnit {
	u := &ContentUnit{ID: d.nextID, Text: text}
	d.nextID++
	return u
}

// NewBreak allocates a synthetic blank unit (a forced page-filler).
func (d *Document) NewBreak() *ContentUnit {
	u := d.NewUnit("")
	u.Synthetic = true
	u.Tag = TagEmpty
	return u
}

// InsertBefore places unit immediately before target. If target is not in
// the document the unit is appended. Every later position shifts; cached
// indices are invalid afterwards.
func (d *Document) InsertBefore(target, unit *ContentUnit) {
	d.gen++
	i := d.Index(target)
	if i < 0 {
		d.units = append(d.units, unit)
		return
	}
	d.units = append(d.units, nil)
	copy(d.units[i+1:], d.units[i:])
	d.units[i] = unit
}

// Remove deletes the unit from the document. Removing an absent unit is a
// no-op. Cached indices are invalid afterwards.
func (d *Document) Remove(unit *ContentUnit) {
	i := d.Index(unit)
	if i < 0 {
		return
	}
	d.gen++
	d.units = append(d.units[:i], d.units[i+1:]...)
}
