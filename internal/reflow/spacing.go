package reflow

import (
	"strings"
	"unicode"

	"github.com/tamzidan/docreflow/internal/classify"
	"github.com/tamzidan/docreflow/internal/document"
	"github.com/tamzidan/docreflow/internal/rules"
)

// Normalizer enforces a one-blank-line rhythm around qualifying units: a
// run of blank paragraphs after a full paragraph or a long-list tail
// collapses to a single blank, and a blank is inserted where one is missing.
type Normalizer struct {
	classifier *classify.Classifier
	minListRun int
}

// NewNormalizer builds a normalizer from the catalog.
func NewNormalizer(c *classify.Classifier, r rules.Rules) *Normalizer {
	return &Normalizer{classifier: c, minListRun: r.Reflow.MinListRun}
}

// Apply runs both passes: collapse first so insertion sees a clean rhythm.
func (n *Normalizer) Apply(doc *document.Document) {
	n.CollapseBlanks(doc)
	n.EnsureSpacing(doc)
}

// CollapseBlanks trims runs of blank paragraphs down to a single blank, but
// only where the run follows a qualifying unit; blank runs elsewhere carry
// intentional spacing and stay untouched. Non-paragraph elements (tables,
// section properties) are never treated as blanks. The pass is idempotent.
func (n *Normalizer) CollapseBlanks(doc *document.Document) {
	units := append([]*document.ContentUnit(nil), doc.Units()...)
	var extras []*document.ContentUnit
	for i := range units {
		if i+1 >= len(units) || !isBlank(units[i+1]) {
			continue
		}
		if !n.qualifies(units, i) {
			continue
		}
		for j := i + 2; j < len(units) && isBlank(units[j]); j++ {
			extras = append(extras, units[j])
		}
	}
	for _, u := range extras {
		doc.Remove(u)
	}
}

// EnsureSpacing inserts one blank paragraph after every qualifying unit that
// is not already followed by a blank. A unit qualifies when it classifies as
// a full paragraph (and carries no numbering), or when it closes a list run
// longer than the configured minimum and is not an all-caps label. The last
// unit of the document gets no trailing blank.
func (n *Normalizer) EnsureSpacing(doc *document.Document) {
	// Snapshot: insertions shift positions, so walk a copy and resolve
	// insertion points by identity.
	units := append([]*document.ContentUnit(nil), doc.Units()...)
	for i := range units {
		if i == len(units)-1 {
			break
		}
		next := units[i+1]
		if isBlank(next) {
			continue
		}
		if !n.qualifies(units, i) {
			continue
		}
		doc.InsertBefore(next, doc.NewBreak())
	}
}

// qualifies decides whether units[i] should be followed by a blank line.
func (n *Normalizer) qualifies(units []*document.ContentUnit, i int) bool {
	u := units[i]
	if isBlank(u) || u.Synthetic {
		return false
	}
	if u.List == nil {
		return n.classifier.Classify(u) == document.TagParagraph
	}
	var next *document.ContentUnit
	if i+1 < len(units) {
		next = units[i+1]
	}
	if !classify.IsLastInRun(u, next) {
		return false
	}
	if allUpper(u.Text) {
		return false
	}
	return classify.RunLength(units, i) > n.minListRun
}

// isBlank reports a visually empty paragraph element.
func isBlank(u *document.ContentUnit) bool {
	return u.IsEmpty() && u.ParagraphLike()
}

// allUpper reports whether every letter in s is uppercase. Strings with no
// letters at all do not count.
func allUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter && strings.TrimSpace(s) != ""
}
