// Package classify labels content units with structural roles and answers
// list-run queries over their numbering metadata.
package classify

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/tamzidan/docreflow/internal/document"
	"github.com/tamzidan/docreflow/internal/rules"
)

// sentenceEndRe matches a sentence terminator: punctuation followed by
// whitespace and an uppercase letter, or punctuation at end of text.
var sentenceEndRe = regexp.MustCompile(`[.!?]+(\s+[A-Z]|$)`)

// abbrevPlaceholder replaces "Abbrev." so its period never terminates a
// sentence. It contains no sentence punctuation.
const abbrevPlaceholder = "<abbr>"

// Classifier assigns tags. It is a pure function of a unit's text and list
// metadata for a fixed rule catalog.
type Classifier struct {
	minSentences int
	minWords     int
	abbrevRe     *regexp.Regexp
}

// New builds a classifier from the catalog.
func New(r rules.Rules) *Classifier {
	return &Classifier{
		minSentences: r.Paragraph.MinSentences,
		minWords:     r.Paragraph.MinWords,
		abbrevRe:     compileAbbreviations(r.Paragraph.Abbreviations),
	}
}

func compileAbbreviations(abbrevs []string) *regexp.Regexp {
	if len(abbrevs) == 0 {
		return nil
	}
	quoted := make([]string, len(abbrevs))
	for i, a := range abbrevs {
		quoted[i] = regexp.QuoteMeta(a)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\.`)
}

// Classify labels one unit. Precedence: empty, heading, paragraph, list, other.
func (c *Classifier) Classify(u *document.ContentUnit) document.Tag {
	if u.IsEmpty() {
		return document.TagEmpty
	}
	if c.isHeading(u) {
		return document.TagHeading
	}
	if c.SentenceCount(u.Text) >= c.minSentences || WordCount(u.Text) >= c.minWords {
		return document.TagParagraph
	}
	if u.List != nil {
		return document.TagList
	}
	return document.TagOther
}

// Apply classifies every unit in order and stores the tag on the unit.
func (c *Classifier) Apply(units []*document.ContentUnit) {
	for _, u := range units {
		u.Tag = c.Classify(u)
	}
}

// isHeading recognizes a level-0 list item whose text, after the ordinal
// marker, is mostly uppercase.
func (c *Classifier) isHeading(u *document.ContentUnit) bool {
	if u.List == nil || u.List.Level != 0 {
		return false
	}
	words := strings.Fields(u.Text)
	if len(words) < 2 {
		// Nothing beyond the marker token.
		return false
	}
	rest := strings.Join(words[1:], " ")
	var upper, alpha int
	for _, r := range rest {
		if unicode.IsLetter(r) {
			alpha++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if alpha == 0 {
		return false
	}
	return float64(upper)/float64(alpha) > 0.5
}

// SentenceCount counts sentence terminators in text, treating configured
// abbreviations' periods as non-terminating. Non-empty text with no
// terminator counts as one sentence.
func (c *Classifier) SentenceCount(text string) int {
	processed := text
	if c.abbrevRe != nil {
		processed = c.abbrevRe.ReplaceAllString(text, "${1}"+abbrevPlaceholder)
	}
	n := len(sentenceEndRe.FindAllString(processed, -1))
	if n == 0 && strings.TrimSpace(text) != "" {
		return 1
	}
	return n
}

// WordCount counts whitespace-delimited tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
