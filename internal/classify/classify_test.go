package classify

import (
	"testing"

	"github.com/tamzidan/docreflow/internal/document"
	"github.com/tamzidan/docreflow/internal/rules"
)

func newTestClassifier() *Classifier {
	return New(rules.Default())
}

func TestSentenceCount(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"no terminator", "a fragment without punctuation", 1},
		{"single sentence", "This is one sentence.", 1},
		{"two sentences", "First sentence here. Second sentence follows.", 2},
		{"abbreviation not a boundary", "Dr. Smith went home. He was tired.", 2},
		{"company abbreviation", "PT. Maju Jaya berdiri tahun 2001. Kantor pusat di Jakarta.", 2},
		{"question and exclamation", "Really? Yes! It works.", 3},
		{"lowercase after period", "see fig. 3 for details.", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.SentenceCount(tt.text); got != tt.want {
				t.Errorf("SentenceCount(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount("  one   two three "); got != 3 {
		t.Errorf("WordCount = %d, want 3", got)
	}
	if got := WordCount(""); got != 0 {
		t.Errorf("WordCount empty = %d, want 0", got)
	}
}

func TestClassifyEmpty(t *testing.T) {
	c := newTestClassifier()
	u := &document.ContentUnit{Text: "   \t "}
	if got := c.Classify(u); got != document.TagEmpty {
		t.Errorf("whitespace unit classified %q, want empty", got)
	}
}

func TestClassifyHeading(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name string
		unit *document.ContentUnit
		want document.Tag
	}{
		{
			"uppercase level-0 list item",
			&document.ContentUnit{Text: "1. RUANG LINGKUP PEKERJAAN", List: &document.ListInfo{NumID: "5", Level: 0}},
			document.TagHeading,
		},
		{
			"nested list item is not a heading",
			&document.ContentUnit{Text: "a. RUANG LINGKUP", List: &document.ListInfo{NumID: "5", Level: 1}},
			document.TagList,
		},
		{
			"mostly lowercase level-0 item",
			&document.ContentUnit{Text: "1. pekerjaan persiapan lokasi", List: &document.ListInfo{NumID: "5", Level: 0}},
			document.TagList,
		},
		{
			"single token stays a list item",
			&document.ContentUnit{Text: "PENDAHULUAN", List: &document.ListInfo{NumID: "5", Level: 0}},
			document.TagList,
		},
		{
			"uppercase without numbering is other",
			&document.ContentUnit{Text: "BAB SATU"},
			document.TagOther,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.unit); got != tt.want {
				t.Errorf("Classify = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyParagraphThresholds(t *testing.T) {
	c := newTestClassifier()

	// Two sentences, few words: paragraph by sentence count.
	u := &document.ContentUnit{Text: "Short one. Short two."}
	if got := c.Classify(u); got != document.TagParagraph {
		t.Errorf("two-sentence unit classified %q, want paragraph", got)
	}

	// One long sentence: paragraph by word count.
	long := "kata satu dua tiga empat lima enam tujuh delapan sembilan sepuluh sebelas dua belas tiga belas"
	if got := c.Classify(&document.ContentUnit{Text: long}); got != document.TagParagraph {
		t.Errorf("long unit classified %q, want paragraph", got)
	}

	// Short fragment: other.
	if got := c.Classify(&document.ContentUnit{Text: "catatan kaki"}); got != document.TagOther {
		t.Errorf("short fragment classified %q, want other", got)
	}
}

func TestClassifyListItemMeetingParagraphCriteria(t *testing.T) {
	c := newTestClassifier()
	// Paragraph wins over list when both apply.
	u := &document.ContentUnit{
		Text: "Item pertama menjelaskan hal ini. Kemudian kalimat kedua menutupnya.",
		List: &document.ListInfo{NumID: "2", Level: 1},
	}
	if got := c.Classify(u); got != document.TagParagraph {
		t.Errorf("list item with two sentences classified %q, want paragraph", got)
	}
}

func TestClassifyIsPure(t *testing.T) {
	c := newTestClassifier()
	u := &document.ContentUnit{Text: "Stabil. Tetap sama."}
	first := c.Classify(u)
	for i := 0; i < 5; i++ {
		if got := c.Classify(u); got != first {
			t.Fatalf("Classify changed from %q to %q on repeat call", first, got)
		}
	}
}

func TestApplySetsTags(t *testing.T) {
	c := newTestClassifier()
	units := []*document.ContentUnit{
		{Text: ""},
		{Text: "Kalimat pertama di sini. Kalimat kedua menyusul."},
		{Text: "item", List: &document.ListInfo{NumID: "1"}},
	}
	c.Apply(units)
	want := []document.Tag{document.TagEmpty, document.TagParagraph, document.TagList}
	for i, u := range units {
		if u.Tag != want[i] {
			t.Errorf("unit %d tagged %q, want %q", i, u.Tag, want[i])
		}
	}
}
