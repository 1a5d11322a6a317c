package detect

import (
	"reflect"
	"testing"

	"github.com/tamzidan/docreflow/internal/document"
	"github.com/tamzidan/docreflow/internal/groups"
	"github.com/tamzidan/docreflow/internal/render"
	"github.com/tamzidan/docreflow/internal/rules"
)

func pagesOf(texts ...string) []render.RenderedPage {
	out := make([]render.RenderedPage, len(texts))
	for i, text := range texts {
		out[i] = render.RenderedPage{Number: i + 1, Text: text}
	}
	return out
}

func groupOf(texts ...string) *groups.Group {
	g := &groups.Group{Pattern: "heading+paragraph"}
	for _, text := range texts {
		g.Members = append(g.Members, &document.ContentUnit{Text: text})
	}
	return g
}

func TestNormalize(t *testing.T) {
	got := Normalize("  Ruang   Lingkup\nPekerjaan  ")
	if got != "ruang lingkup pekerjaan" {
		t.Errorf("Normalize = %q", got)
	}
}

func TestInspectSamePage(t *testing.T) {
	d := New(rules.Default())
	g := groupOf("Ruang Lingkup", "Pekerjaan meliputi pembersihan lokasi.")
	pages := pagesOf("RUANG LINGKUP\npekerjaan meliputi pembersihan lokasi.\nlain-lain")

	d.Inspect([]*groups.Group{g}, pages)
	if g.Split {
		t.Fatal("group on one page flagged split")
	}
	if !reflect.DeepEqual(g.Pages, []int{1}) {
		t.Errorf("Pages = %v, want [1]", g.Pages)
	}
}

func TestInspectMembersOnDifferentPages(t *testing.T) {
	d := New(rules.Default())
	g := groupOf("Ruang Lingkup", "Pekerjaan meliputi pembersihan lokasi.")
	pages := pagesOf(
		"pendahuluan\nruang lingkup",
		"pekerjaan meliputi pembersihan lokasi.",
	)

	d.Inspect([]*groups.Group{g}, pages)
	if !g.Split {
		t.Fatal("group across two pages not flagged split")
	}
	if !reflect.DeepEqual(g.Pages, []int{1, 2}) {
		t.Errorf("Pages = %v, want [1 2]", g.Pages)
	}
}

func TestInspectStraddlingMember(t *testing.T) {
	d := New(rules.Default())
	// One member wraps over the page boundary: neither page contains it
	// whole, but the fragments concatenate back to the full text.
	member := "satu dua tiga empat lima enam tujuh delapan"
	g := groupOf(member)
	pages := pagesOf(
		"judul halaman\nsatu dua tiga empat lima enam",
		"tujuh delapan\nsisa halaman berikut",
	)

	d.Inspect([]*groups.Group{g}, pages)
	if !g.Split {
		t.Fatal("straddling member not flagged split")
	}
	if !reflect.DeepEqual(g.Pages, []int{1, 2}) {
		t.Errorf("Pages = %v, want [1 2]", g.Pages)
	}
}

func TestInspectRunBelowThresholdStaysUnresolved(t *testing.T) {
	d := New(rules.Default())
	// Only three words in common with any page: below the six-word floor,
	// so the member resolves to no page at all.
	g := groupOf("satu dua tiga empat lima enam tujuh delapan")
	pages := pagesOf("satu dua tiga", "yang lain sama sekali")

	d.Inspect([]*groups.Group{g}, pages)
	if g.Split || g.Pages != nil {
		t.Errorf("unresolvable member produced pages %v (split=%v)", g.Pages, g.Split)
	}
}

func TestInspectEmptyMembersIgnored(t *testing.T) {
	d := New(rules.Default())
	g := groupOf("teks nyata")
	g.Members = append(g.Members, &document.ContentUnit{Text: "   "})
	pages := pagesOf("teks nyata")

	d.Inspect([]*groups.Group{g}, pages)
	if g.Split || !reflect.DeepEqual(g.Pages, []int{1}) {
		t.Errorf("Pages = %v, split = %v", g.Pages, g.Split)
	}
}

func TestInspectRepeatedTextUsesFirstPage(t *testing.T) {
	d := New(rules.Default())
	g := groupOf("klausul yang berulang")
	pages := pagesOf("klausul yang berulang", "klausul yang berulang")

	d.Inspect([]*groups.Group{g}, pages)
	if !reflect.DeepEqual(g.Pages, []int{1}) {
		t.Errorf("repeated text resolved to %v, want first page only", g.Pages)
	}
}

func TestLongestCommonRunTieBreak(t *testing.T) {
	a := []string{"x", "y", "x", "y"}
	b := []string{"x", "y"}
	run := longestCommonRun(a, b)
	if run.length != 2 || run.aStart != 0 || run.bStart != 0 {
		t.Errorf("run = %+v, want earliest two-word match", run)
	}
}
