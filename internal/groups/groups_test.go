package groups

import (
	"testing"

	"github.com/tamzidan/docreflow/internal/document"
	"github.com/tamzidan/docreflow/internal/rules"
)

func tagged(tags ...document.Tag) []*document.ContentUnit {
	units := make([]*document.ContentUnit, len(tags))
	for i, tag := range tags {
		units[i] = &document.ContentUnit{ID: document.UnitID(i + 1), Text: "u", Tag: tag}
	}
	return units
}

func TestFromRulesStableOrder(t *testing.T) {
	patterns := FromRules(rules.Default())
	names := make([]string, len(patterns))
	for i, p := range patterns {
		names[i] = p.Name
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("pattern order not sorted: %v", names)
		}
	}
}

func TestExtractLongestMatchWins(t *testing.T) {
	patterns := []Pattern{
		{Name: "heading+paragraph", Tags: []document.Tag{document.TagHeading, document.TagParagraph}},
		{Name: "paragraph", Tags: []document.Tag{document.TagParagraph}},
	}
	units := tagged(document.TagHeading, document.TagParagraph, document.TagOther)

	gs := Extract(units, patterns)
	if len(gs) != 2 {
		t.Fatalf("got %d groups, want 2", len(gs))
	}
	// The window at position 0 matches the two-tag pattern, yet position 1
	// still yields its own single-paragraph group: overlap is kept.
	if gs[0].Pattern != "heading+paragraph" || len(gs[0].Members) != 2 {
		t.Errorf("first group = %s with %d members", gs[0].Pattern, len(gs[0].Members))
	}
	if gs[1].Pattern != "paragraph" || gs[1].Members[0] != units[1] {
		t.Errorf("second group = %s, members %v", gs[1].Pattern, gs[1].Members)
	}
}

func TestExtractGapBreaksMatch(t *testing.T) {
	patterns := []Pattern{
		{Name: "heading+paragraph", Tags: []document.Tag{document.TagHeading, document.TagParagraph}},
	}
	units := tagged(document.TagHeading, document.TagEmpty, document.TagParagraph)

	if gs := Extract(units, patterns); len(gs) != 0 {
		t.Fatalf("got %d groups across a gap, want 0", len(gs))
	}
}

func TestExtractEmptyTagParticipates(t *testing.T) {
	patterns := []Pattern{
		{Name: "spaced", Tags: []document.Tag{document.TagHeading, document.TagEmpty, document.TagParagraph}},
	}
	units := tagged(document.TagHeading, document.TagEmpty, document.TagParagraph)

	gs := Extract(units, patterns)
	if len(gs) != 1 || len(gs[0].Members) != 3 {
		t.Fatalf("pattern with explicit empty tag did not match: %v", gs)
	}
}

func TestExtractMembersAreIdentities(t *testing.T) {
	patterns := []Pattern{
		{Name: "paragraph", Tags: []document.Tag{document.TagParagraph}},
	}
	units := tagged(document.TagParagraph)
	gs := Extract(units, patterns)
	if len(gs) != 1 || gs[0].Members[0] != units[0] {
		t.Fatal("group member is not the original unit pointer")
	}
}

func TestNonEmptyMembers(t *testing.T) {
	g := &Group{Members: []*document.ContentUnit{
		{Text: "content"},
		{Text: "   "},
	}}
	if got := g.NonEmptyMembers(); len(got) != 1 || got[0].Text != "content" {
		t.Errorf("NonEmptyMembers = %v", got)
	}
}
