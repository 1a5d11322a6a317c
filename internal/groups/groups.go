// Package groups extracts must-stay-together runs of content units by
// matching classified tag sequences against a pattern catalog.
package groups

import (
	"github.com/tamzidan/docreflow/internal/document"
	"github.com/tamzidan/docreflow/internal/rules"
)

// Pattern is a named ordered tag sequence from the catalog.
type Pattern struct {
	Name string
	Tags []document.Tag
}

// FromRules compiles the catalog's patterns in stable name order. The catalog
// is assumed validated.
func FromRules(r rules.Rules) []Pattern {
	names := r.PatternNames()
	patterns := make([]Pattern, 0, len(names))
	for _, name := range names {
		raw := r.Patterns[name]
		tags := make([]document.Tag, len(raw))
		for i, t := range raw {
			tags[i] = document.Tag(t)
		}
		patterns = append(patterns, Pattern{Name: name, Tags: tags})
	}
	return patterns
}

// Group is a contiguous run of units whose tags match one pattern exactly.
// Members are held by identity, never by cached position: a group stays
// resolvable after the document mutates underneath it.
type Group struct {
	Pattern string
	Members []*document.ContentUnit

	// Split state, filled in by the detector.
	Split bool
	Pages []int // Sorted distinct pages the members landed on.
}

// NonEmptyMembers returns the members that carry visible text.
func (g *Group) NonEmptyMembers() []*document.ContentUnit {
	var out []*document.ContentUnit
	for _, m := range g.Members {
		if !m.IsEmpty() {
			out = append(out, m)
		}
	}
	return out
}

// Extract slides a window over the classified units. At each start position
// it tries window lengths from the longest pattern down to 1 and emits a
// group on the first exact tag-sequence match, then moves to the next start.
// Empty and other tags participate in matching; any gap breaks a match.
// Units may belong to several overlapping groups; overlap is intentional and
// never deduplicated.
func Extract(units []*document.ContentUnit, patterns []Pattern) []*Group {
	maxLen := 0
	for _, p := range patterns {
		if len(p.Tags) > maxLen {
			maxLen = len(p.Tags)
		}
	}

	var out []*Group
	for i := range units {
		limit := maxLen
		if rest := len(units) - i; rest < limit {
			limit = rest
		}
		for size := limit; size >= 1; size-- {
			window := units[i : i+size]
			name, ok := matchWindow(window, patterns)
			if !ok {
				continue
			}
			members := make([]*document.ContentUnit, size)
			copy(members, window)
			out = append(out, &Group{Pattern: name, Members: members})
			break
		}
	}
	return out
}

func matchWindow(window []*document.ContentUnit, patterns []Pattern) (string, bool) {
	for _, p := range patterns {
		if len(p.Tags) != len(window) {
			continue
		}
		match := true
		for i, tag := range p.Tags {
			if window[i].Tag != tag {
				match = false
				break
			}
		}
		if match {
			return p.Name, true
		}
	}
	return "", false
}
